package utils

// PageGap marks an elided run of pages in a PageWindow.
const PageGap = 0

// pageWindowSize is the number of consecutive pages shown around the current one.
const pageWindowSize = 5

// PageWindow lists the page numbers a pager shows: up to five consecutive pages around
// current, plus the first and last page with PageGap where pages are skipped.
// PageWindow(6, 20) is [1 0 4 5 6 7 8 0 20].
func PageWindow(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	start := current - pageWindowSize/2
	end := current + pageWindowSize/2
	if start < 1 {
		end += 1 - start
		start = 1
	}
	if end > total {
		start -= end - total
		end = total
	}
	if start < 1 {
		start = 1
	}

	pages := make([]int, 0, pageWindowSize+4)
	if start > 1 {
		pages = append(pages, 1)
		if start > 2 {
			pages = append(pages, PageGap)
		}
	}
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	if end < total {
		if end < total-1 {
			pages = append(pages, PageGap)
		}
		pages = append(pages, total)
	}
	return pages
}
