package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/dualfetch/models"
)

// SeedResult indexes the seeded rows by their natural keys.
type SeedResult struct {
	Users      map[string]models.User     // by email
	Categories map[string]models.Category // by slug
	Tags       map[string]models.Tag      // by slug
	Posts      map[string]models.Post     // by slug
	Comments   int
}

type seedPost struct {
	post     models.Post
	author   string
	category string
	tags     []string
}

type seedComment struct {
	post    string
	author  string
	content string
	replyTo int // 1-based index into the same list, 0 for top level
}

func strPtr(s string) *string { return &s }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

var seedUsers = []models.User{
	{Email: "alice@example.com", Name: "Alice Chen", AvatarURL: strPtr("https://api.dicebear.com/7.x/avataaars/svg?seed=alice"), Bio: strPtr("Full-stack developer who enjoys open source and technical writing.")},
	{Email: "bob@example.com", Name: "Bob Wang", AvatarURL: strPtr("https://api.dicebear.com/7.x/avataaars/svg?seed=bob"), Bio: strPtr("Frontend engineer focused on React and TypeScript.")},
	{Email: "charlie@example.com", Name: "Charlie Liu", AvatarURL: strPtr("https://api.dicebear.com/7.x/avataaars/svg?seed=charlie"), Bio: strPtr("Backend developer, databases and system design.")},
}

var seedCategories = []models.Category{
	{Name: "Frontend", Slug: "frontend", Description: strPtr("React, Vue, CSS and everything in the browser"), SortOrder: 1},
	{Name: "Backend", Slug: "backend", Description: strPtr("Servers, databases and API design"), SortOrder: 2},
	{Name: "DevOps", Slug: "devops", Description: strPtr("Docker, CI/CD and cloud deployment"), SortOrder: 3},
	{Name: "Tutorials", Slug: "tutorial", Description: strPtr("Guides and getting-started material"), SortOrder: 4},
}

var seedTags = []models.Tag{
	{Name: "React", Slug: "react", Color: strPtr("#61DAFB")},
	{Name: "Next.js", Slug: "nextjs", Color: strPtr("#000000")},
	{Name: "TypeScript", Slug: "typescript", Color: strPtr("#3178C6")},
	{Name: "Prisma", Slug: "prisma", Color: strPtr("#2D3748")},
	{Name: "PostgreSQL", Slug: "postgresql", Color: strPtr("#336791")},
	{Name: "Docker", Slug: "docker", Color: strPtr("#2496ED")},
	{Name: "Tailwind CSS", Slug: "tailwindcss", Color: strPtr("#06B6D4")},
	{Name: "API", Slug: "api", Color: strPtr("#10B981")},
}

var seedPosts = []seedPost{
	{
		post: models.Post{
			Title:       "Getting Started with Next.js 15: Building Modern Web Apps",
			Slug:        "getting-started-with-nextjs-15",
			Content:     "# Getting Started with Next.js 15\n\nNext.js is a full-stack React framework with server rendering, static generation and API routes.\n\n## Quick start\n\n```bash\nnpx create-next-app@latest my-app\ncd my-app\nnpm run dev\n```\n\n## Summary\n\nNext.js 15 is a great choice for modern web applications.",
			Excerpt:     strPtr("A step-by-step introduction to the core concepts of Next.js 15."),
			CoverImage:  strPtr("https://images.unsplash.com/photo-1555066931-4365d14bab8c"),
			Status:      models.PostStatusPublished,
			ViewCount:   1234,
			PublishedAt: datePtr(2024, time.January, 15),
		},
		author: "alice@example.com", category: "tutorial", tags: []string{"nextjs", "react", "typescript"},
	},
	{
		post: models.Post{
			Title:       "The Complete Prisma ORM Guide: Type-safe Database Access",
			Slug:        "prisma-orm-complete-guide",
			Content:     "# The Complete Prisma ORM Guide\n\nPrisma is a modern ORM with type-safe queries and a generated client.\n\n## Migrations\n\n```bash\nnpx prisma migrate dev --name init\n```\n\n## Summary\n\nPrisma makes database access simple and type safe.",
			Excerpt:     strPtr("Core concepts, query syntax and best practices for Prisma."),
			CoverImage:  strPtr("https://images.unsplash.com/photo-1544383835-bda2bc66a55d"),
			Status:      models.PostStatusPublished,
			ViewCount:   856,
			PublishedAt: datePtr(2024, time.January, 20),
		},
		author: "bob@example.com", category: "backend", tags: []string{"prisma", "postgresql", "typescript"},
	},
	{
		post: models.Post{
			Title:       "Docker Deployment Best Practices: From Development to Production",
			Slug:        "docker-deployment-best-practices",
			Content:     "# Docker Deployment Best Practices\n\nDocker makes deployments repeatable.\n\n## Multi-stage builds\n\n```dockerfile\nFROM node:20-alpine AS builder\nWORKDIR /app\nCOPY . .\nRUN npm ci && npm run build\n```\n\n## Summary\n\nUsed well, Docker simplifies the whole delivery pipeline.",
			Excerpt:     strPtr("Practical Docker deployment tips from development to production."),
			CoverImage:  strPtr("https://images.unsplash.com/photo-1605745341112-85968b19335b"),
			Status:      models.PostStatusPublished,
			ViewCount:   567,
			PublishedAt: datePtr(2024, time.January, 25),
		},
		author: "charlie@example.com", category: "devops", tags: []string{"docker", "postgresql"},
	},
	{
		post: models.Post{
			Title:       "Tailwind CSS Tips and Tricks",
			Slug:        "tailwindcss-tips-and-tricks",
			Content:     "# Tailwind CSS Tips and Tricks\n\nTailwind is a utility-first CSS framework.\n\n## Responsive grids\n\n```html\n<div class=\"grid grid-cols-1 md:grid-cols-3 gap-4\"></div>\n```\n\n## Summary\n\nThese patterns make building interfaces faster.",
			Excerpt:     strPtr("Utility-first patterns that speed up everyday styling work."),
			CoverImage:  strPtr("https://images.unsplash.com/photo-1507721999472-8ed4421c4af2"),
			Status:      models.PostStatusPublished,
			ViewCount:   432,
			PublishedAt: datePtr(2024, time.February, 1),
		},
		author: "alice@example.com", category: "frontend", tags: []string{"tailwindcss", "react"},
	},
	{
		post: models.Post{
			Title:   "Upcoming Features Preview",
			Slug:    "upcoming-features-preview",
			Content: "# Upcoming features\n\nThis draft previews what is coming next.\n\n- [ ] Real-time collaborative editing\n- [ ] AI-assisted writing\n- [ ] Analytics dashboard",
			Excerpt: strPtr("A preview of collaborative editing, AI-assisted writing and more."),
			Status:  models.PostStatusDraft,
		},
		author: "bob@example.com", category: "tutorial", tags: []string{"nextjs"},
	},
}

var seedComments = []seedComment{
	{post: "getting-started-with-nextjs-15", author: "bob@example.com", content: "Great introduction, the new Next.js 15 features are impressive."},
	{post: "getting-started-with-nextjs-15", author: "charlie@example.com", content: "What is the main difference between the App Router and the Pages Router?"},
	{post: "prisma-orm-complete-guide", author: "alice@example.com", content: "Prisma's type inference is fantastic, no more type errors."},
	{post: "docker-deployment-best-practices", author: "alice@example.com", content: "Multi-stage builds really shrink the image, learned something new!"},
	{post: "docker-deployment-best-practices", author: "bob@example.com", content: "Could you share a production Docker Compose setup?"},
	{post: "getting-started-with-nextjs-15", author: "alice@example.com", content: "The App Router is built on React Server Components and renders on the server by default; the Pages Router is the older model.", replyTo: 2},
	{post: "getting-started-with-nextjs-15", author: "charlie@example.com", content: "Thanks! Trying the App Router now.", replyTo: 2},
}

// Seed inserts the demo data set. Rows are matched on their natural keys so running it
// twice leaves the database unchanged.
func Seed(db *gorm.DB) (*SeedResult, error) {
	res := &SeedResult{
		Users:      map[string]models.User{},
		Categories: map[string]models.Category{},
		Tags:       map[string]models.Tag{},
		Posts:      map[string]models.Post{},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, u := range seedUsers {
			row := u
			if err := tx.Where(models.User{Email: u.Email}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			res.Users[row.Email] = row
		}

		for _, c := range seedCategories {
			row := c
			if err := tx.Where(models.Category{Slug: c.Slug}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.Slug, err)
			}
			res.Categories[row.Slug] = row
		}

		for _, t := range seedTags {
			row := t
			if err := tx.Where(models.Tag{Slug: t.Slug}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed tag %s: %w", t.Slug, err)
			}
			res.Tags[row.Slug] = row
		}

		for _, sp := range seedPosts {
			row := sp.post
			row.AuthorID = res.Users[sp.author].ID
			categoryID := res.Categories[sp.category].ID
			row.CategoryID = &categoryID
			if err := tx.Where(models.Post{Slug: sp.post.Slug}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed post %s: %w", sp.post.Slug, err)
			}
			for _, slug := range sp.tags {
				link := models.PostTag{PostID: row.ID, TagID: res.Tags[slug].ID}
				if err := tx.Where(link).FirstOrCreate(&link).Error; err != nil {
					return fmt.Errorf("seed post tag %s/%s: %w", sp.post.Slug, slug, err)
				}
			}
			res.Posts[row.Slug] = row
		}

		var existing int64
		if err := tx.Model(&models.Comment{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			res.Comments = int(existing)
			return nil
		}

		created := make([]models.Comment, 0, len(seedComments))
		base := time.Date(2024, time.February, 10, 9, 0, 0, 0, time.UTC)
		for i, sc := range seedComments {
			c := models.Comment{
				Content:   sc.content,
				PostID:    res.Posts[sc.post].ID,
				AuthorID:  res.Users[sc.author].ID,
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
			}
			if sc.replyTo > 0 {
				parentID := created[sc.replyTo-1].ID
				c.ParentID = &parentID
			}
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("seed comment %d: %w", i+1, err)
			}
			created = append(created, c)
		}
		res.Comments = len(created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
