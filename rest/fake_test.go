package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/dualfetch/database"
)

type fakeRel struct {
	local, foreign string
	many           bool
}

// fakeRelations lists the foreign keys embedded selects may follow.
var fakeRelations = map[string]map[string]fakeRel{
	"posts": {
		"users":      {local: "author_id", foreign: "id"},
		"categories": {local: "category_id", foreign: "id"},
		"post_tags":  {local: "id", foreign: "post_id", many: true},
	},
	"post_tags": {
		"tags":  {local: "tag_id", foreign: "id"},
		"posts": {local: "post_id", foreign: "id"},
	},
	"comments": {
		"users": {local: "author_id", foreign: "id"},
	},
}

var reservedParams = map[string]bool{"select": true, "order": true, "limit": true, "offset": true, "or": true}

type recordedRequest struct {
	Method string
	Table  string
	Query  url.Values
	Header http.Header
}

// fakePostgREST serves an in-memory copy of the seeded schema with the subset of the
// PostgREST protocol the rest package speaks.
type fakePostgREST struct {
	mu       sync.Mutex
	tables   map[string][]map[string]any
	requests []recordedRequest

	// insertErr, when set, is returned for every POST.
	insertErr *Error
	// insertGate, when set, blocks POST handling until it is closed.
	insertGate chan struct{}
}

func newFakeFromDB(t *testing.T, db *gorm.DB) *fakePostgREST {
	t.Helper()
	f := &fakePostgREST{tables: map[string][]map[string]any{}}
	for _, table := range []string{"users", "categories", "tags", "posts", "post_tags", "comments"} {
		var rows []map[string]any
		require.NoError(t, db.Table(table).Find(&rows).Error)
		for _, r := range rows {
			for k, v := range r {
				r[k] = normalizeValue(v)
			}
		}
		f.tables[table] = rows
	}
	return f
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
	case time.Time:
		return t.UTC()
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return ts.UTC()
		}
	}
	return v
}

// setupFake seeds a sqlite database, mirrors it into a fake endpoint and returns a
// Store talking to it together with the database for cross-checks.
func setupFake(t *testing.T) (*Store, *fakePostgREST, *gorm.DB, *database.SeedResult) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.RunMigrations(db))
	seeded, err := database.Seed(db)
	require.NoError(t, err)

	fake := newFakeFromDB(t, db)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewStore(NewClient(srv.URL)), fake, db, seeded
}

func (f *fakePostgREST) recorded(method, table string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Method == method && r.Table == table {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakePostgREST) rowCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	table := strings.Trim(r.URL.Path, "/")
	query := r.URL.Query()

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Table: table, Query: query, Header: r.Header.Clone()})
	gate := f.insertGate
	f.mu.Unlock()

	if r.Method == http.MethodPost && gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tables[table]; !ok {
		writeFakeError(w, http.StatusNotFound, &Error{Code: "42P01", Message: fmt.Sprintf("relation %q does not exist", table)})
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		f.serveRead(w, r, table, query)
	case http.MethodPost:
		f.serveInsert(w, r, table, query)
	case http.MethodPatch:
		f.serveUpdate(w, r, table, query)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeFakeError(w http.ResponseWriter, status int, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(e)
}

func (f *fakePostgREST) filtered(table string, query url.Values) ([]map[string]any, error) {
	var out []map[string]any
	for _, row := range f.tables[table] {
		ok, err := rowMatches(row, query)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakePostgREST) serveRead(w http.ResponseWriter, r *http.Request, table string, query url.Values) {
	rows, err := f.filtered(table, query)
	if err != nil {
		writeFakeError(w, http.StatusBadRequest, &Error{Code: "PGRST100", Message: err.Error()})
		return
	}
	if order := query.Get("order"); order != "" {
		sortRows(rows, order)
	}
	total := len(rows)

	from, to := 0, total-1
	if rg := r.Header.Get("Range"); rg != "" {
		parts := strings.SplitN(rg, "-", 2)
		from, _ = strconv.Atoi(parts[0])
		to, _ = strconv.Atoi(parts[1])
	}
	if lim := query.Get("limit"); lim != "" {
		n, _ := strconv.Atoi(lim)
		if from+n-1 < to || to < from {
			to = from + n - 1
		}
	}

	totalPart := "*"
	if strings.Contains(r.Header.Get("Prefer"), "count=exact") {
		totalPart = strconv.Itoa(total)
	}
	if from > 0 && from >= total {
		w.Header().Set("Content-Range", "*/"+totalPart)
		writeFakeError(w, http.StatusRequestedRangeNotSatisfiable, &Error{Code: "PGRST103", Message: "Requested range not satisfiable"})
		return
	}
	if to >= total {
		to = total - 1
	}
	page := []map[string]any{}
	if total > 0 && to >= from {
		page = rows[from : to+1]
	}
	if len(page) == 0 {
		w.Header().Set("Content-Range", "*/"+totalPart)
	} else {
		w.Header().Set("Content-Range", fmt.Sprintf("%d-%d/%s", from, to, totalPart))
	}

	f.writeRows(w, r, table, query.Get("select"), page, http.StatusOK)
}

func (f *fakePostgREST) writeRows(w http.ResponseWriter, r *http.Request, table, sel string, rows []map[string]any, status int) {
	projected := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out, err := f.project(table, row, sel)
		if err != nil {
			writeFakeError(w, http.StatusBadRequest, &Error{Code: "PGRST200", Message: err.Error()})
			return
		}
		projected = append(projected, out)
	}

	var body any = projected
	if r.Header.Get("Accept") == mediaObject {
		if len(projected) != 1 {
			writeFakeError(w, http.StatusNotAcceptable, &Error{
				Code:    "PGRST116",
				Message: "JSON object requested, multiple (or no) rows returned",
				Details: fmt.Sprintf("The result contains %d rows", len(projected)),
			})
			return
		}
		body = projected[0]
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (f *fakePostgREST) serveInsert(w http.ResponseWriter, r *http.Request, table string, query url.Values) {
	if f.insertErr != nil {
		writeFakeError(w, f.insertErr.Status, f.insertErr)
		return
	}
	var row map[string]any
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeFakeError(w, http.StatusBadRequest, &Error{Code: "PGRST102", Message: err.Error()})
		return
	}
	for k, v := range row {
		row[k] = normalizeValue(v)
	}
	if id, _ := row["id"].(string); id == "" {
		writeFakeError(w, http.StatusBadRequest, &Error{Code: "23502", Message: `null value in column "id" violates not-null constraint`})
		return
	}
	f.tables[table] = append(f.tables[table], row)
	f.writeRows(w, r, table, query.Get("select"), []map[string]any{row}, http.StatusCreated)
}

func (f *fakePostgREST) serveUpdate(w http.ResponseWriter, r *http.Request, table string, query url.Values) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeFakeError(w, http.StatusBadRequest, &Error{Code: "PGRST102", Message: err.Error()})
		return
	}
	rows, err := f.filtered(table, query)
	if err != nil {
		writeFakeError(w, http.StatusBadRequest, &Error{Code: "PGRST100", Message: err.Error()})
		return
	}
	for _, row := range rows {
		for k, v := range patch {
			row[k] = normalizeValue(v)
		}
	}
	if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
		f.writeRows(w, r, table, query.Get("select"), rows, http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// project applies a select list, following embedded resources. A '!' hint must name
// one of the relation's fk columns; constraint names are not known to the fake.
func (f *fakePostgREST) project(table string, row map[string]any, sel string) (map[string]any, error) {
	if sel == "" {
		sel = "*"
	}
	out := map[string]any{}
	for _, item := range splitTopLevel(sel) {
		open := strings.IndexByte(item, '(')
		if open < 0 {
			if item == "*" {
				for k, v := range row {
					out[k] = v
				}
			} else {
				out[item] = row[item]
			}
			continue
		}

		head, inner := item[:open], item[open+1:len(item)-1]
		alias, target := head, head
		if i := strings.IndexByte(head, ':'); i >= 0 {
			alias, target = head[:i], head[i+1:]
		}
		hint := ""
		if i := strings.IndexByte(target, '!'); i >= 0 {
			target, hint = target[:i], target[i+1:]
		}
		if alias == head {
			alias = target
		}
		rel, ok := fakeRelations[table][target]
		if !ok || (hint != "" && hint != rel.local && hint != rel.foreign) {
			return nil, fmt.Errorf("could not find a relationship between '%s' and '%s' in the schema cache (hint %q)", table, target, hint)
		}
		var related []map[string]any
		for _, candidate := range f.tables[target] {
			if fmt.Sprint(candidate[rel.foreign]) == fmt.Sprint(row[rel.local]) && row[rel.local] != nil {
				nested, err := f.project(target, candidate, inner)
				if err != nil {
					return nil, err
				}
				related = append(related, nested)
			}
		}
		switch {
		case rel.many:
			if related == nil {
				related = []map[string]any{}
			}
			out[alias] = related
		case len(related) > 0:
			out[alias] = related[0]
		default:
			out[alias] = nil
		}
	}
	return out, nil
}

func rowMatches(row map[string]any, query url.Values) (bool, error) {
	for key, values := range query {
		if reservedParams[key] {
			continue
		}
		for _, v := range values {
			op, arg, ok := strings.Cut(v, ".")
			if !ok {
				return false, fmt.Errorf("malformed filter %s=%s", key, v)
			}
			match, err := applyOp(row[key], op, arg)
			if err != nil || !match {
				return false, err
			}
		}
	}
	for _, expr := range query["or"] {
		conds := splitTopLevel(strings.TrimSuffix(strings.TrimPrefix(expr, "("), ")"))
		matched := false
		for _, cond := range conds {
			col, rest, _ := strings.Cut(cond, ".")
			op, arg, _ := strings.Cut(rest, ".")
			match, err := applyOp(row[col], op, unquote(arg))
			if err != nil {
				return false, err
			}
			matched = matched || match
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

func applyOp(value any, op, arg string) (bool, error) {
	switch op {
	case "eq":
		return value != nil && fmt.Sprint(value) == arg, nil
	case "in":
		for _, item := range splitTopLevel(strings.TrimSuffix(strings.TrimPrefix(arg, "("), ")")) {
			if value != nil && fmt.Sprint(value) == unquote(item) {
				return true, nil
			}
		}
		return false, nil
	case "is":
		switch arg {
		case "null":
			return value == nil, nil
		case "true", "false":
			return fmt.Sprint(value) == arg, nil
		}
	case "ilike":
		if value == nil {
			return false, nil
		}
		re, err := likeRegexp(arg)
		if err != nil {
			return false, err
		}
		return re.MatchString(fmt.Sprint(value)), nil
	}
	return false, fmt.Errorf("unsupported operator %q", op)
}

// likeRegexp translates an ilike pattern ('*' or '%' any run, '_' one char, '\' escape).
func likeRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			b.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*' || r == '%':
			b.WriteString(".*")
		case r == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// splitTopLevel splits on commas outside quotes and parentheses.
func splitTopLevel(s string) []string {
	var (
		parts   []string
		depth   int
		inQuote bool
		escaped bool
		start   int
	)
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inQuote:
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}

func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s[1 : len(s)-1] {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func sortRows(rows []map[string]any, order string) {
	type key struct {
		col  string
		desc bool
	}
	var keys []key
	for _, part := range strings.Split(order, ",") {
		col, dir, _ := strings.Cut(part, ".")
		keys = append(keys, key{col: col, desc: dir == "desc"})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(rows[i][k.col], rows[j][k.col])
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders nulls after every value, as Postgres does for ascending sorts.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
