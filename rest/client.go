// Package rest reads and writes the blog schema through a PostgREST endpoint.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/dualfetch/models"
	"github.com/cppla/dualfetch/utils"
)

const (
	mediaJSON   = "application/json"
	mediaObject = "application/vnd.pgrst.object+json"
)

// Client issues PostgREST requests. The zero value is not usable; call NewClient.
type Client struct {
	baseURL string
	schema  string
	http    *http.Client
	headers http.Header
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSchema selects a non-default schema through the Accept-Profile/Content-Profile headers.
func WithSchema(schema string) Option {
	return func(c *Client) { c.schema = schema }
}

// WithHeader adds a header to every request, e.g. an Authorization bearer token.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Add(key, value) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the endpoint the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Error is a non-2xx PostgREST response.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("postgrest %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("postgrest %d: %s", e.Status, msg)
}

// Is lets errors.Is(err, models.ErrNotFound) match a singular request that found no row.
func (e *Error) Is(target error) bool {
	return target == models.ErrNotFound && (e.Code == "PGRST116" || e.Status == http.StatusNotAcceptable)
}

// Query accumulates filters for one table. Builder methods mutate and return the receiver.
type Query struct {
	c        *Client
	table    string
	params   url.Values
	order    []string
	rangeSet bool
	from, to int
	count    bool
	single   bool
}

// From starts a query on table.
func (c *Client) From(table string) *Query {
	return &Query{c: c, table: table, params: url.Values{}}
}

// Select sets the projection, including embedded resources such as
// "*,author:users!author_id(id,name)". Whitespace is stripped.
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", strings.Join(strings.Fields(columns), ""))
	return q
}

func (q *Query) filter(column, op, value string) *Query {
	q.params.Add(column, op+"."+value)
	return q
}

func (q *Query) Eq(column string, value any) *Query {
	return q.filter(column, "eq", fmt.Sprint(value))
}

// In matches any of values. Values with reserved characters are quoted.
func (q *Query) In(column string, values []string) *Query {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = QuoteValue(v)
	}
	return q.filter(column, "in", "("+strings.Join(quoted, ",")+")")
}

// Ilike matches pattern case-insensitively; '*' is the wildcard.
func (q *Query) Ilike(column, pattern string) *Query {
	return q.filter(column, "ilike", pattern)
}

// Is compares against null, true or false.
func (q *Query) Is(column, value string) *Query {
	return q.filter(column, "is", value)
}

// Or adds a disjunction such as "title.ilike.*go*,content.ilike.*go*".
func (q *Query) Or(conditions string) *Query {
	q.params.Add("or", "("+conditions+")")
	return q
}

// Order appends a sort key; later calls break ties of earlier ones.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Range restricts the result to the inclusive zero-based rows [from, to].
func (q *Query) Range(from, to int) *Query {
	q.rangeSet, q.from, q.to = true, from, to
	return q
}

func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// CountExact asks for the total number of matching rows alongside the page.
func (q *Query) CountExact() *Query {
	q.count = true
	return q
}

// Single expects exactly one row and decodes it as an object rather than an array.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) url() string {
	params := url.Values{}
	for k, v := range q.params {
		params[k] = v
	}
	if len(q.order) > 0 {
		params.Set("order", strings.Join(q.order, ","))
	}
	u := q.c.baseURL + "/" + q.table
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func (q *Query) newRequest(ctx context.Context, method string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", q.table, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, q.url(), rd)
	if err != nil {
		return nil, err
	}
	for k, vs := range q.c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if q.single {
		req.Header.Set("Accept", mediaObject)
	} else {
		req.Header.Set("Accept", mediaJSON)
	}
	if body != nil {
		req.Header.Set("Content-Type", mediaJSON)
	}
	if q.c.schema != "" {
		if method == http.MethodGet || method == http.MethodHead {
			req.Header.Set("Accept-Profile", q.c.schema)
		} else {
			req.Header.Set("Content-Profile", q.c.schema)
		}
	}
	if q.rangeSet {
		req.Header.Set("Range-Unit", "items")
		req.Header.Set("Range", fmt.Sprintf("%d-%d", q.from, q.to))
	}
	return req, nil
}

func (q *Query) do(req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := q.c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("postgrest %s %s: %w", req.Method, q.table, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read postgrest response: %w", err)
	}
	utils.Logger.Debug("postgrest request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, body, nil
}

func decodeError(status int, body []byte) error {
	e := &Error{Status: status}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, e); err != nil {
			e.Message = strings.TrimSpace(string(body))
		}
	}
	return e
}

func decodeBody(body []byte, dest any) error {
	if dest == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode postgrest response: %w", err)
	}
	return nil
}

// Execute runs the query as a GET and decodes the JSON body into dest. The returned
// count is the exact total when CountExact was requested and -1 otherwise. A range past
// the last row (416) is an empty page, not an error.
func (q *Query) Execute(ctx context.Context, dest any) (int64, error) {
	req, err := q.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return 0, err
	}
	if q.count {
		req.Header.Set("Prefer", "count=exact")
	}
	resp, body, err := q.do(req)
	if err != nil {
		return 0, err
	}

	total := ParseContentRange(resp.Header.Get("Content-Range"))
	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		return total, nil
	}
	if resp.StatusCode >= 300 {
		return 0, decodeError(resp.StatusCode, body)
	}
	if err := decodeBody(body, dest); err != nil {
		return 0, err
	}
	return total, nil
}

// Count returns the number of matching rows using a HEAD request.
func (q *Query) Count(ctx context.Context) (int64, error) {
	req, err := q.newRequest(ctx, http.MethodHead, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")
	resp, body, err := q.do(req)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode >= 300 {
		return 0, decodeError(resp.StatusCode, body)
	}
	total := ParseContentRange(resp.Header.Get("Content-Range"))
	if total < 0 {
		return 0, fmt.Errorf("postgrest count %s: missing Content-Range total", q.table)
	}
	return total, nil
}

// Insert creates row and decodes the created representation into dest, projected
// through Select. Combine with Single to receive one object.
func (q *Query) Insert(ctx context.Context, row any, dest any) error {
	req, err := q.newRequest(ctx, http.MethodPost, row)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")
	resp, body, err := q.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}
	return decodeBody(body, dest)
}

// Update patches the filtered rows. dest may be nil when no representation is needed.
func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	req, err := q.newRequest(ctx, http.MethodPatch, patch)
	if err != nil {
		return err
	}
	if dest != nil {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}
	resp, body, err := q.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}
	return decodeBody(body, dest)
}

// ParseContentRange extracts the total from "0-9/42" or "*/42"; -1 when unknown.
func ParseContentRange(h string) int64 {
	i := strings.LastIndexByte(h, '/')
	if i < 0 {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(h[i+1:]), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// QuoteValue double-quotes a filter value when it contains characters PostgREST
// treats as syntax inside in.() and or=() lists.
func QuoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ",.:()\"\\ ") {
		return v
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
