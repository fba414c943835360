package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	hostwise "github.com/hostwise/hostwise-go"
)

// Filter is one column predicate in PostgREST syntax (eq, gte, lte, ...).
type Filter struct {
	Column string
	Op     string
	Value  string
}

// Eq builds an equality filter.
func Eq(column, value string) Filter {
	return Filter{Column: column, Op: "eq", Value: value}
}

// Gte builds a greater-or-equal filter.
func Gte(column, value string) Filter {
	return Filter{Column: column, Op: "gte", Value: value}
}

// Lte builds a less-or-equal filter.
func Lte(column, value string) Filter {
	return Filter{Column: column, Op: "lte", Value: value}
}

// Query describes a table read: predicates, ordering and a row cap.
type Query struct {
	Filters []Filter
	Order   string
	Desc    bool
	Limit   int
}

func (q Query) encode() string {
	v := url.Values{}
	for _, f := range q.Filters {
		v.Set(f.Column, f.Op+"."+f.Value)
	}
	if q.Order != "" {
		order := q.Order
		if q.Desc {
			order += ".desc"
		}
		v.Set("order", order)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v.Encode()
}

// tokenFunc supplies the bearer token for row requests. An empty return
// falls back to the anon key, leaving row-level security to scope access.
type tokenFunc func() string

// Rows is a thin client for the hosted row API. All entity backends go
// through it; decoding the returned JSON is the codec's job.
type Rows struct {
	baseURL string
	anonKey string
	http    *http.Client
	token   tokenFunc
	logger  *slog.Logger
}

// NewRows creates a row client for the given project configuration. token
// may be nil when only anon-key access is needed.
func NewRows(cfg Config, token tokenFunc, logger *slog.Logger) *Rows {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rows{
		baseURL: cfg.URL + "/rest/v1",
		anonKey: cfg.AnonKey,
		http:    cfg.httpClient(),
		token:   token,
		logger:  logger,
	}
}

// Select returns all rows matching the query as a raw JSON array.
func (r *Rows) Select(ctx context.Context, table string, q Query) (json.RawMessage, error) {
	return r.do(ctx, http.MethodGet, table, q, nil, "")
}

// SelectOne returns exactly one matching row as a raw JSON object.
// Returns hostwise.ErrNotFound when no row matches.
func (r *Rows) SelectOne(ctx context.Context, table string, q Query) (json.RawMessage, error) {
	return r.do(ctx, http.MethodGet, table, q, nil, "object")
}

// Insert creates a row and returns the stored representation, including
// server-assigned id and timestamps.
func (r *Rows) Insert(ctx context.Context, table string, payload any) (json.RawMessage, error) {
	return r.do(ctx, http.MethodPost, table, Query{}, payload, "object")
}

// Update patches the rows matching the query and returns the updated
// representation. Returns hostwise.ErrNotFound when nothing matched.
func (r *Rows) Update(ctx context.Context, table string, q Query, payload any) (json.RawMessage, error) {
	return r.do(ctx, http.MethodPatch, table, q, payload, "object")
}

// Delete removes the rows matching the query.
// Returns hostwise.ErrNotFound when nothing matched.
func (r *Rows) Delete(ctx context.Context, table string, q Query) error {
	_, err := r.do(ctx, http.MethodDelete, table, q, nil, "object")
	return err
}

func (r *Rows) do(ctx context.Context, method, table string, q Query, payload any, accept string) (json.RawMessage, error) {
	endpoint := r.baseURL + "/" + table
	if qs := q.encode(); qs != "" {
		endpoint += "?" + qs
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("hostwise/supabase: encode %s payload: %w", table, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("hostwise/supabase: build %s request: %w", table, err)
	}
	req.Header.Set("apikey", r.anonKey)
	req.Header.Set("Authorization", "Bearer "+r.bearer())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}
	if accept == "object" {
		// Single-object responses turn "no rows" into a 406 instead of
		// an empty array.
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hostwise/supabase: %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hostwise/supabase: read %s response: %w", table, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusNotAcceptable:
		return nil, hostwise.ErrNotFound
	case resp.StatusCode >= 400:
		r.logger.Warn("row request failed",
			"table", table,
			"method", method,
			"status", resp.StatusCode)
		return nil, fmt.Errorf("hostwise/supabase: %s %s: status %d: %s",
			method, table, resp.StatusCode, truncate(raw, 200))
	}
	return raw, nil
}

func (r *Rows) bearer() string {
	if r.token != nil {
		if tok := r.token(); tok != "" {
			return tok
		}
	}
	return r.anonKey
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
