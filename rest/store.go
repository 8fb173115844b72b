package rest

import (
	"context"
	"fmt"

	"github.com/cppla/dualfetch/models"
)

var (
	ErrNotFound      = models.ErrNotFound
	ErrInvalidParent = models.ErrInvalidParent
)

// Store is the PostgREST-backed data layer. It mirrors orm.Store so both paths can be
// compared result for result.
type Store struct {
	c *Client
}

func NewStore(c *Client) *Store {
	return &Store{c: c}
}

// Client exposes the underlying query builder.
func (s *Store) Client() *Client { return s.c }

type idRow struct {
	ID string `json:"id"`
}

// lookupID resolves a unique column value to a row id, ErrNotFound when absent.
func (s *Store) lookupID(ctx context.Context, table, column, value string) (string, error) {
	var rows []idRow
	if _, err := s.c.From(table).Select("id").Eq(column, value).Limit(1).Execute(ctx, &rows); err != nil {
		return "", fmt.Errorf("look up %s.%s: %w", table, column, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%s %s=%s: %w", table, column, value, ErrNotFound)
	}
	return rows[0].ID, nil
}
