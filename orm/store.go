// Package orm serves blog reads and writes straight from the relational database
// through gorm.
package orm

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/dualfetch/models"
)

var (
	ErrNotFound      = models.ErrNotFound
	ErrInvalidParent = models.ErrInvalidParent
)

// Store is the ORM-backed data layer. It is safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open gorm handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// groupCount receives "<key>, COUNT(*)" aggregates.
type groupCount struct {
	GroupKey string
	Total    int64
}

func countsByKey(rows []groupCount) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.Total
	}
	return out
}

// notFound converts gorm's miss into the shared sentinel, keeping the original in the chain.
func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

const likeEscape = '!'

// likePattern lower-cases term and escapes LIKE wildcards so user input matches literally.
func likePattern(term string) string {
	var b strings.Builder
	b.WriteByte('%')
	for _, r := range strings.ToLower(term) {
		if r == '%' || r == '_' || r == likeEscape {
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}
