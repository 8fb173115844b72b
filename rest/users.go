package rest

import (
	"context"
	"fmt"

	"github.com/cppla/dualfetch/models"
)

// ListUsers lists comment authors by name.
func (s *Store) ListUsers(ctx context.Context) ([]models.UserBrief, error) {
	var rows []UserBriefRow
	if _, err := s.c.From("users").Select(userBriefColumns).Order("name", true).Execute(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.UserBrief, 0, len(rows))
	for i := range rows {
		out = append(out, toUserBrief(&rows[i]))
	}
	return out, nil
}
