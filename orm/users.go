package orm

import (
	"context"
	"fmt"

	"github.com/cppla/dualfetch/models"
)

// GetUsers lists the authors a comment can be posted as, by name.
func (s *Store) GetUsers(ctx context.Context) ([]models.UserBrief, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.UserBrief, 0, len(users))
	for _, u := range users {
		out = append(out, u.Brief())
	}
	return out, nil
}
