package store

import (
	"context"
	"fmt"

	"github.com/developmentHC/conectaBemBack/internal/models"
	"gorm.io/gorm"
)

// UserStore resolves users and clinics for appointment projections.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByID loads one user.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &user, nil
}

// FindByIDs loads every user in ids, keyed by id. Unknown ids are skipped.
func (s *UserStore) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	users := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

// FindClinic loads one clinic.
func (s *UserStore) FindClinic(ctx context.Context, id string) (*models.Clinic, error) {
	var clinic models.Clinic
	if err := s.db.WithContext(ctx).First(&clinic, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find clinic")
	}
	return &clinic, nil
}
