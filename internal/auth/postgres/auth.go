package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	userDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) FindActiveUser(ctx context.Context, userID int64) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "email", "is_active").
		Where("id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	if !row.IsActive {
		return nil, auth.ErrUserInactive
	}
	return &auth.User{ID: row.ID, Email: row.Email}, nil
}
