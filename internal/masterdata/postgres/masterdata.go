package postgres

import (
	"context"

	masterdataDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/masterdata"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Departments(ctx context.Context) ([]*masterdataDatamodel.Department, error) {
	var rows []*masterdataDatamodel.Department
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) CostCenters(ctx context.Context) ([]*masterdataDatamodel.CostCenter, error) {
	var rows []*masterdataDatamodel.CostCenter
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) Projects(ctx context.Context) ([]*masterdataDatamodel.Project, error) {
	var rows []*masterdataDatamodel.Project
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) Categories(ctx context.Context) ([]*masterdataDatamodel.ExpenseCategory, error) {
	var rows []*masterdataDatamodel.ExpenseCategory
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&rows).Error
	return rows, err
}
