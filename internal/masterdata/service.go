package masterdata

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/expense-reimbursement/internal"
	masterdataDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/masterdata"
)

type RepositoryAPI interface {
	Departments(ctx context.Context) ([]*masterdataDatamodel.Department, error)
	CostCenters(ctx context.Context) ([]*masterdataDatamodel.CostCenter, error)
	Projects(ctx context.Context) ([]*masterdataDatamodel.Project, error)
	Categories(ctx context.Context) ([]*masterdataDatamodel.ExpenseCategory, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetLookups returns every active reference value. Inactive rows stay in
// the tables for historical claims but are not offered for new ones.
func (s *Service) GetLookups(ctx context.Context) (*Lookups, error) {
	departments, err := s.repo.Departments(ctx)
	if err != nil {
		s.logger.Error("failed to load departments", "error", err)
		return nil, internal.NewInternalError("failed to load departments", err)
	}

	costCenters, err := s.repo.CostCenters(ctx)
	if err != nil {
		s.logger.Error("failed to load cost centers", "error", err)
		return nil, internal.NewInternalError("failed to load cost centers", err)
	}

	projects, err := s.repo.Projects(ctx)
	if err != nil {
		s.logger.Error("failed to load projects", "error", err)
		return nil, internal.NewInternalError("failed to load projects", err)
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		s.logger.Error("failed to load categories", "error", err)
		return nil, internal.NewInternalError("failed to load categories", err)
	}

	lookups := &Lookups{
		Departments: departmentOptions(departments),
		CostCenters: costCenterOptions(costCenters),
		Projects:    projectOptions(projects),
		Categories:  categoryOptions(categories),
	}

	s.logger.Debug("retrieved lookups",
		"departments", len(lookups.Departments),
		"cost_centers", len(lookups.CostCenters),
		"projects", len(lookups.Projects),
		"categories", len(lookups.Categories))
	return lookups, nil
}
