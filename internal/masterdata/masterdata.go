package masterdata

import (
	masterdataDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/masterdata"
)

// Option is one selectable value for a claim or item reference.
type Option struct {
	ID          int64  `json:"id"`
	Code        string `json:"code,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Lookups lists the active values a claim form can reference by id.
type Lookups struct {
	Departments []Option `json:"departments"`
	CostCenters []Option `json:"cost_centers"`
	Projects    []Option `json:"projects"`
	Categories  []Option `json:"categories"`
}

func departmentOptions(rows []*masterdataDatamodel.Department) []Option {
	out := make([]Option, 0, len(rows))
	for _, r := range rows {
		if r.IsActive {
			out = append(out, Option{ID: r.ID, Code: r.Code, Name: r.Name})
		}
	}
	return out
}

func costCenterOptions(rows []*masterdataDatamodel.CostCenter) []Option {
	out := make([]Option, 0, len(rows))
	for _, r := range rows {
		if r.IsActive {
			out = append(out, Option{ID: r.ID, Code: r.Code, Name: r.Name})
		}
	}
	return out
}

func projectOptions(rows []*masterdataDatamodel.Project) []Option {
	out := make([]Option, 0, len(rows))
	for _, r := range rows {
		if r.IsActive {
			out = append(out, Option{ID: r.ID, Code: r.Code, Name: r.Name})
		}
	}
	return out
}

func categoryOptions(rows []*masterdataDatamodel.ExpenseCategory) []Option {
	out := make([]Option, 0, len(rows))
	for _, r := range rows {
		if r.IsActive {
			out = append(out, Option{ID: r.ID, Name: r.Name, Description: r.Description})
		}
	}
	return out
}
