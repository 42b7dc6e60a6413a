package claim

import (
	"time"

	"github.com/shopspring/decimal"

	claimDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/claim"
)

// HeaderView is the claim row joined with its lookup names.
type HeaderView struct {
	ID             int64           `json:"id" db:"id"`
	UserID         int64           `json:"user_id" db:"user_id"`
	DepartmentID   *int64          `json:"department_id" db:"department_id"`
	DepartmentName *string         `json:"department_name" db:"department_name"`
	CostCenterID   *int64          `json:"cost_center_id" db:"cost_center_id"`
	CostCenterName *string         `json:"cost_center_name" db:"cost_center_name"`
	ProjectID      *int64          `json:"project_id" db:"project_id"`
	ProjectName    *string         `json:"project_name" db:"project_name"`
	Description    string          `json:"description" db:"description"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status         Status          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

type ItemView struct {
	ID            int64           `json:"id" db:"id"`
	ClaimID       int64           `json:"claim_id" db:"claim_id"`
	CategoryID    *int64          `json:"category_id" db:"category_id"`
	CategoryName  *string         `json:"category_name" db:"category_name"`
	ExpenseType   string          `json:"type" db:"expense_type"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Description   string          `json:"description" db:"description"`
	ExpenseDate   time.Time       `json:"date" db:"expense_date"`
	MealType      *string         `json:"meal_type,omitempty" db:"meal_type"`
	Headcount     *int            `json:"headcount,omitempty" db:"headcount"`
	TravelPurpose *string         `json:"travel_purpose,omitempty" db:"travel_purpose"`
	LodgingCity   *string         `json:"lodging_city,omitempty" db:"lodging_city"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type AttachmentView struct {
	ID         int64     `json:"id" db:"id"`
	ClaimID    int64     `json:"claim_id" db:"claim_id"`
	ItemID     int64     `json:"item_id" db:"item_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	FilePath   string    `json:"file_path" db:"file_path"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	MimeType   string    `json:"mime_type" db:"mime_type"`
	UploadedBy int64     `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ClaimResponse is the "data" object returned to clients: header fields
// inline, followed by items and attachments. Unrecorded lists the uploaded
// files a submission did not attach to any item.
type ClaimResponse struct {
	HeaderView
	Items       []ItemView       `json:"items"`
	Attachments []AttachmentView `json:"attachments"`
	Unrecorded  []UploadedFile   `json:"-"`
}

func headerFromRow(c *claimDatamodel.Claim) HeaderView {
	return HeaderView{
		ID:           c.ID,
		UserID:       c.UserID,
		DepartmentID: c.DepartmentID,
		CostCenterID: c.CostCenterID,
		ProjectID:    c.ProjectID,
		Description:  c.Description,
		TotalAmount:  c.TotalAmount,
		Status:       Status(c.Status),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func itemFromRow(it *claimDatamodel.Item) ItemView {
	return ItemView{
		ID:            it.ID,
		ClaimID:       it.ClaimID,
		CategoryID:    it.CategoryID,
		ExpenseType:   it.ExpenseType,
		Amount:        it.Amount,
		Description:   it.Description,
		ExpenseDate:   it.ExpenseDate,
		MealType:      it.MealType,
		Headcount:     it.Headcount,
		TravelPurpose: it.TravelPurpose,
		LodgingCity:   it.LodgingCity,
		CreatedAt:     it.CreatedAt,
	}
}
