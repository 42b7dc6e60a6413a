package claim

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim is the reimbursement header row.
type Claim struct {
	ID           int64           `gorm:"primaryKey"`
	UserID       int64           `gorm:"column:user_id;not null;index"`
	DepartmentID *int64          `gorm:"column:department_id"`
	CostCenterID *int64          `gorm:"column:cost_center_id"`
	ProjectID    *int64          `gorm:"column:project_id"`
	Description  string          `gorm:"column:description"`
	TotalAmount  decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Status       string          `gorm:"column:status;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Claim) TableName() string {
	return "reimbursement_claims"
}

// Item is one expense line of a claim. The category-specific columns are
// optional and stored as submitted.
type Item struct {
	ID            int64           `gorm:"primaryKey"`
	ClaimID       int64           `gorm:"column:claim_id;not null;index"`
	CategoryID    *int64          `gorm:"column:category_id"`
	ExpenseType   string          `gorm:"column:expense_type;not null"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Description   string          `gorm:"column:description"`
	ExpenseDate   time.Time       `gorm:"column:expense_date;type:date;not null"`
	MealType      *string         `gorm:"column:meal_type"`
	Headcount     *int            `gorm:"column:headcount"`
	TravelPurpose *string         `gorm:"column:travel_purpose"`
	LodgingCity   *string         `gorm:"column:lodging_city"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Item) TableName() string {
	return "reimbursement_items"
}

// Attachment records a stored receipt file for one item.
type Attachment struct {
	ID         int64     `gorm:"primaryKey"`
	ClaimID    int64     `gorm:"column:claim_id;not null;index"`
	ItemID     int64     `gorm:"column:item_id;not null;index"`
	FileName   string    `gorm:"column:file_name;not null"`
	FilePath   string    `gorm:"column:file_path;not null"`
	FileSize   int64     `gorm:"column:file_size"`
	MimeType   string    `gorm:"column:mime_type"`
	UploadedBy int64     `gorm:"column:uploaded_by"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Attachment) TableName() string {
	return "reimbursement_attachments"
}
