package claim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/expense-reimbursement/internal"
)

// ItemInput is one line item as submitted. Amount stays raw until it is
// coerced, because clients send both numbers and numeric strings.
type ItemInput struct {
	CategoryID    OptionalInt     `json:"category_id"`
	Type          string          `json:"type"`
	Amount        json.RawMessage `json:"amount"`
	Description   string          `json:"description"`
	Date          string          `json:"date"`
	MealType      *string         `json:"meal_type"`
	Headcount     OptionalInt     `json:"headcount"`
	TravelPurpose *string         `json:"travel_purpose"`
	LodgingCity   *string         `json:"lodging_city"`
}

// ValidationResult is the outcome of a validation step. Callers branch on
// Valid; Total is only meaningful for amount validation.
type ValidationResult struct {
	Valid bool
	Total decimal.Decimal
	Err   *internal.AppError
}

func invalid(err *internal.AppError) ValidationResult {
	return ValidationResult{Valid: false, Err: err}
}

// Amounts are stored as NUMERIC(14,2): at most two decimal places and
// strictly below maxAmount.
const amountScale = 2

var maxAmount = decimal.New(1, 12)

var errItemsRequired = internal.NewValidationFieldError("items", "at least one item is required", internal.ErrCodeItemsRequired)

// ValidateItemsShape requires items to be a non-empty JSON array of objects
// and returns the decoded items.
func ValidateItemsShape(raw json.RawMessage) ([]ItemInput, ValidationResult) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, invalid(errItemsRequired)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil || len(elems) == 0 {
		return nil, invalid(errItemsRequired)
	}

	items := make([]ItemInput, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &items[i]); err != nil {
			return nil, invalid(internal.NewValidationFieldError(
				fmt.Sprintf("items[%d]", i),
				fmt.Sprintf("item %d is malformed: %v", i+1, err),
				internal.ErrCodeValidationFailed))
		}
	}

	return items, ValidationResult{Valid: true}
}

// ValidateAmounts coerces every declared amount and sums them. Missing
// amounts count as zero; a non-numeric, negative or unstorable amount fails
// the batch.
func ValidateAmounts(items []ItemInput) ValidationResult {
	total := decimal.Zero
	for i, item := range items {
		amount, _, err := parseAmount(item.Amount)
		if err != nil || amount.IsNegative() {
			return invalid(internal.NewValidationFieldError(
				fmt.Sprintf("items[%d].amount", i),
				fmt.Sprintf("invalid amount: %s", amountText(item.Amount)),
				internal.ErrCodeInvalidAmount))
		}
		total = total.Add(amount)
	}

	if !total.IsPositive() {
		return invalid(internal.NewValidationFieldError("items", "total must be greater than zero", internal.ErrCodeInvalidTotal))
	}
	if total.GreaterThanOrEqual(maxAmount) {
		return invalid(internal.NewValidationFieldError("items",
			fmt.Sprintf("total must be less than %s", maxAmount.String()), internal.ErrCodeInvalidTotal))
	}

	return ValidationResult{Valid: true, Total: total}
}

// parseAmount returns present=false for a missing, null or blank amount.
func parseAmount(raw json.RawMessage) (amount decimal.Decimal, present bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return decimal.Zero, false, nil
	}

	text := string(trimmed)
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return decimal.Zero, true, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return decimal.Zero, false, nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
	default:
		return decimal.Zero, true, fmt.Errorf("amount is not a number")
	}

	amount, err = decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, true, err
	}
	if !amount.Equal(amount.Round(amountScale)) {
		return decimal.Zero, true, fmt.Errorf("more than %d decimal places", amountScale)
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, true, fmt.Errorf("must be less than %s", maxAmount.String())
	}
	return amount, true, nil
}

func amountText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
