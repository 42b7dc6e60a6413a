package claim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

// PayloadField is the multipart field that carries the claim as a JSON string.
const PayloadField = "data"

// Envelope is the transport form of a submission: either a structured body
// (RawEnvelope) or a JSON document serialized into a single form field
// (SerializedEnvelope). Normalize resolves it into a Submission.
type Envelope interface {
	envelope()
}

// RawEnvelope holds a JSON object body. Multipart requests without the
// payload field are re-encoded as an object of their text fields.
type RawEnvelope struct {
	Body []byte
}

// SerializedEnvelope holds the payload field's text and, as Fallback, the
// remaining body encoded the same way RawEnvelope would be.
type SerializedEnvelope struct {
	Data     string
	Fallback []byte
}

func (RawEnvelope) envelope()        {}
func (SerializedEnvelope) envelope() {}

// Submission is the claim header plus the still-unvalidated items array.
// FieldErr is the first header field that did not decode; the other fields
// and the items are kept so the caller can report the real problem.
type Submission struct {
	DepartmentID OptionalInt
	CostCenterID OptionalInt
	ProjectID    OptionalInt
	Description  string
	Status       string
	Items        json.RawMessage
	FieldErr     *internal.AppError
}

// Normalize never fails: a payload field that does not parse falls back to
// the raw body, and a body that does not parse yields a submission without
// items, which shape validation then rejects.
func Normalize(ctx context.Context, env Envelope) Submission {
	lg := logger.From(ctx)

	switch e := env.(type) {
	case SerializedEnvelope:
		sub, err := decodeSubmission([]byte(e.Data))
		if err == nil {
			return sub
		}
		lg.Warn("claim payload field is not valid JSON, using raw body", "field", PayloadField, "error", err)
		return decodeOrEmpty(ctx, e.Fallback)
	case RawEnvelope:
		return decodeOrEmpty(ctx, e.Body)
	default:
		lg.Warn("unsupported claim envelope", "type", fmt.Sprintf("%T", env))
		return Submission{}
	}
}

func decodeOrEmpty(ctx context.Context, body []byte) Submission {
	sub, err := decodeSubmission(body)
	if err != nil {
		logger.From(ctx).Warn("claim body is not a JSON object", "error", err)
		return Submission{}
	}
	return sub
}

// decodeSubmission fails only when data is not a JSON object. Header fields
// are decoded one at a time so a malformed field does not hide the items.
func decodeSubmission(data []byte) (Submission, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Submission{}, fmt.Errorf("empty payload")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Submission{}, err
	}

	sub := Submission{Items: fields["items"]}
	decodeField := func(name string, dst interface{}) {
		raw, ok := fields[name]
		if !ok || sub.FieldErr != nil {
			return
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			sub.FieldErr = internal.NewValidationFieldError(name,
				fmt.Sprintf("invalid %s: %s", name, bytes.TrimSpace(raw)),
				internal.ErrCodeValidationFailed)
		}
	}
	decodeField("department_id", &sub.DepartmentID)
	decodeField("cost_center_id", &sub.CostCenterID)
	decodeField("project_id", &sub.ProjectID)
	decodeField("description", &sub.Description)
	decodeField("status", &sub.Status)

	// form-encoded bodies carry the items array as a JSON string
	if items := bytes.TrimSpace(sub.Items); len(items) > 0 && items[0] == '"' {
		var inner string
		if err := json.Unmarshal(items, &inner); err == nil {
			sub.Items = json.RawMessage(inner)
		}
	}
	return sub, nil
}

// OptionalInt accepts a JSON number, a numeric string, an empty string or
// null. Form fields arrive as strings, JSON bodies usually as numbers.
type OptionalInt struct {
	Value int64
	Valid bool
}

func (o *OptionalInt) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == `""` {
		*o = OptionalInt{}
		return nil
	}
	raw = strings.Trim(raw, `"`)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*o = OptionalInt{}
		return nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s", string(b))
	}
	*o = OptionalInt{Value: v, Valid: true}
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

// Ptr returns nil for an absent value.
func (o OptionalInt) Ptr() *int64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
