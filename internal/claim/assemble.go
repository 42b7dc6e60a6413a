package claim

import (
	"context"
	"errors"
	"log/slog"
)

// Capabilities caches which optional tables exist for the duration of one
// request.
type Capabilities struct {
	Attachments bool
}

// ClaimDetail is the assembled read model. A nil Header means assembly was
// degraded; Degraded carries the reason.
type ClaimDetail struct {
	Header      *HeaderView
	Items       []ItemView
	Attachments []AttachmentView
	Degraded    error
}

type Assembler struct {
	reader DetailReader
	logger *slog.Logger
}

func NewAssembler(reader DetailReader, logger *slog.Logger) *Assembler {
	return &Assembler{reader: reader, logger: logger}
}

// Assemble never fails. Header and items are read as one unit: if either
// read fails the result has no header and no items. Attachments are read on
// their own and default to an empty list.
func (a *Assembler) Assemble(ctx context.Context, claimID int64, caps Capabilities) ClaimDetail {
	detail := ClaimDetail{
		Items:       []ItemView{},
		Attachments: []AttachmentView{},
	}

	header, err := a.reader.FindHeader(ctx, claimID)
	if err != nil {
		detail.Degraded = err
		return detail
	}
	items, err := a.reader.FindItems(ctx, claimID)
	if err != nil {
		detail.Degraded = err
		return detail
	}

	detail.Header = header
	if items != nil {
		detail.Items = items
	}

	if !caps.Attachments {
		return detail
	}

	attachments, err := a.reader.FindAttachments(ctx, claimID)
	switch {
	case err == nil:
		if attachments != nil {
			detail.Attachments = attachments
		}
	case errors.Is(err, ErrRelationMissing):
	default:
		a.logger.Warn("failed to load claim attachments", "error", err, "claim_id", claimID)
	}

	return detail
}

// Response flattens the detail into the client shape.
func (d ClaimDetail) Response() *ClaimResponse {
	if d.Header == nil {
		return nil
	}
	return &ClaimResponse{
		HeaderView:  *d.Header,
		Items:       d.Items,
		Attachments: d.Attachments,
	}
}
