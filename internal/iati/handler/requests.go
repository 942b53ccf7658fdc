package handler

import (
	"strings"

	dErrors "aims/pkg/domain-errors"
	strutil "aims/pkg/platform/strings"
)

// CreateActivityRequest registers an activity shell imports can target.
type CreateActivityRequest struct {
	IATIIdentifier string `json:"iati_identifier"`
}

func (r *CreateActivityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.IATIIdentifier = strings.TrimSpace(r.IATIIdentifier)
	if r.IATIIdentifier == "" {
		return dErrors.New(dErrors.CodeValidation, "iati_identifier is required")
	}
	if len(r.IATIIdentifier) > 255 {
		return dErrors.New(dErrors.CodeValidation, "iati_identifier must be 255 characters or less")
	}
	return nil
}

// ImportRequest carries the document and the reviewer's field selection.
type ImportRequest struct {
	Document string   `json:"document"`
	Accepted []string `json:"accepted"`
}

func (r *ImportRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Document) == "" {
		return dErrors.New(dErrors.CodeValidation, "document is required")
	}
	r.Accepted = strutil.DedupeAndTrim(r.Accepted)
	if len(r.Accepted) == 0 {
		return dErrors.New(dErrors.CodeValidation, "accepted must list at least one field")
	}
	return nil
}
