package handler

import (
	"strings"

	"tradegate/internal/lead"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

const maxMessageLength = 4000

// CreateLeadRequest is the HTTP request body for POST /leads.
type CreateLeadRequest struct {
	ProductID string `json:"product_id"`
	Message   string `json:"message"`
	Quantity  int    `json:"quantity"`

	// Parsed values (populated by Validate)
	parsedProductID id.ProductID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateLeadRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if len(r.Message) > maxMessageLength {
		return dErrors.New(dErrors.CodeInvalidInput, "message must be at most 4000 characters")
	}
	if r.Quantity < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "quantity cannot be negative")
	}

	r.ProductID = strings.TrimSpace(r.ProductID)
	if r.ProductID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "product_id is required")
	}
	productID, err := id.ParseProductID(r.ProductID)
	if err != nil {
		return err
	}
	r.parsedProductID = productID

	r.Message = strings.TrimSpace(r.Message)
	return nil
}

// ParsedProductID returns the validated product ID.
func (r *CreateLeadRequest) ParsedProductID() id.ProductID {
	return r.parsedProductID
}

// UpdateStatusRequest is the HTTP request body for PATCH /leads/{leadID}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`

	parsedStatus lead.Status
}

func (r *UpdateStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := lead.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	r.parsedStatus = status
	return nil
}

func (r *UpdateStatusRequest) ParsedStatus() lead.Status {
	return r.parsedStatus
}
