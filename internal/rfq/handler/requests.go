package handler

import (
	"strings"

	"tradegate/internal/rfq/service"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	pstrings "tradegate/pkg/platform/strings"
)

const (
	maxDetailsLength  = 4000
	maxCategoryCount  = 20
	defaultCurrency   = "USD"
	maxCurrencyLength = 3
)

// SubmitRequirementRequest is the HTTP request body for POST /requirements.
type SubmitRequirementRequest struct {
	ProductName string   `json:"product_name"`
	Quantity    int      `json:"quantity"`
	TradeTerms  string   `json:"trade_terms"`
	TargetPrice float64  `json:"target_price"`
	Currency    string   `json:"currency"`
	MaxBudget   float64  `json:"max_budget"`
	Details     string   `json:"details"`
	Categories  []string `json:"categories"`

	parsedCategories []id.CategoryID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitRequirementRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if len(r.Details) > maxDetailsLength {
		return dErrors.New(dErrors.CodeInvalidInput, "details must be at most 4000 characters")
	}
	r.Categories = pstrings.DedupeAndTrimLower(r.Categories)
	if len(r.Categories) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one category is required")
	}
	if len(r.Categories) > maxCategoryCount {
		return dErrors.New(dErrors.CodeInvalidInput, "at most 20 categories per requirement")
	}

	r.ProductName = strings.TrimSpace(r.ProductName)
	if r.ProductName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "product_name is required")
	}
	if r.Quantity <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "quantity must be positive")
	}
	if r.TargetPrice < 0 || r.MaxBudget < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "prices cannot be negative")
	}

	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
	if len(r.Currency) != maxCurrencyLength {
		return dErrors.New(dErrors.CodeInvalidInput, "currency must be a 3-letter code")
	}

	r.parsedCategories = make([]id.CategoryID, 0, len(r.Categories))
	for _, raw := range r.Categories {
		categoryID, err := id.ParseCategoryID(raw)
		if err != nil {
			return err
		}
		r.parsedCategories = append(r.parsedCategories, categoryID)
	}

	r.TradeTerms = strings.TrimSpace(r.TradeTerms)
	r.Details = strings.TrimSpace(r.Details)
	return nil
}

// ToInput converts the validated request to the service input.
func (r *SubmitRequirementRequest) ToInput() service.RequirementInput {
	return service.RequirementInput{
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		TradeTerms:  r.TradeTerms,
		TargetPrice: r.TargetPrice,
		Currency:    r.Currency,
		MaxBudget:   r.MaxBudget,
		Details:     r.Details,
		Categories:  r.parsedCategories,
	}
}

// SubmitQuoteRequest is the HTTP request body for POST /rfqs/{rfqID}/quote.
type SubmitQuoteRequest struct {
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	Quantity      int     `json:"quantity"`
	DeliveryTerms string  `json:"delivery_terms"`
}

func (r *SubmitQuoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Price <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "price must be positive")
	}
	if r.Quantity <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "quantity must be positive")
	}
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
	if len(r.Currency) != maxCurrencyLength {
		return dErrors.New(dErrors.CodeInvalidInput, "currency must be a 3-letter code")
	}
	r.DeliveryTerms = strings.TrimSpace(r.DeliveryTerms)
	return nil
}

// ToInput converts the validated request to the service input.
func (r *SubmitQuoteRequest) ToInput() service.QuoteInput {
	return service.QuoteInput{
		Price:         r.Price,
		Currency:      r.Currency,
		Quantity:      r.Quantity,
		DeliveryTerms: r.DeliveryTerms,
	}
}

// QuoteDecisionRequest is the HTTP request body for POST /rfqs/{rfqID}/decision.
type QuoteDecisionRequest struct {
	Decision string `json:"decision"`
}

func (r *QuoteDecisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	switch strings.TrimSpace(r.Decision) {
	case "accept", "reject":
		return nil
	default:
		return dErrors.New(dErrors.CodeInvalidInput, `decision must be "accept" or "reject"`)
	}
}

// Accepted reports whether the buyer accepted the quote.
func (r *QuoteDecisionRequest) Accepted() bool {
	return strings.TrimSpace(r.Decision) == "accept"
}
