package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"tradegate/internal/buyer"
	"tradegate/internal/catalog"
	"tradegate/internal/entitlement"
	"tradegate/internal/lead/quota"
	"tradegate/internal/lead/service"
	leadstore "tradegate/internal/lead/store"
	"tradegate/internal/membership"
	id "tradegate/pkg/domain"
	"tradegate/pkg/requestcontext"
)

// HandlerSuite wires the lead handler against real in-memory components.
type HandlerSuite struct {
	suite.Suite
	router  http.Handler
	buyers  *buyer.InMemoryStore
	catalog *catalog.InMemoryStore
	plans   *membership.InMemoryStore

	buyer   *buyer.Account
	seller  id.SellerID
	product *catalog.Product
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.buyers = buyer.NewInMemoryStore()
	s.catalog = catalog.NewInMemoryStore()
	s.plans = membership.NewInMemoryStore()

	quotaLedger, err := quota.New(quota.NewInMemoryStore(), 3, 0)
	s.Require().NoError(err)

	svc, err := service.New(leadstore.NewInMemoryStore(), s.buyers, s.catalog, quotaLedger, 48*time.Hour)
	s.Require().NoError(err)

	gate, err := entitlement.New(s.plans)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(svc, s.plans, gate, logger)

	r := chi.NewRouter()
	handler.Register(r)
	s.router = r

	s.buyer = &buyer.Account{
		ID:            id.NewBuyerID(),
		Email:         "jane.doe@acme.com",
		Name:          "Jane Doe",
		Phone:         "+1-555-0100",
		Company:       "Acme Trading",
		ClaimedDomain: "acme.com",
		State:         id.VerificationUnverified,
		CreatedAt:     time.Now(),
	}
	s.buyers.Seed(s.buyer)

	s.seller = id.NewSellerID()
	s.product = &catalog.Product{
		ID:         id.NewProductID(),
		SellerID:   s.seller,
		CategoryID: id.NewCategoryID(),
		Name:       "Widget",
		Active:     true,
		CreatedAt:  time.Now(),
	}
	s.catalog.Seed(s.product)
}

func (s *HandlerSuite) asBuyer(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithBuyerID(req.Context(), s.buyer.ID))
}

func (s *HandlerSuite) asSeller(req *http.Request, sellerID id.SellerID) *http.Request {
	return req.WithContext(requestcontext.WithSellerID(req.Context(), sellerID))
}

func (s *HandlerSuite) createLead() string {
	body, _ := json.Marshal(CreateLeadRequest{ProductID: s.product.ID.String(), Message: "need stock", Quantity: 10})
	req := s.asBuyer(httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp CreateLeadResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	return resp.ID
}

// =============================================================================
// HandleCreateLead Tests
// =============================================================================

func (s *HandlerSuite) TestCreateLead_Unauthenticated() {
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestCreateLead_InvalidJSON() {
	req := s.asBuyer(httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader([]byte("not json"))))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestCreateLead_Success() {
	leadID := s.createLead()
	s.NotEmpty(leadID)
}

func (s *HandlerSuite) TestCreateLead_QuotaExhausted() {
	for i := 0; i < 3; i++ {
		s.createLead()
	}

	body, _ := json.Marshal(CreateLeadRequest{ProductID: s.product.ID.String(), Quantity: 1})
	req := s.asBuyer(httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(body)))
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusForbidden, rec.Code)
	s.Contains(rec.Body.String(), "quota_exceeded")
	s.Contains(rec.Body.String(), "verify")
}

// =============================================================================
// HandleListLeads Tests
// =============================================================================

func (s *HandlerSuite) TestListLeads_RedactsForFreePlan() {
	s.createLead()

	req := s.asSeller(httptest.NewRequest(http.MethodGet, "/leads", nil), s.seller)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp ListLeadsResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Require().Equal(1, resp.Count)

	contact := resp.Leads[0].Contact
	s.False(contact.Revealed)
	s.Equal("J***", contact.Name)
	s.Equal("***@***.com", contact.Email)
	s.Equal("Acme Trading", contact.Company)
	s.Contains(contact.UpgradeMessage, membership.UpgradePlanName)
}

func (s *HandlerSuite) TestListLeads_RevealsForPaidPlan() {
	s.plans.Assign(s.seller, &membership.Plan{Name: membership.UpgradePlanName, ContactReveal: true})
	s.createLead()

	req := s.asSeller(httptest.NewRequest(http.MethodGet, "/leads", nil), s.seller)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp ListLeadsResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Require().Equal(1, resp.Count)
	s.True(resp.Leads[0].Contact.Revealed)
	s.Equal("jane.doe@acme.com", resp.Leads[0].Contact.Email)
}

func (s *HandlerSuite) TestListLeads_BadQuery() {
	req := s.asSeller(httptest.NewRequest(http.MethodGet, "/leads?limit=banana", nil), s.seller)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Seller Mutation Tests
// =============================================================================

func (s *HandlerSuite) TestMarkRead() {
	leadID := s.createLead()

	req := s.asSeller(httptest.NewRequest(http.MethodPost, "/leads/"+leadID+"/read", nil), s.seller)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp LeadResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.True(resp.IsRead)
}

func (s *HandlerSuite) TestUpdateStatus_ForeignSeller() {
	leadID := s.createLead()

	body, _ := json.Marshal(UpdateStatusRequest{Status: "closed"})
	req := s.asSeller(httptest.NewRequest(http.MethodPatch, "/leads/"+leadID+"/status", bytes.NewReader(body)), id.NewSellerID())
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestUpdateStatus_InvalidStatus() {
	leadID := s.createLead()

	body, _ := json.Marshal(UpdateStatusRequest{Status: "archived"})
	req := s.asSeller(httptest.NewRequest(http.MethodPatch, "/leads/"+leadID+"/status", bytes.NewReader(body)), s.seller)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}
