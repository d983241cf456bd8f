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
	"tradegate/internal/membership"
	"tradegate/internal/rfq/service"
	rfqstore "tradegate/internal/rfq/store"
	id "tradegate/pkg/domain"
	"tradegate/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	router  http.Handler
	catalog *catalog.InMemoryStore
	plans   *membership.InMemoryStore

	buyer *buyer.Account
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	buyers := buyer.NewInMemoryStore()
	s.catalog = catalog.NewInMemoryStore()
	s.plans = membership.NewInMemoryStore()

	gate, err := entitlement.New(s.plans)
	s.Require().NoError(err)

	svc, err := service.New(rfqstore.NewInMemoryStore(), buyers, s.catalog, gate, 1, 7*24*time.Hour)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := New(svc, s.plans, gate, logger)

	r := chi.NewRouter()
	handler.Register(r)
	s.router = r

	s.buyer = &buyer.Account{
		ID:        id.NewBuyerID(),
		Email:     "jane@acme.com",
		Name:      "Jane Doe",
		State:     id.VerificationVerified,
		CreatedAt: time.Now(),
	}
	buyers.Seed(s.buyer)
}

func (s *HandlerSuite) submit(categories ...string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(SubmitRequirementRequest{
		ProductName: "Steel bolts",
		Quantity:    1000,
		Currency:    "usd",
		Categories:  categories,
	})
	req := httptest.NewRequest(http.MethodPost, "/requirements", bytes.NewReader(body))
	req = req.WithContext(requestcontext.WithBuyerID(req.Context(), s.buyer.ID))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestSubmitRequirement() {
	s.Run("fanout reports created and skipped", func() {
		withAnchor := id.NewCategoryID()
		s.catalog.Seed(&catalog.Product{
			ID:         id.NewProductID(),
			SellerID:   id.NewSellerID(),
			CategoryID: withAnchor,
			Name:       "Bolt",
			Active:     true,
			CreatedAt:  time.Now(),
		})
		empty := id.NewCategoryID()

		rec := s.submit(withAnchor.String(), empty.String())
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var resp FanoutResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("fanout", resp.Outcome)
		s.Equal(1, resp.Created)
		s.Require().Len(resp.Skipped, 1)
		s.Equal(empty.String(), resp.Skipped[0].CategoryID)
		s.Equal("no_eligible_anchor", resp.Skipped[0].Reason)
	})

	s.Run("zero rfqs is 200 with a distinct outcome", func() {
		rec := s.submit(id.NewCategoryID().String())
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp FanoutResponse
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("no_rfqs_created", resp.Outcome)
		s.Equal(0, resp.Created)
		s.Empty(resp.RFQs)
	})

	s.Run("missing categories is rejected", func() {
		rec := s.submit()
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unauthenticated is rejected", func() {
		req := httptest.NewRequest(http.MethodPost, "/requirements", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestListRFQs_BuyerSeesOwnContactUnredacted() {
	categoryID := id.NewCategoryID()
	s.catalog.Seed(&catalog.Product{
		ID:         id.NewProductID(),
		SellerID:   id.NewSellerID(),
		CategoryID: categoryID,
		Name:       "Bolt",
		Active:     true,
		CreatedAt:  time.Now(),
	})
	rec := s.submit(categoryID.String())
	s.Require().Equal(http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/rfqs", nil)
	req = req.WithContext(requestcontext.WithBuyerID(req.Context(), s.buyer.ID))
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp ListRFQsResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Require().Equal(1, resp.Count)
	s.True(resp.RFQs[0].Contact.Revealed)
	s.Equal(s.buyer.Email, resp.RFQs[0].Contact.Email)
}

func (s *HandlerSuite) TestSubmitQuote_FreePlanGetsUpgradeCTA() {
	sellerID := id.NewSellerID()
	categoryID := id.NewCategoryID()
	s.catalog.Seed(&catalog.Product{
		ID:         id.NewProductID(),
		SellerID:   sellerID,
		CategoryID: categoryID,
		Name:       "Bolt",
		Active:     true,
		CreatedAt:  time.Now(),
	})

	rec := s.submit(categoryID.String())
	s.Require().Equal(http.StatusOK, rec.Code)
	var fanout FanoutResponse
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&fanout))
	s.Require().Len(fanout.RFQs, 1)

	body, _ := json.Marshal(SubmitQuoteRequest{Price: 0.05, Quantity: 1000})
	req := httptest.NewRequest(http.MethodPost, "/rfqs/"+fanout.RFQs[0].ID+"/quote", bytes.NewReader(body))
	req = req.WithContext(requestcontext.WithSellerID(req.Context(), sellerID))
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusForbidden, rec.Code)
	s.Contains(rec.Body.String(), "entitlement_required")
	s.Contains(rec.Body.String(), membership.UpgradePlanName)
}
