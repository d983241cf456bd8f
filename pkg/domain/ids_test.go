package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tradegate/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant shared by every
// typed ID: valid, non-empty, non-nil UUIDs only. Parsing happens at trust
// boundaries, so rejections must carry the invalid_input code.
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseBuyerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseBuyerID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseBuyerID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		buyerID, err := ParseBuyerID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, BuyerID(validUUID), buyerID)
	})

	t.Run("all parsers share the rules", func(t *testing.T) {
		for name, parse := range map[string]func(string) error{
			"seller":      func(s string) error { _, err := ParseSellerID(s); return err },
			"product":     func(s string) error { _, err := ParseProductID(s); return err },
			"category":    func(s string) error { _, err := ParseCategoryID(s); return err },
			"lead":        func(s string) error { _, err := ParseLeadID(s); return err },
			"requirement": func(s string) error { _, err := ParseRequirementID(s); return err },
			"rfq":         func(s string) error { _, err := ParseRFQID(s); return err },
			"plan":        func(s string) error { _, err := ParsePlanID(s); return err },
		} {
			assert.Error(t, parse(""), name)
			assert.Error(t, parse(uuid.Nil.String()), name)
			assert.NoError(t, parse(uuid.NewString()), name)
		}
	})
}

// TestTypeDistinction verifies the compiler enforces type safety between ID
// kinds. If this compiles, the invariant holds; the runtime check only
// confirms values stay distinct.
func TestTypeDistinction(t *testing.T) {
	buyerID := BuyerID(uuid.New())
	sellerID := SellerID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ BuyerID = sellerID   // compile error
	// var _ SellerID = buyerID   // compile error

	assert.NotEqual(t, uuid.UUID(buyerID), uuid.UUID(sellerID))
}

func TestIDStringRoundTrip(t *testing.T) {
	leadID := NewLeadID()
	parsed, err := ParseLeadID(leadID.String())
	require.NoError(t, err)
	assert.Equal(t, leadID, parsed)
}

func TestIsNil(t *testing.T) {
	assert.True(t, BuyerID{}.IsNil())
	assert.False(t, NewBuyerID().IsNil())
}
