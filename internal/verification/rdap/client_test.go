package rdap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdapServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second)
}

func TestDomainAge(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the registration event", func(t *testing.T) {
		client := rdapServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/domain/acme.com", r.URL.Path)
			assert.Equal(t, "application/rdap+json", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "application/rdap+json")
			_, _ = w.Write([]byte(`{
				"events": [
					{"eventAction": "last changed", "eventDate": "2025-06-01T00:00:00Z"},
					{"eventAction": "registration", "eventDate": "2015-03-15T00:00:00Z"}
				]
			}`))
		})

		result, err := client.DomainAge(ctx, "acme.com")
		require.NoError(t, err)
		assert.True(t, result.Known)
		assert.Equal(t, time.Date(2015, 3, 15, 0, 0, 0, 0, time.UTC), result.RegisteredAt)
		assert.Greater(t, result.AgeYears(), 10.0)
	})

	t.Run("picks the earliest of several registration events", func(t *testing.T) {
		client := rdapServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{
				"events": [
					{"eventAction": "registration", "eventDate": "2020-01-01T00:00:00Z"},
					{"eventAction": "registration", "eventDate": "2010-01-01T00:00:00Z"}
				]
			}`))
		})

		result, err := client.DomainAge(ctx, "acme.com")
		require.NoError(t, err)
		assert.Equal(t, 2010, result.RegisteredAt.Year())
	})

	t.Run("normalizes the domain before the request", func(t *testing.T) {
		client := rdapServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/domain/acme.com", r.URL.Path)
			_, _ = w.Write([]byte(`{"events": []}`))
		})

		_, err := client.DomainAge(ctx, "  ACME.com ")
		require.NoError(t, err)
	})

	t.Run("404 is a usable unknown, not an error", func(t *testing.T) {
		client := rdapServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		result, err := client.DomainAge(ctx, "no-such-domain.example")
		require.NoError(t, err)
		assert.False(t, result.Known)
	})

	t.Run("missing registration event is unknown", func(t *testing.T) {
		client := rdapServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"events": [{"eventAction": "last changed", "eventDate": "2025-06-01T00:00:00Z"}]}`))
		})

		result, err := client.DomainAge(ctx, "acme.com")
		require.NoError(t, err)
		assert.False(t, result.Known)
	})

	t.Run("server errors surface as lookup failures", func(t *testing.T) {
		client := rdapServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.DomainAge(ctx, "acme.com")
		assert.Error(t, err)
	})

	t.Run("slow registry hits the timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"events": []}`))
		}))
		t.Cleanup(srv.Close)
		client := New(srv.URL, 50*time.Millisecond)

		_, err := client.DomainAge(ctx, "acme.com")
		assert.Error(t, err)
	})

	t.Run("empty domain is rejected", func(t *testing.T) {
		client := New("http://127.0.0.1:1", time.Second)
		_, err := client.DomainAge(ctx, "   ")
		assert.Error(t, err)
	})
}
