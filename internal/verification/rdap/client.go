// Package rdap looks up a domain's registration age through the public RDAP
// protocol. It answers one question for buyer verification: when was this
// domain registered. Lookups are bounded by a timeout and never block a
// verification request indefinitely.
package rdap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result is the outcome of a domain age lookup. Known is false when the
// registry answered but produced no usable registration event; callers treat
// that conservatively as not-old-enough.
type Result struct {
	Known        bool
	RegisteredAt time.Time
	Age          time.Duration
}

// AgeYears returns the age estimate in fractional years.
func (r Result) AgeYears() float64 {
	return r.Age.Hours() / (24 * 365.25)
}

// Oracle resolves a domain's registration age. The returned error means the
// lookup itself failed (network, timeout, registry error) and may be retried
// later; it is never treated as evidence about the domain.
type Oracle interface {
	DomainAge(ctx context.Context, domain string) (Result, error)
}

// Client queries an RDAP bootstrap service (rdap.org by default).
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New constructs an RDAP client. timeout bounds each lookup end to end.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// rdapDomain is the subset of the RDAP domain response we read.
type rdapDomain struct {
	Events []rdapEvent `json:"events"`
}

type rdapEvent struct {
	EventAction string    `json:"eventAction"`
	EventDate   time.Time `json:"eventDate"`
}

// DomainAge fetches the domain's RDAP record and derives its age from the
// registration event. A 404 means the registry does not know the domain:
// that is a usable answer (Known=false), not a lookup failure.
func (c *Client) DomainAge(ctx context.Context, domain string) (Result, error) {
	domain = strings.TrimSpace(strings.ToLower(domain))
	if domain == "" {
		return Result{}, fmt.Errorf("domain is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/domain/"+url.PathEscape(domain), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build rdap request: %w", err)
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("rdap lookup for %s: %w", domain, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Result{Known: false}, nil
	case resp.StatusCode != http.StatusOK:
		return Result{}, fmt.Errorf("rdap lookup for %s: unexpected status %d", domain, resp.StatusCode)
	}

	var record rdapDomain
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return Result{}, fmt.Errorf("decode rdap response for %s: %w", domain, err)
	}

	registeredAt, ok := registrationEvent(record.Events)
	if !ok {
		return Result{Known: false}, nil
	}

	age := time.Since(registeredAt)
	if age < 0 {
		age = 0
	}
	return Result{Known: true, RegisteredAt: registeredAt, Age: age}, nil
}

// registrationEvent finds the earliest registration-class event. Some
// registries report "registration", others "last changed" only; only the
// former establishes age.
func registrationEvent(events []rdapEvent) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, e := range events {
		if e.EventAction != "registration" || e.EventDate.IsZero() {
			continue
		}
		if !found || e.EventDate.Before(earliest) {
			earliest = e.EventDate
			found = true
		}
	}
	return earliest, found
}
