package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrLookupUnavailable marks a failed location resolution. Callers must not
// treat it as "not restricted": an unreachable lookup service is a distinct
// condition from a caller whose country is simply unknown.
var ErrLookupUnavailable = errors.New("location service unavailable")

const defaultLookupBaseURL = "http://ip-api.com/json"

// Location describes where a request originated.
type Location struct {
	Country     string
	CountryCode string
	City        string
	IP          string
}

// Lookup resolves an IP address to a location.
type Lookup interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// IPAPIClient resolves locations via the ip-api.com JSON endpoint.
type IPAPIClient struct {
	client  *http.Client
	baseURL string
}

// NewIPAPIClient builds a lookup client with a bounded request timeout.
func NewIPAPIClient() *IPAPIClient {
	return &IPAPIClient{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: defaultLookupBaseURL,
	}
}

// NewIPAPIClientWithBaseURL builds a lookup client against a custom endpoint.
func NewIPAPIClientWithBaseURL(baseURL string) *IPAPIClient {
	c := NewIPAPIClient()
	c.baseURL = baseURL
	return c
}

type ipAPIResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
	Query       string `json:"query"`
}

// Locate fetches geolocation data for the IP. Any transport or service
// failure is reported as ErrLookupUnavailable.
func (c *IPAPIClient) Locate(ctx context.Context, ip string) (Location, error) {
	url := fmt.Sprintf("%s/%s?fields=status,message,country,countryCode,city,query", c.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: status %d", ErrLookupUnavailable, resp.StatusCode)
	}

	var payload ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	}
	if payload.Status == "fail" {
		return Location{}, fmt.Errorf("%w: %s", ErrLookupUnavailable, payload.Message)
	}

	loc := Location{
		Country:     payload.Country,
		CountryCode: payload.CountryCode,
		City:        payload.City,
		IP:          payload.Query,
	}
	if loc.IP == "" {
		loc.IP = ip
	}
	return loc, nil
}
