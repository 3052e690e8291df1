package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rideway/rideway/internal/logging"
)

func TestRestrictorMatchesCaseInsensitively(t *testing.T) {
	r := NewRestrictor([]string{"SY", "AF", "IR", "KP", "CU"}, logging.Discard())

	cases := []struct {
		code string
		want bool
	}{
		{"SY", true},
		{"sy", true},
		{" kp ", true},
		{"US", false},
		{"FR", false},
	}
	for _, tc := range cases {
		if got := r.IsRestricted(tc.code); got != tc.want {
			t.Fatalf("IsRestricted(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestRestrictorFailsOpenOnEmptyCode(t *testing.T) {
	r := NewRestrictor([]string{"SY"}, logging.Discard())
	if r.IsRestricted("") {
		t.Fatal("empty country code must not restrict")
	}
	if r.IsRestricted("   ") {
		t.Fatal("blank country code must not restrict")
	}
}

func TestLocateParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","country":"Canada","countryCode":"CA","city":"Toronto","query":"203.0.113.7"}`))
	}))
	defer srv.Close()

	client := NewIPAPIClientWithBaseURL(srv.URL)
	loc, err := client.Locate(context.Background(), "203.0.113.7")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if loc.CountryCode != "CA" || loc.Country != "Canada" || loc.City != "Toronto" {
		t.Fatalf("unexpected location %+v", loc)
	}
	if loc.IP != "203.0.113.7" {
		t.Fatalf("unexpected ip %q", loc.IP)
	}
}

func TestLocateFailStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	client := NewIPAPIClientWithBaseURL(srv.URL)
	if _, err := client.Locate(context.Background(), "10.0.0.1"); !errors.Is(err, ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}

func TestLocateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewIPAPIClientWithBaseURL(srv.URL)
	if _, err := client.Locate(context.Background(), "203.0.113.7"); !errors.Is(err, ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}

func TestLocateUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	client := NewIPAPIClientWithBaseURL(srv.URL)
	if _, err := client.Locate(context.Background(), "203.0.113.7"); !errors.Is(err, ErrLookupUnavailable) {
		t.Fatalf("expected ErrLookupUnavailable, got %v", err)
	}
}
