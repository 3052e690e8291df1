// Package geo resolves caller locations and enforces country restrictions
// at registration time.
package geo

import (
	"log/slog"
	"strings"
)

// Restrictor checks 2-letter country codes against a blocked set.
type Restrictor struct {
	blocked map[string]struct{}
	logger  *slog.Logger
}

// NewRestrictor builds a restrictor from a list of country codes.
func NewRestrictor(codes []string, logger *slog.Logger) *Restrictor {
	blocked := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		blocked[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}
	return &Restrictor{blocked: blocked, logger: logger}
}

// IsRestricted reports whether registrations from the country are blocked.
// An empty code resolves to not restricted: blocking every caller whose
// country cannot be determined would lock out more legitimate users than
// it would stop, so the check fails open and logs instead.
func (r *Restrictor) IsRestricted(countryCode string) bool {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		if r.logger != nil {
			r.logger.Warn("country code missing, allowing registration")
		}
		return false
	}
	_, restricted := r.blocked[code]
	return restricted
}
