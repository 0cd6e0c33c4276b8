package feeds

import (
	"strings"
	"time"

	"threatdeck/internal/models"
)

// SeverityFromScore maps a CVSS score onto a severity label for sources that
// provide a number but no label. Zero means the source did not report a score
// at all, which is treated the same as unknown.
func SeverityFromScore(score float64) models.Severity {
	switch {
	case score == 0:
		return models.SeverityMedium
	case score >= 9.0:
		return models.SeverityCritical
	case score >= 7.0:
		return models.SeverityHigh
	case score >= 4.0:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// parseCPE pulls vendor, product and version out of a CPE 2.3 identifier
// (cpe:2.3:a:vendor:product:version:...). Wildcard fields come back nil.
func parseCPE(criteria string) (vendor, product, version *string) {
	parts := strings.Split(criteria, ":")
	if len(parts) < 5 {
		return nil, nil, nil
	}
	vendor = cpeField(parts[3])
	product = cpeField(parts[4])
	if len(parts) > 5 {
		version = cpeField(parts[5])
	}
	return vendor, product, version
}

func cpeField(s string) *string {
	if s == "" || s == "*" || s == "-" {
		return nil
	}
	return &s
}

func parseRFC3339(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// some feeds publish without an offset
		t, err = time.Parse("2006-01-02T15:04:05", s)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func lowerPtr(s string) *string {
	return strPtr(strings.ToLower(s))
}
