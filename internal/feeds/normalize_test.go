package feeds

import (
	"strings"
	"testing"

	"threatdeck/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSeverityFromScore(t *testing.T) {
	table := []struct {
		score    float64
		expected models.Severity
	}{
		{0, models.SeverityMedium},
		{0.1, models.SeverityLow},
		{3.99, models.SeverityLow},
		{4.0, models.SeverityMedium},
		{6.99, models.SeverityMedium},
		{7.0, models.SeverityHigh},
		{8.99, models.SeverityHigh},
		{9.0, models.SeverityCritical},
		{10.0, models.SeverityCritical},
	}

	for _, tt := range table {
		assert.Equal(t, tt.expected, SeverityFromScore(tt.score), "score %.2f", tt.score)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 200))
	assert.Equal(t, strings.Repeat("a", 200), Truncate(strings.Repeat("a", 300), 200))
	assert.Equal(t, "", Truncate("", 200))
}

func TestParseCPE(t *testing.T) {
	vendor, product, version := parseCPE("cpe:2.3:a:apache:http_server:2.4.49:*:*:*:*:*:*:*")
	if assert.NotNil(t, vendor) {
		assert.Equal(t, "apache", *vendor)
	}
	if assert.NotNil(t, product) {
		assert.Equal(t, "http_server", *product)
	}
	if assert.NotNil(t, version) {
		assert.Equal(t, "2.4.49", *version)
	}

	vendor, product, version = parseCPE("cpe:2.3:a:*:nginx:-:*")
	assert.Nil(t, vendor)
	if assert.NotNil(t, product) {
		assert.Equal(t, "nginx", *product)
	}
	assert.Nil(t, version)

	vendor, product, version = parseCPE("garbage")
	assert.Nil(t, vendor)
	assert.Nil(t, product)
	assert.Nil(t, version)
}
