package briefing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"threatdeck/internal/database"
	"threatdeck/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type stubGenerator struct {
	reply   string
	failOn  string
	calls   int
	lastErr error
}

func (s *stubGenerator) Chat(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.failOn != "" && strings.Contains(prompt, s.failOn) {
		s.lastErr = errors.New("generator unavailable")
		return "", s.lastErr
	}
	return s.reply, nil
}

func ptr[T any](v T) *T {
	return &v
}

func seedThreat(t *testing.T, db *gorm.DB, sourceID, vendor string, severity models.Severity, cvss float64) models.Threat {
	t.Helper()
	threat := models.Threat{
		Source:   "nvd",
		SourceID: sourceID,
		Title:    sourceID + ": test",
		Severity: severity,
	}
	if vendor != "" {
		threat.AffectedVendor = ptr(vendor)
	}
	if cvss > 0 {
		threat.CVSSScore = ptr(cvss)
	}
	require.NoError(t, db.Create(&threat).Error)
	return threat
}

func seedAsset(t *testing.T, db *gorm.DB, name, vendor string, owner *uint) models.Asset {
	t.Helper()
	asset := models.Asset{Name: name, Type: "server", OwnerID: owner}
	if vendor != "" {
		asset.Vendor = ptr(vendor)
	}
	require.NoError(t, db.Create(&asset).Error)
	return asset
}

const wellFormedReply = "SUMMARY: The logging tier is exposed.\n" +
	"REMEDIATION: 1. Upgrade log4j.\n" +
	"IMPACT: Full compromise of the host."

func TestGenerateRequiresAssets(t *testing.T) {
	db := newTestDB(t)
	seedThreat(t, db, "CVE-1", "apache", models.SeverityCritical, 9.8)

	syn := NewSynthesizer(db, &stubGenerator{reply: wellFormedReply})
	_, err := syn.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAssets)
}

func TestGenerateRequiresQualifyingThreats(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "web-01", "apache", nil)
	// low severity never enters the pool
	seedThreat(t, db, "CVE-1", "apache", models.SeverityLow, 2.0)

	syn := NewSynthesizer(db, &stubGenerator{reply: wellFormedReply})
	_, err := syn.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoThreats)
}

func TestGeneratePersistsParsedBriefing(t *testing.T) {
	db := newTestDB(t)
	asset := seedAsset(t, db, "web-01", "Apache Software Foundation", nil)
	threat := seedThreat(t, db, "CVE-2021-44228", "apache", models.SeverityCritical, 9.8)

	syn := NewSynthesizer(db, &stubGenerator{reply: wellFormedReply})
	generated, err := syn.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	var row models.Briefing
	require.NoError(t, db.Where("threat_id = ? AND asset_id = ?", threat.ID, asset.ID).First(&row).Error)
	assert.Equal(t, "The logging tier is exposed.", row.Summary)
	assert.Equal(t, "1. Upgrade log4j.", row.Remediation)
	assert.Equal(t, "Full compromise of the host.", row.BusinessImpact)
	assert.Equal(t, models.BriefingNew, row.Status)
	// 0.98 base, no exploit flags, +0.2 match bonus, clamped
	assert.InDelta(t, 10.0, row.PriorityScore, 0.0001)
}

func TestGenerateIsIdempotentPerPair(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "web-01", "apache httpd", nil)
	seedThreat(t, db, "CVE-2021-44228", "apache", models.SeverityCritical, 9.8)

	syn := NewSynthesizer(db, &stubGenerator{reply: wellFormedReply})

	generated, err := syn.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, generated)

	generated, err = syn.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, generated)

	var count int64
	require.NoError(t, db.Model(&models.Briefing{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGenerateFallsBackWhenGeneratorFails(t *testing.T) {
	db := newTestDB(t)
	asset := seedAsset(t, db, "web-01", "apache httpd", nil)
	failing := seedThreat(t, db, "CVE-2024-0001", "apache", models.SeverityCritical, 9.9)
	working := seedThreat(t, db, "CVE-2024-0002", "httpd", models.SeverityHigh, 8.0)

	gen := &stubGenerator{reply: wellFormedReply, failOn: "CVE-2024-0001"}
	syn := NewSynthesizer(db, gen)

	generated, err := syn.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, generated)

	var fallback models.Briefing
	require.NoError(t, db.Where("threat_id = ? AND asset_id = ?", failing.ID, asset.ID).First(&fallback).Error)
	assert.Contains(t, fallback.Summary, "CVE-2024-0001")
	assert.Contains(t, fallback.Remediation, "1. Update to the latest patched version.")
	assert.NotEmpty(t, fallback.BusinessImpact)

	var parsed models.Briefing
	require.NoError(t, db.Where("threat_id = ? AND asset_id = ?", working.ID, asset.ID).First(&parsed).Error)
	assert.Equal(t, "The logging tier is exposed.", parsed.Summary)
}

func TestGenerateUsesFallbackPairsForUnmatchedAssets(t *testing.T) {
	db := newTestDB(t)
	seedAsset(t, db, "erp-01", "Acme", nil)
	first := seedThreat(t, db, "CVE-1", "microsoft", models.SeverityCritical, 9.9)
	second := seedThreat(t, db, "CVE-2", "oracle", models.SeverityCritical, 9.1)
	seedThreat(t, db, "CVE-3", "cisco", models.SeverityHigh, 8.0)

	syn := NewSynthesizer(db, &stubGenerator{reply: wellFormedReply})
	generated, err := syn.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, generated)

	var rows []models.Briefing
	require.NoError(t, db.Order("threat_id asc").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, first.ID, rows[0].ThreatID)
	assert.Equal(t, second.ID, rows[1].ThreatID)
	// no match bonus on fallback pairs: 0.99 * 10 = 9.9
	assert.InDelta(t, 9.9, rows[0].PriorityScore, 0.0001)
	assert.InDelta(t, 9.1, rows[1].PriorityScore, 0.0001)
}

func TestGenerateScopesByOwner(t *testing.T) {
	db := newTestDB(t)
	mine := seedAsset(t, db, "mine", "apache", ptr(uint(1)))
	shared := seedAsset(t, db, "shared", "apache", nil)
	seedAsset(t, db, "theirs", "apache", ptr(uint(2)))
	seedThreat(t, db, "CVE-1", "apache", models.SeverityCritical, 9.0)

	syn := NewSynthesizer(db, &stubGenerator{reply: wellFormedReply})
	generated, err := syn.Generate(context.Background(), ptr(uint(1)))
	require.NoError(t, err)
	assert.Equal(t, 2, generated)

	var assetIDs []uint
	require.NoError(t, db.Model(&models.Briefing{}).Order("asset_id asc").
		Pluck("asset_id", &assetIDs).Error)
	assert.Equal(t, []uint{mine.ID, shared.ID}, assetIDs)
}
