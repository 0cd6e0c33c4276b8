// Package briefing turns correlated (threat, asset) pairs into stored
// advisory briefings, using an external text generator when it is available
// and deterministic templates when it is not.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"threatdeck/internal/correlate"
	"threatdeck/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNoAssets  = errors.New("no assets in scope")
	ErrNoThreats = errors.New("no high or critical threats ingested")
)

// poolLimit caps the candidate threat pool fed to the correlator.
const poolLimit = 50

// Generator produces free text from a prompt. Implemented by llm.Client;
// tests substitute stubs.
type Generator interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

type Synthesizer struct {
	db  *gorm.DB
	gen Generator
}

func NewSynthesizer(db *gorm.DB, gen Generator) *Synthesizer {
	return &Synthesizer{db: db, gen: gen}
}

// Generate correlates every asset in the owner scope against the current
// high/critical threat pool and persists one briefing per uncovered pair.
// A nil ownerID means the whole inventory; a set ownerID covers that owner's
// assets plus the shared (unowned) ones. Returns how many briefings were
// created. Individual pair failures degrade to fallback text or are skipped;
// only empty preconditions surface as errors.
func (s *Synthesizer) Generate(ctx context.Context, ownerID *uint) (int, error) {
	var assets []models.Asset
	q := s.db.Order("created_at asc")
	if ownerID != nil {
		q = q.Where("owner_id = ? OR owner_id IS NULL", *ownerID)
	}
	if err := q.Find(&assets).Error; err != nil {
		return 0, fmt.Errorf("load assets: %w", err)
	}
	if len(assets) == 0 {
		return 0, ErrNoAssets
	}

	pool, err := s.threatPool()
	if err != nil {
		return 0, err
	}
	if len(pool) == 0 {
		return 0, ErrNoThreats
	}

	generated := 0
	for _, asset := range assets {
		for _, match := range correlate.ForAsset(asset, pool) {
			covered, err := s.alreadyBriefed(match.Threat.ID, asset.ID)
			if err != nil {
				slog.Error("briefing lookup failed", "threat", match.Threat.ID, "asset", asset.ID, "err", err)
				continue
			}
			if covered {
				continue
			}

			content := s.compose(ctx, match.Threat, asset)
			row := models.Briefing{
				ThreatID:       match.Threat.ID,
				AssetID:        asset.ID,
				Summary:        content.summary,
				Remediation:    content.remediation,
				BusinessImpact: content.impact,
				PriorityScore:  correlate.PriorityScore(match.Threat, match.Matched),
				Status:         models.BriefingNew,
				OwnerID:        asset.OwnerID,
			}
			if err := s.db.Create(&row).Error; err != nil {
				slog.Error("could not persist briefing", "threat", match.Threat.ID, "asset", asset.ID, "err", err)
				continue
			}
			generated++
		}
	}

	slog.Info("briefing generation finished", "assets", len(assets), "pool", len(pool), "generated", generated)
	return generated, nil
}

// threatPool loads the high/critical threats the correlator works against,
// strongest CVSS first.
func (s *Synthesizer) threatPool() ([]models.Threat, error) {
	var pool []models.Threat
	err := s.db.
		Where("severity IN ?", []models.Severity{models.SeverityCritical, models.SeverityHigh}).
		Order("cvss_score DESC NULLS LAST").
		Limit(poolLimit).
		Find(&pool).Error
	if err != nil {
		return nil, fmt.Errorf("load threat pool: %w", err)
	}
	return pool, nil
}

func (s *Synthesizer) alreadyBriefed(threatID, assetID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Briefing{}).
		Where("threat_id = ? AND asset_id = ?", threatID, assetID).
		Count(&count).Error
	return count > 0, err
}

type briefingContent struct {
	summary     string
	remediation string
	impact      string
}

// compose asks the generator for the three advisory sections and always
// comes back with usable content: parse failures keep the raw text as the
// summary, transport failures fall back to the deterministic template.
func (s *Synthesizer) compose(ctx context.Context, threat models.Threat, asset models.Asset) briefingContent {
	text, err := s.gen.Chat(ctx, buildPrompt(threat, asset))
	if err != nil {
		slog.Warn("text generation failed, using fallback", "threat", threat.SourceID, "asset", asset.Name, "err", err)
		return fallbackContent(threat, asset)
	}
	return parseSections(text)
}

// fallbackContent builds the briefing purely from local fields.
func fallbackContent(threat models.Threat, asset models.Asset) briefingContent {
	product := asset.Name
	if asset.Product != nil {
		product = *asset.Product
		if asset.Version != nil {
			product += " " + *asset.Version
		}
	}

	summary := fmt.Sprintf("Threat %s (%s) affects %s (%s).", threat.SourceID, threat.Severity, asset.Name, product)
	if threat.Description != "" {
		summary += " " + threat.Description
	}

	return briefingContent{
		summary: summary,
		remediation: "1. Update to the latest patched version.\n" +
			"2. Monitor for indicators of compromise.\n" +
			"3. Review access controls and network segmentation.",
		impact: "This vulnerability could lead to unauthorized access, data breach, " +
			"or service disruption if not addressed promptly.",
	}
}
