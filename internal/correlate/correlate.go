// Package correlate matches ingested threats against declared assets and
// scores the urgency of each pairing. Everything here is pure; the caller
// supplies the asset set and the candidate threat pool.
package correlate

import (
	"math"
	"strings"

	"threatdeck/internal/models"
)

const (
	// MaxPerAsset caps how many matched threats feed briefings per asset.
	MaxPerAsset = 3
	// FallbackCount is how many pool entries an asset with zero matches
	// still receives, so every asset gets briefing material.
	FallbackCount = 2
)

// Match is one threat selected for an asset. Matched distinguishes a real
// vendor/product hit from the no-match fallback; the scorer weighs it.
type Match struct {
	Threat  models.Threat
	Matched bool
}

// ForAsset selects up to MaxPerAsset threats whose affected vendor or product
// appears inside the asset's declared vendor or product. The containment
// direction is deliberately one-way (asset field contains threat field) and
// must not be symmetrized. Pool order is preserved, never re-ranked.
func ForAsset(asset models.Asset, pool []models.Threat) []Match {
	matches := make([]Match, 0, MaxPerAsset)
	for _, threat := range pool {
		if !fieldsMatch(asset, threat) {
			continue
		}
		matches = append(matches, Match{Threat: threat, Matched: true})
		if len(matches) == MaxPerAsset {
			return matches
		}
	}
	if len(matches) > 0 {
		return matches
	}

	n := FallbackCount
	if n > len(pool) {
		n = len(pool)
	}
	fallback := make([]Match, 0, n)
	for _, threat := range pool[:n] {
		fallback = append(fallback, Match{Threat: threat, Matched: false})
	}
	return fallback
}

func fieldsMatch(asset models.Asset, threat models.Threat) bool {
	if asset.Vendor == nil && asset.Product == nil {
		return false
	}
	return contains(asset.Vendor, threat.AffectedVendor) ||
		contains(asset.Product, threat.AffectedProduct)
}

func contains(assetField, threatField *string) bool {
	if assetField == nil || threatField == nil {
		return false
	}
	a := strings.ToLower(strings.TrimSpace(*assetField))
	t := strings.ToLower(strings.TrimSpace(*threatField))
	if a == "" || t == "" {
		return false
	}
	return strings.Contains(a, t)
}

// PriorityScore computes the 0-10 urgency of a (threat, asset) pairing.
// Each component contributes on a 0-1 scale before the x10 blowup:
// CVSS base (unknown defaults to 5.0), +0.2 for a public exploit, +0.3 for
// active exploitation, +0.2 when the pairing came from a real match rather
// than the fallback. Clamped to 10, one decimal.
func PriorityScore(threat models.Threat, matched bool) float64 {
	base := 5.0
	if threat.CVSSScore != nil {
		base = *threat.CVSSScore
	}

	sum := base / 10
	if threat.ExploitsAvailable {
		sum += 0.2
	}
	if threat.ActivelyExploited {
		sum += 0.3
	}
	if matched {
		sum += 0.2
	}

	score := math.Min(10, sum*10)
	return math.Round(score*10) / 10
}
