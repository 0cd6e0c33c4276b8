package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"threatdeck/internal/models"
)

// FIRST.org EPSS ranking, keyless; entries are enriched with full CVE details
// from Shodan's CVE database.
var (
	EPSSRankingURL = "https://api.first.org/data/v1/epss?order=!epss&limit=20"
	ShodanCVEURL   = "https://cvedb.shodan.io/cve/"
)

const (
	greyNoiseActive = 0.9
	greyNoiseLikely = 0.7
)

type epssResponse struct {
	Data []struct {
		CVE        string `json:"cve"`
		EPSS       string `json:"epss"`
		Percentile string `json:"percentile"`
	} `json:"data"`
}

func (ing *Ingestor) fetchGreyNoise(ctx context.Context) ([]models.Threat, error) {
	res, err := ing.getJSON(ctx, EPSSRankingURL, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("first epss returned %d", res.StatusCode)
	}

	var ranking epssResponse
	if err := json.NewDecoder(res.Body).Decode(&ranking); err != nil {
		return nil, fmt.Errorf("could not parse epss payload: %w", err)
	}

	threats := make([]models.Threat, 0, len(ranking.Data))
	for _, entry := range ranking.Data {
		if entry.CVE == "" {
			continue
		}
		epss, _ := strconv.ParseFloat(entry.EPSS, 64)
		percentile, _ := strconv.ParseFloat(entry.Percentile, 64)

		threat := ing.enrichFromShodan(ctx, entry.CVE, epss, percentile)
		threats = append(threats, threat)
	}
	return threats, nil
}

// enrichFromShodan builds the threat from cvedb details when available and
// degrades to an EPSS-only record when the lookup fails.
func (ing *Ingestor) enrichFromShodan(ctx context.Context, cveID string, epss, percentile float64) models.Threat {
	epssNote := fmt.Sprintf("EPSS: %.4f (percentile: %.2f)", epss, percentile)

	threat := models.Threat{
		Source:            SourceGreyNoise,
		SourceID:          cveID,
		Title:             fmt.Sprintf("%s (EPSS: %.4f)", cveID, epss),
		Description:       epssNote,
		Severity:          epssSeverity(epss),
		ExploitsAvailable: epss > 0.5,
		ActivelyExploited: epss > greyNoiseActive,
	}

	res, err := ing.getJSON(ctx, ShodanCVEURL+cveID, nil)
	if err != nil {
		return threat
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return threat
	}

	var detail shodanCVE
	if err := json.NewDecoder(res.Body).Decode(&detail); err != nil {
		return threat
	}

	raw, _ := json.Marshal(detail)
	enriched := detail.toThreat(SourceGreyNoise, raw)
	if enriched.SourceID == "" {
		enriched.SourceID = cveID
	}
	enriched.Description = joinNonEmpty(detail.Summary, epssNote, ransomwareNote(detail))
	if enriched.CVSSScore == nil {
		enriched.Severity = epssSeverity(epss)
	}
	enriched.ExploitsAvailable = epss > 0.5
	enriched.ActivelyExploited = detail.KEV || epss > greyNoiseActive
	if detail.Summary == "" {
		enriched.Title = threat.Title
	}
	return enriched
}

func epssSeverity(epss float64) models.Severity {
	switch {
	case epss > greyNoiseActive:
		return models.SeverityCritical
	case epss > greyNoiseLikely:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

func ransomwareNote(c shodanCVE) string {
	if c.RansomwareCampaign == "" || c.RansomwareCampaign == "Unknown" {
		return ""
	}
	return "Ransomware campaign: " + c.RansomwareCampaign
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " | "
		}
		out += p
	}
	return out
}
