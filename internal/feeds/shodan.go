package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"threatdeck/internal/models"

	"gorm.io/datatypes"
)

// Shodan's public CVE database, keyless. The query pre-filters to KEV-listed
// entries sorted by exploit prediction score.
var ShodanCVEListURL = "https://cvedb.shodan.io/cves?limit=20&is_kev=true&sort=epss"

type shodanCVEList struct {
	CVEs []shodanCVE `json:"cves"`
}

type shodanCVE struct {
	CVEID              string   `json:"cve_id"`
	Summary            string   `json:"summary"`
	CVSS               *float64 `json:"cvss"`
	CVSSV3             *float64 `json:"cvss_v3"`
	EPSS               *float64 `json:"epss"`
	KEV                bool     `json:"kev"`
	RansomwareCampaign string   `json:"ransomware_campaign"`
	CPEs               []string `json:"cpes"`
	PublishedTime      string   `json:"published_time"`
}

func (ing *Ingestor) fetchShodan(ctx context.Context) ([]models.Threat, error) {
	res, err := ing.getJSON(ctx, ShodanCVEListURL, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("shodan cvedb returned %d", res.StatusCode)
	}

	var payload shodanCVEList
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not parse shodan cvedb payload: %w", err)
	}

	threats := make([]models.Threat, 0, len(payload.CVEs))
	for _, cve := range payload.CVEs {
		raw, _ := json.Marshal(cve)
		threats = append(threats, cve.toThreat(SourceShodan, raw))
	}
	return threats, nil
}

// toThreat maps one cvedb record onto the canonical shape. Shared with the
// greynoise adapter, which enriches EPSS rankings from the same database.
func (c shodanCVE) toThreat(source string, raw []byte) models.Threat {
	score := c.CVSSV3
	if score == nil {
		score = c.CVSS
	}
	scoreVal := 0.0
	if score != nil {
		scoreVal = *score
	}

	var vendor, product, version *string
	if len(c.CPEs) > 0 {
		vendor, product, version = parseCPE(c.CPEs[0])
	}

	epss := 0.0
	if c.EPSS != nil {
		epss = *c.EPSS
	}

	descParts := []string{}
	if c.Summary != "" {
		descParts = append(descParts, c.Summary)
	}
	if c.EPSS != nil {
		descParts = append(descParts, fmt.Sprintf("EPSS: %.4f", epss))
	}
	if c.RansomwareCampaign != "" && c.RansomwareCampaign != "Unknown" {
		descParts = append(descParts, "Ransomware campaign: "+c.RansomwareCampaign)
	}

	title := c.CVEID
	if c.Summary != "" {
		title = fmt.Sprintf("%s: %s", c.CVEID, Truncate(c.Summary, 200))
	}

	return models.Threat{
		Source:            source,
		SourceID:          c.CVEID,
		Title:             title,
		Description:       strings.Join(descParts, " | "),
		Severity:          SeverityFromScore(scoreVal),
		CVSSScore:         score,
		AffectedVendor:    vendor,
		AffectedProduct:   product,
		AffectedVersion:   version,
		ExploitsAvailable: epss > 0.5,
		ActivelyExploited: c.KEV,
		PublishedDate:     parseRFC3339(c.PublishedTime),
		RawData:           datatypes.JSON(raw),
	}
}
