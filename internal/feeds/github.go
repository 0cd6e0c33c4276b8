package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"threatdeck/internal/models"

	"gorm.io/datatypes"
)

var GitHubAdvisoriesURL = "https://api.github.com/advisories?per_page=20&type=reviewed"

type githubAdvisory struct {
	GHSAID      string `json:"ghsa_id"`
	CVEID       string `json:"cve_id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	PublishedAt string `json:"published_at"`
	CVSS        struct {
		Score float64 `json:"score"`
	} `json:"cvss"`
	Vulnerabilities []struct {
		Package struct {
			Name      string `json:"name"`
			Ecosystem string `json:"ecosystem"`
		} `json:"package"`
		VulnerableVersionRange string `json:"vulnerable_version_range"`
	} `json:"vulnerabilities"`
}

func (ing *Ingestor) fetchGitHub(ctx context.Context) ([]models.Threat, error) {
	res, err := ing.getJSON(ctx, GitHubAdvisoriesURL, map[string]string{
		"Accept": "application/vnd.github+json",
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("github advisories returned %d", res.StatusCode)
	}

	var advisories []githubAdvisory
	if err := json.NewDecoder(res.Body).Decode(&advisories); err != nil {
		return nil, fmt.Errorf("could not parse github advisories: %w", err)
	}

	threats := make([]models.Threat, 0, len(advisories))
	for _, adv := range advisories {
		sourceID := adv.CVEID
		if sourceID == "" {
			sourceID = adv.GHSAID
		}
		if sourceID == "" {
			continue
		}

		severity := models.Severity(strings.ToLower(adv.Severity))
		switch severity {
		case models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow:
		default:
			severity = models.SeverityMedium
		}

		var score *float64
		if adv.CVSS.Score > 0 {
			s := adv.CVSS.Score
			score = &s
		}

		var vendor, product, version *string
		if len(adv.Vulnerabilities) > 0 {
			pkg := adv.Vulnerabilities[0]
			vendor = lowerPtr(pkg.Package.Ecosystem)
			product = strPtr(pkg.Package.Name)
			version = strPtr(pkg.VulnerableVersionRange)
		}

		title := adv.Summary
		if title == "" {
			title = sourceID
		}

		raw, _ := json.Marshal(adv)
		threats = append(threats, models.Threat{
			Source:          SourceGitHub,
			SourceID:        sourceID,
			Title:           Truncate(title, 500),
			Description:     Truncate(adv.Description, 3000),
			Severity:        severity,
			CVSSScore:       score,
			AffectedVendor:  vendor,
			AffectedProduct: product,
			AffectedVersion: version,
			PublishedDate:   parseRFC3339(adv.PublishedAt),
			RawData:         datatypes.JSON(raw),
		})
	}
	return threats, nil
}
