package feeds

import (
	"context"
	"encoding/json"
	"fmt"

	"threatdeck/internal/models"

	"gorm.io/datatypes"
)

var NVDURL = "https://services.nvd.nist.gov/rest/json/cves/2.0?resultsPerPage=20"

type nvdResponse struct {
	Vulnerabilities []struct {
		CVE nvdCVE `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdCVE struct {
	ID           string `json:"id"`
	Published    string `json:"published"`
	Descriptions []struct {
		Lang  string `json:"lang"`
		Value string `json:"value"`
	} `json:"descriptions"`
	Metrics        map[string][]nvdMetric `json:"metrics"`
	Configurations []struct {
		Nodes []struct {
			CPEMatch []struct {
				Criteria string `json:"criteria"`
			} `json:"cpeMatch"`
		} `json:"nodes"`
	} `json:"configurations"`
}

type nvdMetric struct {
	CVSSData struct {
		BaseScore float64 `json:"baseScore"`
	} `json:"cvssData"`
}

func (ing *Ingestor) fetchNVD(ctx context.Context) ([]models.Threat, error) {
	res, err := ing.getJSON(ctx, NVDURL, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("nvd returned %d", res.StatusCode)
	}

	var payload nvdResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not parse nvd payload: %w", err)
	}

	threats := make([]models.Threat, 0, len(payload.Vulnerabilities))
	for _, vuln := range payload.Vulnerabilities {
		cve := vuln.CVE

		desc := ""
		for _, d := range cve.Descriptions {
			if d.Lang == "en" {
				desc = d.Value
				break
			}
		}

		// newest CVSS metric wins
		var score *float64
		for _, version := range []string{"cvssMetricV31", "cvssMetricV30", "cvssMetricV2"} {
			if metrics := cve.Metrics[version]; len(metrics) > 0 {
				s := metrics[0].CVSSData.BaseScore
				score = &s
				break
			}
		}

		var vendor, product, version *string
		for _, config := range cve.Configurations {
			for _, node := range config.Nodes {
				if len(node.CPEMatch) > 0 {
					vendor, product, version = parseCPE(node.CPEMatch[0].Criteria)
					break
				}
			}
			if vendor != nil || product != nil {
				break
			}
		}

		title := cve.ID
		if desc != "" {
			title = fmt.Sprintf("%s: %s", cve.ID, Truncate(desc, 200))
		}

		scoreVal := 0.0
		if score != nil {
			scoreVal = *score
		}

		raw, _ := json.Marshal(cve)
		threats = append(threats, models.Threat{
			Source:          SourceNVD,
			SourceID:        cve.ID,
			Title:           title,
			Description:     desc,
			Severity:        SeverityFromScore(scoreVal),
			CVSSScore:       score,
			AffectedVendor:  vendor,
			AffectedProduct: product,
			AffectedVersion: version,
			PublishedDate:   parseRFC3339(cve.Published),
			RawData:         datatypes.JSON(raw),
		})
	}
	return threats, nil
}
