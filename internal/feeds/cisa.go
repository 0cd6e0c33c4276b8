package feeds

import (
	"context"
	"encoding/json"
	"fmt"

	"threatdeck/internal/models"

	"gorm.io/datatypes"
)

var CISAKEVURL = "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json"

// KEV is a curated catalog, so only the newest slice is ingested per run.
const kevLimit = 30

type kevCatalog struct {
	Vulnerabilities []kevEntry `json:"vulnerabilities"`
}

type kevEntry struct {
	CVEID             string `json:"cveID"`
	VendorProject     string `json:"vendorProject"`
	Product           string `json:"product"`
	VulnerabilityName string `json:"vulnerabilityName"`
	DateAdded         string `json:"dateAdded"`
	ShortDescription  string `json:"shortDescription"`
}

func (ing *Ingestor) fetchCISAKEV(ctx context.Context) ([]models.Threat, error) {
	res, err := ing.getJSON(ctx, CISAKEVURL, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("cisa kev returned %d", res.StatusCode)
	}

	var catalog kevCatalog
	if err := json.NewDecoder(res.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("could not parse kev catalog: %w", err)
	}

	entries := catalog.Vulnerabilities
	if len(entries) > kevLimit {
		entries = entries[:kevLimit]
	}

	threats := make([]models.Threat, 0, len(entries))
	for _, entry := range entries {
		raw, _ := json.Marshal(entry)
		// everything in KEV is exploited in the wild by definition
		threats = append(threats, models.Threat{
			Source:            SourceCISAKEV,
			SourceID:          entry.CVEID,
			Title:             fmt.Sprintf("%s: %s", entry.CVEID, entry.VulnerabilityName),
			Description:       entry.ShortDescription,
			Severity:          models.SeverityCritical,
			AffectedVendor:    lowerPtr(entry.VendorProject),
			AffectedProduct:   lowerPtr(entry.Product),
			ExploitsAvailable: true,
			ActivelyExploited: true,
			PublishedDate:     parseDate(entry.DateAdded),
			RawData:           datatypes.JSON(raw),
		})
	}
	return threats, nil
}
