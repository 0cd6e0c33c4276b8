package feeds

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"threatdeck/internal/models"
)

var ExploitDBURL = "https://gitlab.com/exploit-database/exploitdb/-/raw/main/files_exploits.csv"

const exploitDBLimit = 20

// fetchExploitDB reads the exploit index CSV and keeps the trailing (most
// recent) rows. Upstream rows carry a bare numeric id; the stored source_id
// is prefixed so it stays unique and self-describing.
func (ing *Ingestor) fetchExploitDB(ctx context.Context) ([]models.Threat, error) {
	res, err := ing.getJSON(ctx, ExploitDBURL, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("exploitdb returned %d", res.StatusCode)
	}

	reader := csv.NewReader(res.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse exploitdb csv: %w", err)
	}

	if len(rows) > exploitDBLimit {
		rows = rows[len(rows)-exploitDBLimit:]
	}

	threats := make([]models.Threat, 0, len(rows))
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		if _, err := strconv.Atoi(row[0]); err != nil {
			// header or malformed row
			continue
		}

		title := Truncate(row[2], 500)
		threat := models.Threat{
			Source:            SourceExploitDB,
			SourceID:          "EDB-" + row[0],
			Title:             title,
			Description:       "Public exploit available: " + title,
			Severity:          models.SeverityHigh,
			ExploitsAvailable: true,
		}
		if len(row) > 3 {
			threat.PublishedDate = parseDate(row[3])
		}
		threats = append(threats, threat)
	}
	return threats, nil
}
