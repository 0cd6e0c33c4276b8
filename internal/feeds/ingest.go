package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"threatdeck/internal/models"

	"gorm.io/gorm"
)

// Source names accepted by IngestSource, in the order IngestAll runs them.
const (
	SourceNVD       = "nvd"
	SourceCISAKEV   = "cisa_kev"
	SourceExploitDB = "exploitdb"
	SourceGitHub    = "github"
	SourceShodan    = "shodan"
	SourceGreyNoise = "greynoise"
)

var Sources = []string{
	SourceNVD, SourceCISAKEV, SourceExploitDB, SourceGitHub, SourceShodan, SourceGreyNoise,
}

var ErrUnknownSource = errors.New("unknown threat source")

const fetchTimeout = 30 * time.Second

// SourceResult is the per-source outcome of an ingest-all run.
type SourceResult struct {
	New   int    `json:"new"`
	Error string `json:"error,omitempty"`
}

// Ingestor fetches raw records from the external feeds, normalizes them into
// canonical threats and writes the ones not seen before.
type Ingestor struct {
	db         *gorm.DB
	httpClient *http.Client
}

func NewIngestor(db *gorm.DB) *Ingestor {
	return &Ingestor{
		db:         db,
		httpClient: &http.Client{},
	}
}

// Upsert writes the candidate unless a threat with the same (source,
// source_id) already exists. Existing rows are never touched. The check-then-
// insert pair is backed by a unique index on the same columns, so two
// concurrent runs over the same source cannot slip a duplicate through.
func (ing *Ingestor) Upsert(candidate models.Threat) (bool, error) {
	var count int64
	err := ing.db.Model(&models.Threat{}).
		Where("source = ? AND source_id = ?", candidate.Source, candidate.SourceID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := ing.db.Create(&candidate).Error; err != nil {
		return false, fmt.Errorf("insert threat: %w", err)
	}
	return true, nil
}

// IngestSource fetches one feed and returns how many threats were new.
func (ing *Ingestor) IngestSource(ctx context.Context, source string) (int, error) {
	fetch, ok := ing.adapters()[source]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	candidates, err := fetch(fetchCtx)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", source, err)
	}

	inserted := 0
	for _, c := range candidates {
		ok, err := ing.Upsert(c)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}

	slog.Info("ingested source", "source", source, "candidates", len(candidates), "new", inserted)
	return inserted, nil
}

// IngestAll runs every known source. One source failing never aborts the
// others; the failed source reports zero new threats and its error.
func (ing *Ingestor) IngestAll(ctx context.Context) map[string]SourceResult {
	results := make(map[string]SourceResult, len(Sources))
	for _, source := range Sources {
		count, err := ing.IngestSource(ctx, source)
		if err != nil {
			slog.Error("ingestion failed", "source", source, "err", err)
			results[source] = SourceResult{New: 0, Error: err.Error()}
			continue
		}
		results[source] = SourceResult{New: count}
	}
	return results
}

func (ing *Ingestor) adapters() map[string]func(context.Context) ([]models.Threat, error) {
	return map[string]func(context.Context) ([]models.Threat, error){
		SourceNVD:       ing.fetchNVD,
		SourceCISAKEV:   ing.fetchCISAKEV,
		SourceExploitDB: ing.fetchExploitDB,
		SourceGitHub:    ing.fetchGitHub,
		SourceShodan:    ing.fetchShodan,
		SourceGreyNoise: ing.fetchGreyNoise,
	}
}

func (ing *Ingestor) getJSON(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return ing.httpClient.Do(req)
}
