package models

import (
	"time"

	"gorm.io/datatypes"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Threat is the canonical record for one vulnerability from one feed.
// Rows are written once at ingestion and never updated; the unique index
// on (source, source_id) is what makes re-ingestion a no-op.
type Threat struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Source   string `gorm:"size:50;not null;uniqueIndex:idx_threats_source_source_id" json:"source"`
	SourceID string `gorm:"size:255;not null;uniqueIndex:idx_threats_source_source_id" json:"source_id"`

	Title       string   `gorm:"size:1024;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Severity    Severity `gorm:"type:varchar(20);not null;default:'medium'" json:"severity"`
	CVSSScore   *float64 `json:"cvss_score"`

	AffectedVendor  *string `gorm:"size:255" json:"affected_vendor"`
	AffectedProduct *string `gorm:"size:255" json:"affected_product"`
	AffectedVersion *string `gorm:"size:255" json:"affected_version"`

	ExploitsAvailable bool `gorm:"not null;default:false" json:"exploits_available"`
	ActivelyExploited bool `gorm:"not null;default:false" json:"actively_exploited"`

	PublishedDate *time.Time     `json:"published_date"`
	RawData       datatypes.JSON `json:"-"`

	Briefings []Briefing `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
