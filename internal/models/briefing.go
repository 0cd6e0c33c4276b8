package models

import "time"

type BriefingStatus string

const (
	BriefingNew          BriefingStatus = "new"
	BriefingAcknowledged BriefingStatus = "acknowledged"
	BriefingInProgress   BriefingStatus = "in_progress"
	BriefingResolved     BriefingStatus = "resolved"
)

// ValidBriefingStatus reports whether s is one of the four workflow states.
func ValidBriefingStatus(s BriefingStatus) bool {
	switch s {
	case BriefingNew, BriefingAcknowledged, BriefingInProgress, BriefingResolved:
		return true
	}
	return false
}

// Briefing ties one threat to one asset with synthesized advisory text and an
// urgency score. At most one briefing exists per (threat, asset) pair; the
// synthesizer checks before inserting. Only Status is ever mutated.
type Briefing struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ThreatID uint   `gorm:"not null;index" json:"threat_id"`
	Threat   Threat `json:"-"`
	AssetID  uint   `gorm:"not null;index" json:"asset_id"`
	Asset    Asset  `json:"-"`

	Summary        string `gorm:"type:text" json:"summary"`
	Remediation    string `gorm:"type:text" json:"remediation"`
	BusinessImpact string `gorm:"type:text" json:"business_impact"`

	PriorityScore float64        `gorm:"not null;default:0" json:"priority_score"`
	Status        BriefingStatus `gorm:"type:varchar(30);not null;default:'new'" json:"status"`

	OwnerID *uint `gorm:"index" json:"owner_id"`
}
