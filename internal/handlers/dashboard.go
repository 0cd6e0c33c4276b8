package handlers

import (
	"net/http"

	"threatdeck/internal/database"
	"threatdeck/internal/feeds"
	"threatdeck/internal/models"

	"github.com/gin-gonic/gin"
)

const recentBriefingLimit = 10

func DashboardStats(c *gin.Context) {
	db := database.DB

	var totalAssets, totalThreats, criticalThreats, activeExploits, totalBriefings int64
	db.Model(&models.Asset{}).Count(&totalAssets)
	db.Model(&models.Threat{}).Count(&totalThreats)
	db.Model(&models.Threat{}).Where("severity = ?", models.SeverityCritical).Count(&criticalThreats)
	db.Model(&models.Threat{}).Where("actively_exploited = ?", true).Count(&activeExploits)
	db.Model(&models.Briefing{}).Count(&totalBriefings)

	briefingsByStatus := map[models.BriefingStatus]int64{}
	for _, status := range []models.BriefingStatus{
		models.BriefingNew, models.BriefingAcknowledged,
		models.BriefingInProgress, models.BriefingResolved,
	} {
		var n int64
		db.Model(&models.Briefing{}).Where("status = ?", status).Count(&n)
		briefingsByStatus[status] = n
	}

	severityBreakdown := map[models.Severity]int64{}
	for _, sev := range []models.Severity{
		models.SeverityCritical, models.SeverityHigh,
		models.SeverityMedium, models.SeverityLow,
	} {
		var n int64
		db.Model(&models.Threat{}).Where("severity = ?", sev).Count(&n)
		severityBreakdown[sev] = n
	}

	sourceBreakdown := map[string]int64{}
	for _, source := range feeds.Sources {
		var n int64
		db.Model(&models.Threat{}).Where("source = ?", source).Count(&n)
		sourceBreakdown[source] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"total_assets":        totalAssets,
		"total_threats":       totalThreats,
		"critical_threats":    criticalThreats,
		"active_exploits":     activeExploits,
		"total_briefings":     totalBriefings,
		"briefings_by_status": briefingsByStatus,
		"severity_breakdown":  severityBreakdown,
		"source_breakdown":    sourceBreakdown,
	})
}

// RecentBriefings returns the most urgent briefings for the overview panel.
func RecentBriefings(c *gin.Context) {
	var briefings []models.Briefing
	if err := database.DB.
		Order("priority_score desc").
		Limit(recentBriefingLimit).
		Find(&briefings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load briefings"})
		return
	}
	c.JSON(http.StatusOK, briefings)
}
