package handlers

import (
	"errors"
	"net/http"

	"threatdeck/internal/briefing"
	"threatdeck/internal/database"
	"threatdeck/internal/middleware"
	"threatdeck/internal/models"

	"github.com/gin-gonic/gin"
)

func ListBriefings(c *gin.Context) {
	var briefings []models.Briefing
	if err := database.DB.Order("priority_score desc").Find(&briefings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load briefings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"briefings": briefings, "total": len(briefings)})
}

// GenerateBriefings runs the synthesizer over the caller's owner scope.
func GenerateBriefings(syn *briefing.Synthesizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		generated, err := syn.Generate(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			if errors.Is(err, briefing.ErrNoAssets) || errors.Is(err, briefing.ErrNoThreats) {
				c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "briefing generation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"generated": generated})
	}
}

type statusUpdate struct {
	Status models.BriefingStatus `json:"status"`
}

func UpdateBriefingStatus(c *gin.Context) {
	var in statusUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if !models.ValidBriefingStatus(in.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid status",
			"valid": []models.BriefingStatus{
				models.BriefingNew, models.BriefingAcknowledged,
				models.BriefingInProgress, models.BriefingResolved,
			},
		})
		return
	}

	var row models.Briefing
	if err := database.DB.First(&row, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "briefing not found"})
		return
	}

	if err := database.DB.Model(&row).Update("status", in.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
		return
	}
	row.Status = in.Status
	c.JSON(http.StatusOK, row)
}
