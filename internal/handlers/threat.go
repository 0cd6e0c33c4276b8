package handlers

import (
	"errors"
	"net/http"

	"threatdeck/internal/database"
	"threatdeck/internal/feeds"
	"threatdeck/internal/models"

	"github.com/gin-gonic/gin"
)

func ListThreats(c *gin.Context) {
	q := database.DB.Order("created_at desc")
	if source := c.Query("source"); source != "" {
		q = q.Where("source = ?", source)
	}
	if severity := c.Query("severity"); severity != "" {
		q = q.Where("severity = ?", severity)
	}

	var threats []models.Threat
	if err := q.Find(&threats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load threats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"threats": threats, "total": len(threats)})
}

// IngestAll runs every feed. Per-source failures are reported inline and
// never fail the request.
func IngestAll(ing *feeds.Ingestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := ing.IngestAll(c.Request.Context())

		totalNew := 0
		for _, r := range results {
			totalNew += r.New
		}
		c.JSON(http.StatusOK, gin.H{"results": results, "total_new": totalNew})
	}
}

func IngestSource(ing *feeds.Ingestor) gin.HandlerFunc {
	return func(c *gin.Context) {
		source := c.Param("source")
		count, err := ing.IngestSource(c.Request.Context(), source)
		if err != nil {
			if errors.Is(err, feeds.ErrUnknownSource) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source", "valid": feeds.Sources})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"source": source, "new": count})
	}
}
