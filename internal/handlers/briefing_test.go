package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"threatdeck/internal/database"
	"threatdeck/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	orig := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = orig })
	return db
}

func seedBriefing(t *testing.T, db *gorm.DB) models.Briefing {
	t.Helper()
	threat := models.Threat{Source: "nvd", SourceID: "CVE-1", Title: "CVE-1: test", Severity: models.SeverityHigh}
	require.NoError(t, db.Create(&threat).Error)
	asset := models.Asset{Name: "web-01", Type: "server"}
	require.NoError(t, db.Create(&asset).Error)

	row := models.Briefing{
		ThreatID:      threat.ID,
		AssetID:       asset.ID,
		Summary:       "s",
		PriorityScore: 5.0,
		Status:        models.BriefingNew,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func statusRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PATCH("/api/briefings/:id/status", UpdateBriefingStatus)
	return r
}

func patchStatus(r *gin.Engine, id uint, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch,
		fmt.Sprintf("/api/briefings/%d/status", id), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateBriefingStatus(t *testing.T) {
	db := setupTestDB(t)
	row := seedBriefing(t, db)
	r := statusRouter()

	w := patchStatus(r, row.ID, `{"status": "acknowledged"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Briefing
	require.NoError(t, db.First(&stored, row.ID).Error)
	assert.Equal(t, models.BriefingAcknowledged, stored.Status)
}

func TestUpdateBriefingStatusRejectsUnknownValue(t *testing.T) {
	db := setupTestDB(t)
	row := seedBriefing(t, db)
	r := statusRouter()

	w := patchStatus(r, row.ID, `{"status": "snoozed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// stored status is untouched
	var stored models.Briefing
	require.NoError(t, db.First(&stored, row.ID).Error)
	assert.Equal(t, models.BriefingNew, stored.Status)
}

func TestUpdateBriefingStatusMissingRow(t *testing.T) {
	setupTestDB(t)
	r := statusRouter()

	w := patchStatus(r, 4242, `{"status": "resolved"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
