package handlers

import (
	"net/http"
	"strings"

	"threatdeck/internal/database"
	"threatdeck/internal/middleware"
	"threatdeck/internal/models"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

func ListAssets(c *gin.Context) {
	var assets []models.Asset
	if err := database.DB.Order("created_at desc").Find(&assets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load assets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets, "total": len(assets)})
}

type assetInput struct {
	Name    string  `json:"name" yaml:"name" binding:"required"`
	Type    string  `json:"type" yaml:"type"`
	Vendor  *string `json:"vendor" yaml:"vendor"`
	Product *string `json:"product" yaml:"product"`
	Version *string `json:"version" yaml:"version"`
	Port    *int    `json:"port" yaml:"port"`
	Network *string `json:"network" yaml:"network"`
}

func (in assetInput) toAsset(owner *uint) models.Asset {
	assetType := strings.TrimSpace(in.Type)
	if assetType == "" {
		assetType = "server"
	}
	return models.Asset{
		Name:    strings.TrimSpace(in.Name),
		Type:    assetType,
		Vendor:  in.Vendor,
		Product: in.Product,
		Version: in.Version,
		Port:    in.Port,
		Network: in.Network,
		OwnerID: owner,
	}
}

func CreateAsset(c *gin.Context) {
	var in assetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	asset := in.toAsset(middleware.UserID(c))
	if err := database.DB.Create(&asset).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save asset"})
		return
	}
	c.JSON(http.StatusCreated, asset)
}

type assetImport struct {
	Assets []assetInput `yaml:"assets"`
}

// ImportAssets bulk-creates assets from a YAML document with a top-level
// "assets" list.
func ImportAssets(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	var doc assetImport
	if err := yaml.Unmarshal(body, &doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid YAML: " + err.Error()})
		return
	}
	if len(doc.Assets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no assets found, expected key 'assets' with a list"})
		return
	}

	owner := middleware.UserID(c)
	created := make([]models.Asset, 0, len(doc.Assets))
	for _, in := range doc.Assets {
		if strings.TrimSpace(in.Name) == "" {
			continue
		}
		asset := in.toAsset(owner)
		if err := database.DB.Create(&asset).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save asset"})
			return
		}
		created = append(created, asset)
	}

	c.JSON(http.StatusOK, gin.H{"imported": len(created), "assets": created})
}

func DeleteAsset(c *gin.Context) {
	var asset models.Asset
	if err := database.DB.First(&asset, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return
	}
	// briefings go with the asset via the FK cascade
	if err := database.DB.Delete(&asset).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete asset"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": asset.ID})
}
