package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"transferportal/internal/domain/models"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads the business catalogue (cab models, packages, trip types).
// A missing file falls back to models.DefaultCatalog.
func LoadCatalog(path string) (models.Catalog, error) {
	def := models.DefaultCatalog()
	if strings.TrimSpace(path) == "" {
		return def, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (models.Catalog, error) {
	def := models.DefaultCatalog()

	var c models.Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return def, fmt.Errorf("parse catalog: %w", err)
	}

	if c.Currency == "" {
		c.Currency = def.Currency
	}
	if len(c.CabModels) == 0 {
		c.CabModels = def.CabModels
	}
	if len(c.TripTypes) == 0 {
		c.TripTypes = def.TripTypes
	}
	for i, p := range c.Packages {
		if strings.TrimSpace(p.Code) == "" {
			return def, fmt.Errorf("catalog: package #%d has no code", i+1)
		}
		if p.Price < 0 {
			return def, fmt.Errorf("catalog: package %s has negative price", p.Code)
		}
	}
	return c, nil
}
