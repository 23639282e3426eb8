package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"agriqa/models"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// TrustedCatalog maps a topic bucket to its curated reference links.
type TrustedCatalog map[string][]models.Source

// Registry is the static dataset registry plus the trusted-source catalog.
// A Registry value is never mutated after construction; reloads build a new
// one and swap it into the RegistryStore.
type Registry struct {
	Datasets       []models.DatasetDescriptor `yaml:"datasets"`
	TrustedSources TrustedCatalog             `yaml:"trusted_sources"`
}

// DefaultRegistry returns the built-in agriculture and climate datasets and
// the curated reference catalog.
func DefaultRegistry() *Registry {
	return &Registry{
		Datasets: []models.DatasetDescriptor{
			{
				ResourceID:  "9ef84268-d588-465a-a308-a864a43d0070",
				Title:       "State-wise Agricultural Production",
				Ministry:    "Ministry of Agriculture & Farmers Welfare",
				Description: "State and crop-wise agricultural production data",
			},
			{
				ResourceID:  "696a1b36-a7d6-406a-9cd3-06d3e55de3e0",
				Title:       "Rainfall Statistics",
				Ministry:    "India Meteorological Department",
				Description: "State-wise rainfall data and patterns",
			},
			{
				ResourceID:  "3b01bcb8-0b14-4abf-b6f2-c1bfd384ba69",
				Title:       "Crop Yield Data",
				Ministry:    "Ministry of Agriculture & Farmers Welfare",
				Description: "Crop-wise yield statistics across states",
			},
		},
		TrustedSources: TrustedCatalog{
			"price": {
				{Title: "Agmarknet - Agricultural Marketing Information", URL: "https://agmarknet.gov.in", Description: "Daily mandi prices for agricultural commodities across India"},
				{Title: "e-NAM National Agriculture Market", URL: "https://enam.gov.in", Description: "Online trading platform with live commodity prices"},
			},
			"crop": {
				{Title: "Ministry of Agriculture & Farmers Welfare", URL: "https://agricoop.gov.in", Description: "Crop production statistics and agricultural schemes"},
				{Title: "Directorate of Economics and Statistics", URL: "https://desagri.gov.in", Description: "Official crop estimates and land use statistics"},
			},
			"climate": {
				{Title: "India Meteorological Department", URL: "https://mausam.imd.gov.in", Description: "Weather forecasts, rainfall data and climate monitoring"},
				{Title: "IMD Pune Climate Services", URL: "https://www.imdpune.gov.in", Description: "Long-period rainfall and temperature records"},
			},
			"general": {
				{Title: "Open Government Data Platform India", URL: "https://data.gov.in", Description: "Official open data portal of the Government of India"},
				{Title: "Indian Council of Agricultural Research", URL: "https://icar.org.in", Description: "Agricultural research and extension resources"},
				{Title: "Farmers' Portal", URL: "https://farmer.gov.in", Description: "Government advisories and services for farmers"},
			},
		},
	}
}

// LoadRegistryFile reads a registry override file. Sections absent from the
// file keep their built-in values.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	reg := DefaultRegistry()
	var override Registry
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse registry file %s: %w", path, err)
	}
	if len(override.Datasets) > 0 {
		reg.Datasets = override.Datasets
	}
	if len(override.TrustedSources) > 0 {
		reg.TrustedSources = override.TrustedSources
	}
	return reg, nil
}

// RegistryStore holds the current registry snapshot and lets a reload swap it
// without blocking queries in flight.
type RegistryStore struct {
	current atomic.Pointer[Registry]
}

func NewRegistryStore(reg *Registry) *RegistryStore {
	s := &RegistryStore{}
	s.current.Store(reg)
	return s
}

// Snapshot returns the registry as of now. Callers must not mutate it.
func (s *RegistryStore) Snapshot() *Registry {
	return s.current.Load()
}

// Swap replaces the registry snapshot.
func (s *RegistryStore) Swap(reg *Registry) {
	s.current.Store(reg)
}

// Watch reloads the registry whenever the override file changes. It blocks
// until ctx is cancelled, so run it in its own goroutine.
func (s *RegistryStore) Watch(ctx context.Context, path string, log *zap.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("failed to create registry watcher", zap.Error(err))
		return
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files by rename,
	// which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Error("failed to watch registry directory", zap.String("path", path), zap.Error(err))
		return
	}

	target, _ := filepath.Abs(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			name, _ := filepath.Abs(event.Name)
			if name != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				reg, err := LoadRegistryFile(path)
				if err != nil {
					log.Warn("registry reload failed, keeping previous snapshot", zap.Error(err))
					continue
				}
				s.Swap(reg)
				log.Info("registry reloaded",
					zap.String("path", path),
					zap.Int("datasets", len(reg.Datasets)))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn("registry watcher error", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}
