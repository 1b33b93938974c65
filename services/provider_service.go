package services

import (
	"fmt"

	"model-eval/models"
	"model-eval/providers"
)

// ProviderModels is the static model list of one provider.
type ProviderModels struct {
	Models       []string
	DefaultModel string
}

// ProviderInfo describes a provider without exposing its credentials.
type ProviderInfo struct {
	Provider     models.Provider `json:"provider"`
	Models       []string        `json:"models"`
	DefaultModel string          `json:"defaultModel"`
	IsConfigured bool            `json:"isConfigured"`
}

// ProviderService answers catalog queries. Configured means an adapter was
// registered at startup, which requires an API key.
type ProviderService struct {
	catalog  map[models.Provider]ProviderModels
	registry *providers.Registry
}

func NewProviderService(catalog map[models.Provider]ProviderModels, registry *providers.Registry) *ProviderService {
	return &ProviderService{catalog: catalog, registry: registry}
}

// List returns every known provider keyed by name.
func (s *ProviderService) List() map[models.Provider]ProviderInfo {
	out := make(map[models.Provider]ProviderInfo, len(models.AllProviders))
	for _, p := range models.AllProviders {
		out[p] = s.info(p)
	}
	return out
}

// Models returns the catalog of one configured provider.
func (s *ProviderService) Models(name string) (*ProviderInfo, error) {
	p, ok := models.ParseProvider(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, name)
	}
	info := s.info(p)
	if !info.IsConfigured {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p)
	}
	return &info, nil
}

func (s *ProviderService) info(p models.Provider) ProviderInfo {
	c := s.catalog[p]
	ms := c.Models
	if ms == nil {
		ms = []string{}
	}
	return ProviderInfo{
		Provider:     p,
		Models:       ms,
		DefaultModel: c.DefaultModel,
		IsConfigured: s.registry.Configured(p),
	}
}
