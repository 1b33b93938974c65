package models

import "strings"

// Provider identifies an LLM vendor.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
)

// AllProviders lists every supported vendor in display order.
var AllProviders = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGoogle}

func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGoogle:
		return true
	}
	return false
}

func (p Provider) String() string { return string(p) }

// ParseProvider accepts provider names case-insensitively.
func ParseProvider(s string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}
