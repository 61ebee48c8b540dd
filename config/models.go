package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrModelsFileEmpty is returned when a models file lists no vendor
var ErrModelsFileEmpty = errors.New("models: no vendor chains declared")

// knownVendors are the names accepted as keys of a models file
var knownVendors = map[string]struct{}{
	"groq":   {},
	"openai": {},
	"gemini": {},
	"claude": {},
}

// ModelChains is the MODELS_FILE document.
//
//	models:
//	  openai: [gpt-4o-mini, gpt-4o]
//	  gemini: [gemini-2.0-flash]
type ModelChains struct {
	Models map[string][]string `yaml:"models"`
}

// LoadModelChains parses and validates a YAML model chain file
func LoadModelChains(path string) (ModelChains, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ModelChains{}, fmt.Errorf("models: read %q: %w", path, err)
	}
	return ParseModelChains(b)
}

// ParseModelChains decodes and validates a model chain document.
// Vendor keys are lowercased.
func ParseModelChains(b []byte) (ModelChains, error) {
	var raw ModelChains
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return ModelChains{}, fmt.Errorf("models: unmarshal: %w", err)
	}

	chains := ModelChains{Models: make(map[string][]string, len(raw.Models))}
	for vendor, models := range raw.Models {
		vendor = strings.ToLower(strings.TrimSpace(vendor))
		chains.Models[vendor] = models
	}
	if err := ValidateModelChains(chains); err != nil {
		return ModelChains{}, err
	}
	return chains, nil
}

// ValidateModelChains rejects unknown vendors, empty chains and blank
// model names. Groq runs a single model, so its chain may hold only one.
func ValidateModelChains(c ModelChains) error {
	if len(c.Models) == 0 {
		return ErrModelsFileEmpty
	}
	for vendor, models := range c.Models {
		if _, ok := knownVendors[vendor]; !ok {
			return fmt.Errorf("models: unknown vendor %q", vendor)
		}
		if len(models) == 0 {
			return fmt.Errorf("models: vendor %q has an empty chain", vendor)
		}
		if vendor == "groq" && len(models) > 1 {
			return fmt.Errorf("models: vendor %q accepts exactly one model, got %d", vendor, len(models))
		}
		seen := make(map[string]struct{}, len(models))
		for _, m := range models {
			if strings.TrimSpace(m) == "" {
				return fmt.Errorf("models: vendor %q has a blank model name", vendor)
			}
			if _, dup := seen[m]; dup {
				return fmt.Errorf("models: vendor %q lists %q twice", vendor, m)
			}
			seen[m] = struct{}{}
		}
	}
	return nil
}

// apply copies the declared chains onto the vendor configs
func (p *ProvidersConfig) apply(c ModelChains) {
	for vendor, models := range c.Models {
		switch vendor {
		case "groq":
			p.Groq.Models = models
		case "openai":
			p.OpenAI.Models = models
		case "gemini":
			p.Gemini.Models = models
		case "claude":
			p.Claude.Models = models
		}
	}
}
