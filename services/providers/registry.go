package providers

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderAlreadyRegistered is returned when trying to register a duplicate provider
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// DefaultChain is the priority order used when no provider is requested.
// Fastest and cheapest first.
var DefaultChain = []Name{Groq, OpenAI, Gemini, Claude}

// CredentialKeys returns the environment names a vendor accepts its
// credential under, primary name first.
func CredentialKeys(name Name) []string {
	switch name {
	case Groq:
		return []string{"GROQ_API_KEY"}
	case OpenAI:
		return []string{"OPENAI_API_KEY"}
	case Gemini:
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case Claude:
		return []string{"ANTHROPIC_API_KEY", "CLAUDE_API_KEY"}
	default:
		return nil
	}
}

// PrimaryCredentialKeys lists the primary credential name of every vendor in chain order.
func PrimaryCredentialKeys() []string {
	keys := make([]string, 0, len(DefaultChain))
	for _, name := range DefaultChain {
		keys = append(keys, CredentialKeys(name)[0])
	}
	return keys
}

// CredentialSource resolves secrets by name. Lookups happen on every
// dispatch so rotated secrets are picked up without a restart.
type CredentialSource interface {
	Lookup(key string) (string, bool)
}

// EnvSource reads credentials from the process environment.
type EnvSource struct{}

// Lookup implements CredentialSource.
func (EnvSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapSource serves credentials from a fixed map.
type MapSource map[string]string

// Lookup implements CredentialSource.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Candidate binds a vendor adapter to the credential names it accepts.
type Candidate struct {
	Name           Name
	CredentialKeys []string
	Provider       Provider
}

// Credential returns the first non-empty credential among CredentialKeys.
func (c Candidate) Credential(src CredentialSource) (string, bool) {
	if src == nil {
		return "", false
	}
	for _, key := range c.CredentialKeys {
		if v, ok := src.Lookup(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// Registry is the closed, ordered set of vendor candidates. It is
// immutable after construction and safe for concurrent use.
type Registry struct {
	candidates []Candidate
	byName     map[Name]int
}

// NewRegistry creates a registry from candidates, keeping their order
func NewRegistry(candidates ...Candidate) (*Registry, error) {
	r := &Registry{
		candidates: make([]Candidate, 0, len(candidates)),
		byName:     make(map[Name]int, len(candidates)),
	}

	for _, c := range candidates {
		if c.Provider == nil {
			return nil, errors.New("provider cannot be nil")
		}
		if c.Name == "" {
			c.Name = c.Provider.Name()
		}
		if c.Name != c.Provider.Name() {
			return nil, fmt.Errorf("candidate %q wraps provider %q", c.Name, c.Provider.Name())
		}
		if _, exists := r.byName[c.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrProviderAlreadyRegistered, c.Name)
		}
		if len(c.CredentialKeys) == 0 {
			c.CredentialKeys = CredentialKeys(c.Name)
		}
		r.byName[c.Name] = len(r.candidates)
		r.candidates = append(r.candidates, c)
	}

	return r, nil
}

// Get retrieves a candidate by exact name
func (r *Registry) Get(name Name) (Candidate, error) {
	idx, exists := r.byName[name]
	if !exists {
		return Candidate{}, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return r.candidates[idx], nil
}

// Lookup retrieves a candidate by name, ignoring case and surrounding space
func (r *Registry) Lookup(name string) (Candidate, bool) {
	c, err := r.Get(Name(strings.ToLower(strings.TrimSpace(name))))
	return c, err == nil
}

// Candidates returns all candidates in registration order
func (r *Registry) Candidates() []Candidate {
	out := make([]Candidate, len(r.candidates))
	copy(out, r.candidates)
	return out
}

// Names returns all registered provider names in registration order
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.candidates))
	for _, c := range r.candidates {
		names = append(names, c.Name)
	}
	return names
}

// Count returns the number of registered providers
func (r *Registry) Count() int {
	return len(r.candidates)
}

// Configured returns the providers whose credential currently resolves
func (r *Registry) Configured(src CredentialSource) []Name {
	var names []Name
	for _, c := range r.candidates {
		if _, ok := c.Credential(src); ok {
			names = append(names, c.Name)
		}
	}
	return names
}
