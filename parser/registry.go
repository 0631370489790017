package parser

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/mpeg"
)

// Key identifies a parser by the (version, layer) pair it handles.
type Key struct {
	Version mpeg.Version
	Layer   mpeg.Layer
}

// Registry maps detected formats to registered parsers. It is populated
// during startup and read-only afterwards; at most one parser may be
// registered per (version, layer) key.
type Registry struct {
	mu      sync.RWMutex
	parsers map[Key]Parser
}

// NewRegistry creates an empty parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[Key]Parser),
	}
}

// Register adds a parser under its format key. Registering a second
// parser for the same key is a configuration error raised at startup,
// never a request-time condition.
func (r *Registry) Register(p Parser) error {
	if p == nil {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Registry", "Register",
			"parser validation")
	}

	format := p.Format()
	key := Key{Version: format.Version, Layer: format.Layer}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[key]; exists {
		return errors.WrapFatal(errors.ErrDuplicateParser, "Registry", "Register",
			fmt.Sprintf("duplicate registration for %s", format.Label()))
	}

	r.parsers[key] = p
	return nil
}

// Lookup returns the parser registered for the detected format. Absence
// is a legitimate outcome meaning the format is unsupported; it is
// reported through ok, never as an error.
func (r *Registry) Lookup(format mpeg.FormatDescriptor) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parsers[Key{Version: format.Version, Layer: format.Layer}]
	return p, ok
}

// SupportedFormats returns the labels of all registered formats, sorted
// for stable log and error output.
func (r *Registry) SupportedFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		labels = append(labels, p.Format().Label())
	}
	sort.Strings(labels)
	return labels
}

// NewDefaultRegistry builds the registry with every parser this build
// supports. The explicit construction step keeps registry population
// out of package init and hands the orchestrator an immutable map.
func NewDefaultRegistry() (*Registry, error) {
	registry := NewRegistry()
	if err := registry.Register(NewMPEG1Layer3()); err != nil {
		return nil, err
	}
	return registry, nil
}
