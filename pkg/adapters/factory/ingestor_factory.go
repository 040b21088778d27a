package factory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/ingest"
)

// IngestorBuilder defines the contract for creating an ingestor for one input format
type IngestorBuilder func(downstream ingest.Downstream) ingest.Ingestor

// IngestorRegistry is the registry for all available input formats
type IngestorRegistry struct {
	builders map[string]IngestorBuilder
	mu       sync.RWMutex
}

var (
	instance *IngestorRegistry
	once     sync.Once
)

// GetIngestorRegistry returns the singleton instance
func GetIngestorRegistry() *IngestorRegistry {
	once.Do(func() {
		instance = NewIngestorRegistry()
	})
	return instance
}

// NewIngestorRegistry creates a registry with the built-in formats registered.
// Useful for tests that need an isolated registry.
func NewIngestorRegistry() *IngestorRegistry {
	r := &IngestorRegistry{
		builders: make(map[string]IngestorBuilder),
	}
	r.Register("json", func(d ingest.Downstream) ingest.Ingestor { return ingest.NewJsonReadingIngestor(d) })
	r.Register("csv", func(d ingest.Downstream) ingest.Ingestor { return ingest.NewCsvReadingIngestor(d) })
	return r
}

// Register adds or overrides a format builder
func (r *IngestorRegistry) Register(format string, builder IngestorBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[strings.ToLower(format)] = builder
}

// Create instantiates the ingestor registered for format
func (r *IngestorRegistry) Create(format string, downstream ingest.Downstream) (ingest.Ingestor, error) {
	r.mu.RLock()
	builder, ok := r.builders[strings.ToLower(format)]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no ingestor registered for format: %s", format)
	}
	return builder(downstream), nil
}

// Formats lists registered format names in sorted order
func (r *IngestorRegistry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.builders))
	for f := range r.builders {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
