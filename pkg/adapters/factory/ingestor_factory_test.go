package factory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/ingest"
)

func TestRegistry_BuiltinFormats(t *testing.T) {
	r := NewIngestorRegistry()
	assert.Equal(t, []string{"csv", "json"}, r.Formats())

	var c ingest.Collector
	ing, err := r.Create("JSON", c.Downstream())
	require.NoError(t, err)
	_, err = ing.IngestStream(context.Background(), strings.NewReader(`[["2024-01-01T00:00:00", 1, 2, 3]]`))
	require.NoError(t, err)
	assert.Len(t, c.Readings, 1)

	_, err = r.Create("xml", c.Downstream())
	assert.ErrorContains(t, err, "no ingestor registered for format: xml")
}

func TestRegistry_Register(t *testing.T) {
	r := NewIngestorRegistry()
	r.Register("TSV", func(d ingest.Downstream) ingest.Ingestor { return ingest.NewCsvReadingIngestor(d) })
	assert.Equal(t, []string{"csv", "json", "tsv"}, r.Formats())

	_, err := r.Create("tsv", nil)
	assert.NoError(t, err)
}

func TestGetIngestorRegistry_Singleton(t *testing.T) {
	assert.Same(t, GetIngestorRegistry(), GetIngestorRegistry())
}
