package source_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/source"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
)

type stubSource struct {
	readings []domain.Reading
	gotID    string
}

func (s *stubSource) Fetch(_ context.Context, id string, _, _ time.Time) ([]domain.Reading, error) {
	s.gotID = id
	return s.readings, nil
}

func TestRouter(t *testing.T) {
	api := &stubSource{readings: []domain.Reading{{Timestamp: "2024-01-01T00:00:00", X: 1}}}
	db := &stubSource{}

	r := source.NewRouter()
	require.NoError(t, r.Register(domain.InstrumentInfo{ID: "smg3", Name: "SMG-3", Kind: domain.InstrumentKindSeismograph}, api))
	require.NoError(t, r.Register(domain.InstrumentInfo{ID: "anc", Name: "ANC", Kind: domain.InstrumentKindSeismograph}, db))

	err := r.Register(domain.InstrumentInfo{ID: "smg3"}, db)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	err = r.Register(domain.InstrumentInfo{}, db)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	got, err := r.Fetch(context.Background(), "smg3", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, api.readings, got)
	assert.Equal(t, "smg3", api.gotID)
	assert.Empty(t, db.gotID)

	_, err = r.Fetch(context.Background(), "missing", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, domain.ErrInstrumentNotFound)

	ids := []string{}
	for _, info := range r.Instruments() {
		ids = append(ids, info.ID)
	}
	assert.Equal(t, []string{"anc", "smg3"}, ids)
}
