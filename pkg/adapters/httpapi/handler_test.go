package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dgmtsproject/dgmts-sub001/pkg/adapters/httpapi"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/ports"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeFrames struct {
	lastReq  ports.FrameRequest
	manyReqs []ports.FrameRequest
	lastInfo domain.RequestInfo
	err      error
	result   *domain.SampleResult
}

func (f *fakeFrames) Frame(ctx context.Context, req ports.FrameRequest) (*domain.SampleResult, error) {
	f.lastReq = req
	f.lastInfo, _ = domain.FromContext(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeFrames) FrameMany(ctx context.Context, reqs []ports.FrameRequest) ([]*domain.SampleResult, error) {
	f.manyReqs = reqs
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.SampleResult, len(reqs))
	for i := range reqs {
		out[i] = domain.NewEmptyResult()
	}
	return out, nil
}

func (f *fakeFrames) Export(ctx context.Context, req ports.FrameRequest) (*ports.ExportResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &ports.ExportResult{Key: "exports/smg3/a.csv", URL: "https://s3/a.csv", Rows: 2}, nil
}

func (f *fakeFrames) Instruments() []domain.InstrumentInfo {
	return []domain.InstrumentInfo{{ID: "smg3", Name: "SMG-3", Kind: domain.InstrumentKindSeismograph}}
}

func newRouter(frames *fakeFrames, logger *zap.Logger) *gin.Engine {
	h := httpapi.NewHandler(services.NewCoverageSampler(), frames, domain.DefaultSampleOptions())
	return httpapi.NewRouter(h, logger)
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSampleEndpoint(t *testing.T) {
	r := newRouter(&fakeFrames{}, nil)
	body := `{"readings": [
		["2024-01-01T00:00:00", 0.2, 0, 0],
		["2024-01-01T00:30:00", 0.01, 0.6, 0],
		["2024-01-01T01:00:00", 0, 0, 0.00005],
		"broken"
	]}`

	w := do(r, http.MethodPost, "/api/v1/sample", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Rejected-Rows"))
	assert.NotEmpty(t, w.Header().Get(httpapi.TraceHeader))

	var res domain.SampleResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"2024-01-01T00:30:00"}, res.Combined.Time)
	assert.Equal(t, []float64{0.6}, res.Y.Values)
	assert.Empty(t, res.Z.Values)
}

func TestSampleEndpoint_EmptyReadingsEncodeAsArrays(t *testing.T) {
	r := newRouter(&fakeFrames{}, nil)
	for _, body := range []string{`{"readings": []}`, `{"readings": null}`, `{}`} {
		w := do(r, http.MethodPost, "/api/v1/sample", body)
		require.Equal(t, http.StatusOK, w.Code, body)
		assert.JSONEq(t,
			`{"combined":{"time":[],"x":[],"y":[],"z":[]},"x":{"time":[],"values":[]},"y":{"time":[],"values":[]},"z":{"time":[],"values":[]}}`,
			w.Body.String(), body)
	}
}

func TestSampleEndpoint_Options(t *testing.T) {
	r := newRouter(&fakeFrames{}, nil)

	w := do(r, http.MethodPost, "/api/v1/sample", `{"readings": [["2024-01-01T00:00:00", 0.4567, 0, 0]], "decimal_precision": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res domain.SampleResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []float64{0}, res.Combined.X)

	w = do(r, http.MethodPost, "/api/v1/sample", `{"readings": [], "min_points": -3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sample", `{"readings": [], "min_points": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sample", `{"readings": [["2024-01-01T00:00:00", 0, 0.00005, 0]], "magnitude_epsilon": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = domain.SampleResult{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Combined.Len())
	assert.Equal(t, 1, res.Y.Len())

	w = do(r, http.MethodPost, "/api/v1/sample", `{"readings": 12}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/sample", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListInstruments(t *testing.T) {
	w := do(newRouter(&fakeFrames{}, nil), http.MethodGet, "/api/v1/instruments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"instruments":[{"id":"smg3","name":"SMG-3","kind":"SEISMOGRAPH"}]}`, w.Body.String())
}

func TestGetFrame(t *testing.T) {
	frames := &fakeFrames{result: domain.NewEmptyResult()}
	r := newRouter(frames, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/instruments/smg3/frame?from=2024-01-01T00:00:00Z&to=2024-01-02&min_points=50&precision=6&epsilon=0.01", nil)
	req.Header.Set(httpapi.TraceHeader, "trace-42")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "trace-42", w.Header().Get(httpapi.TraceHeader))
	assert.Equal(t, ports.FrameRequest{
		InstrumentID: "smg3",
		From:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:           time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Options:      domain.SampleOptions{MinPoints: 50, MagnitudeEpsilon: 0.01, DecimalPrecision: 6}.Overrides(),
	}, frames.lastReq)
	assert.Equal(t, domain.RequestInfo{TraceID: "trace-42", Source: domain.RequestSourceHTTP}, frames.lastInfo)
}

func TestGetFrame_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{"bad time", "/api/v1/instruments/smg3/frame?from=yesterday", nil, http.StatusBadRequest},
		{"bad int", "/api/v1/instruments/smg3/frame?min_points=many", nil, http.StatusBadRequest},
		{"bad epsilon", "/api/v1/instruments/smg3/frame?epsilon=x", nil, http.StatusBadRequest},
		{"not found", "/api/v1/instruments/nope/frame", fmt.Errorf("%w: nope", domain.ErrInstrumentNotFound), http.StatusNotFound},
		{"upstream", "/api/v1/instruments/smg3/frame", fmt.Errorf("%w: 503", domain.ErrSourceUnavailable), http.StatusBadGateway},
		{"internal", "/api/v1/instruments/smg3/frame", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newRouter(&fakeFrames{err: tt.err}, nil), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestExportEndpoint(t *testing.T) {
	frames := &fakeFrames{}
	w := do(newRouter(frames, nil), http.MethodPost, "/api/v1/instruments/smg3/export?precision=6", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"exports/smg3/a.csv","url":"https://s3/a.csv","rows":2}`, w.Body.String())
	require.NotNil(t, frames.lastReq.Options.DecimalPrecision)
	assert.Equal(t, 6, *frames.lastReq.Options.DecimalPrecision)
	assert.Nil(t, frames.lastReq.Options.MinPoints)
}

type stubSource []domain.Reading

func (s stubSource) Fetch(context.Context, string, time.Time, time.Time) ([]domain.Reading, error) {
	return s, nil
}

func TestGetFrame_ExplicitZeroOptions(t *testing.T) {
	src := stubSource{{Timestamp: "2024-01-01T00:00:00Z", X: 1.6, Y: 0.00005}}
	frames := services.NewFrameService(src)
	h := httpapi.NewHandler(services.NewCoverageSampler(), frames, domain.DefaultSampleOptions())
	r := httpapi.NewRouter(h, nil)

	w := do(r, http.MethodGet, "/api/v1/instruments/smg3/frame?min_points=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/instruments/smg3/frame?precision=0&epsilon=0", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res domain.SampleResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []float64{2}, res.Combined.X)
	assert.Equal(t, 1, res.Y.Len())
}

func TestFrameManyEndpoint(t *testing.T) {
	frames := &fakeFrames{}
	r := newRouter(frames, nil)

	w := do(r, http.MethodGet, "/api/v1/frames?instrument=smg3&instrument=anc&from=2024-01-01&precision=0", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Len(t, frames.manyReqs, 2)
	assert.Equal(t, "smg3", frames.manyReqs[0].InstrumentID)
	assert.Equal(t, "anc", frames.manyReqs[1].InstrumentID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), frames.manyReqs[1].From)
	require.NotNil(t, frames.manyReqs[1].Options.DecimalPrecision)
	assert.Equal(t, 0, *frames.manyReqs[1].Options.DecimalPrecision)

	var body struct {
		Frames []struct {
			InstrumentID string              `json:"instrument_id"`
			Result       domain.SampleResult `json:"result"`
		} `json:"frames"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Frames, 2)
	assert.Equal(t, "smg3", body.Frames[0].InstrumentID)
	assert.Equal(t, "anc", body.Frames[1].InstrumentID)
}

func TestFrameManyEndpoint_Errors(t *testing.T) {
	w := do(newRouter(&fakeFrames{}, nil), http.MethodGet, "/api/v1/frames", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	notFound := &fakeFrames{err: fmt.Errorf("%w: anc", domain.ErrInstrumentNotFound)}
	w = do(newRouter(notFound, nil), http.MethodGet, "/api/v1/frames?instrument=anc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(&fakeFrames{err: fmt.Errorf("boom")}, zap.New(core))

	do(r, http.MethodGet, "/healthz", "")
	do(r, http.MethodGet, "/api/v1/instruments/smg3/frame", "")

	ok := logs.FilterMessage("request").All()
	require.Len(t, ok, 1)
	assert.Equal(t, "/healthz", ok[0].ContextMap()["path"])
	assert.EqualValues(t, http.StatusOK, ok[0].ContextMap()["status"])

	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "/api/v1/instruments/:id/frame", failed[0].ContextMap()["path"])
	assert.NotEmpty(t, failed[0].ContextMap()["trace_id"])
}
