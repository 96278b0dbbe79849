package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
	"github.com/wricardo/mcp-training/recminimap/game/report"
	"github.com/wricardo/mcp-training/recminimap/game/service"
	"github.com/wricardo/mcp-training/recminimap/game/store"
)

// MockReplayService implements service.ReplayService for testing
type MockReplayService struct {
	ListReplaysFunc   func(ctx context.Context) ([]*service.ReplayInfo, error)
	ProcessReplayFunc func(ctx context.Context, name string, opts service.ProcessOptions) (*store.Record, error)
	ProcessAllFunc    func(ctx context.Context, opts service.ProcessOptions) (*service.BatchResult, error)
	GetReportFunc     func(ctx context.Context, id string) (*store.Record, error)
	ListReportsFunc   func(ctx context.Context) ([]*service.ReportInfo, error)
	MinimapPathFunc   func(ctx context.Context, id string) (string, error)
	ListLocalesFunc   func(ctx context.Context) ([]locale.Info, error)
}

func (m *MockReplayService) ListReplays(ctx context.Context) ([]*service.ReplayInfo, error) {
	if m.ListReplaysFunc != nil {
		return m.ListReplaysFunc(ctx)
	}
	return []*service.ReplayInfo{}, nil
}

func (m *MockReplayService) ProcessReplay(ctx context.Context, name string, opts service.ProcessOptions) (*store.Record, error) {
	if m.ProcessReplayFunc != nil {
		return m.ProcessReplayFunc(ctx, name, opts)
	}
	return &store.Record{ID: replay.Stem(name), Replay: name}, nil
}

func (m *MockReplayService) ProcessAll(ctx context.Context, opts service.ProcessOptions) (*service.BatchResult, error) {
	if m.ProcessAllFunc != nil {
		return m.ProcessAllFunc(ctx, opts)
	}
	return &service.BatchResult{RunID: "run"}, nil
}

func (m *MockReplayService) GetReport(ctx context.Context, id string) (*store.Record, error) {
	if m.GetReportFunc != nil {
		return m.GetReportFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", service.ErrReportNotFound, id)
}

func (m *MockReplayService) ListReports(ctx context.Context) ([]*service.ReportInfo, error) {
	if m.ListReportsFunc != nil {
		return m.ListReportsFunc(ctx)
	}
	return []*service.ReportInfo{}, nil
}

func (m *MockReplayService) MinimapPath(ctx context.Context, id string) (string, error) {
	if m.MinimapPathFunc != nil {
		return m.MinimapPathFunc(ctx, id)
	}
	return "", fmt.Errorf("%w: %s", service.ErrReportNotFound, id)
}

func (m *MockReplayService) ListLocales(ctx context.Context) ([]locale.Info, error) {
	if m.ListLocalesFunc != nil {
		return m.ListLocalesFunc(ctx)
	}
	return []locale.Info{{Name: "es", Filename: "es.json"}}, nil
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestListReplays(t *testing.T) {
	mock := &MockReplayService{
		ListReplaysFunc: func(ctx context.Context) ([]*service.ReplayInfo, error) {
			return []*service.ReplayInfo{{Name: "a.mgz", ID: "a"}, {Name: "b.mgx", ID: "b", Processed: true}}, nil
		},
	}
	srv := NewServer(mock, nil, "")

	rr := doRequest(t, srv, "GET", "/api/replays", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	out := decode(t, rr)
	assert.EqualValues(t, 2, out["count"])
}

func TestProcessReplay(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       interface{}
		fn         func(ctx context.Context, name string, opts service.ProcessOptions) (*store.Record, error)
		wantStatus int
	}{
		{
			name: "success with locale",
			path: "/api/replays/arabia.mgz/process",
			body: map[string]string{"locale": "en"},
			fn: func(ctx context.Context, name string, opts service.ProcessOptions) (*store.Record, error) {
				if name != "arabia.mgz" || opts.Locale != "en" {
					return nil, fmt.Errorf("unexpected call %s %+v", name, opts)
				}
				return &store.Record{ID: "arabia", Minimap: "static/minimap_arabia.png", Report: &report.MatchReport{}}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown replay",
			path: "/api/replays/missing.mgz/process",
			fn: func(ctx context.Context, name string, opts service.ProcessOptions) (*store.Record, error) {
				return nil, fmt.Errorf("%w: %s", service.ErrReplayNotFound, name)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "unknown locale",
			path: "/api/replays/arabia.mgz/process",
			body: map[string]string{"locale": "fr"},
			fn: func(ctx context.Context, name string, opts service.ProcessOptions) (*store.Record, error) {
				return nil, locale.ErrLocaleNotFound
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "partial failure",
			path: "/api/replays/arabia.mgz/process",
			fn: func(ctx context.Context, name string, opts service.ProcessOptions) (*store.Record, error) {
				return &store.Record{ID: "arabia", Errors: []string{"render: boom"}}, errors.New("render: boom")
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&MockReplayService{ProcessReplayFunc: tt.fn}, nil, "")
			rr := doRequest(t, srv, "POST", tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			if tt.wantStatus == http.StatusUnprocessableEntity {
				out := decode(t, rr)
				assert.Equal(t, "render: boom", out["error"])
				assert.NotNil(t, out["record"])
			}
		})
	}
}

func TestProcessReplay_InvalidBody(t *testing.T) {
	srv := NewServer(&MockReplayService{}, nil, "")
	req := httptest.NewRequest("POST", "/api/replays/a.mgz/process", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProcessAll(t *testing.T) {
	var got service.ProcessOptions
	mock := &MockReplayService{
		ProcessAllFunc: func(ctx context.Context, opts service.ProcessOptions) (*service.BatchResult, error) {
			got = opts
			return &service.BatchResult{RunID: "run-1", Processed: 2}, nil
		},
	}
	srv := NewServer(mock, nil, "")

	rr := doRequest(t, srv, "POST", "/api/process", map[string]interface{}{"workers": 3})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, got.Workers)

	out := decode(t, rr)
	batch := out["batch"].(map[string]interface{})
	assert.Equal(t, "run-1", batch["run_id"])
	assert.Empty(t, out["failures"])

	mock.ProcessAllFunc = func(ctx context.Context, opts service.ProcessOptions) (*service.BatchResult, error) {
		return nil, replay.ErrNoReplays
	}
	rr = doRequest(t, srv, "POST", "/api/process", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReports(t *testing.T) {
	mock := &MockReplayService{
		ListReportsFunc: func(ctx context.Context) ([]*service.ReportInfo, error) {
			return []*service.ReportInfo{{ID: "arabia", OK: true}}, nil
		},
		GetReportFunc: func(ctx context.Context, id string) (*store.Record, error) {
			if id != "arabia" {
				return nil, service.ErrReportNotFound
			}
			return &store.Record{ID: "arabia", Report: &report.MatchReport{PointOfView: "Viper"}}, nil
		},
	}
	srv := NewServer(mock, nil, "")

	rr := doRequest(t, srv, "GET", "/api/reports", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decode(t, rr)["count"])

	rr = doRequest(t, srv, "GET", "/api/reports/arabia", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rep := decode(t, rr)["report"].(map[string]interface{})
	assert.Equal(t, "Viper", rep["punto_de_vista"])

	rr = doRequest(t, srv, "GET", "/api/reports/nomad", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetMinimap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimap_arabia.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 300, 200))))
	require.NoError(t, f.Close())

	mock := &MockReplayService{
		MinimapPathFunc: func(ctx context.Context, id string) (string, error) {
			if id == "arabia" {
				return path, nil
			}
			return "", service.ErrReportNotFound
		},
	}
	srv := NewServer(mock, nil, "")

	rr := doRequest(t, srv, "GET", "/api/minimaps/arabia", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	cfg, err := png.DecodeConfig(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	rr = doRequest(t, srv, "GET", "/api/minimaps/other", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReportSchema(t *testing.T) {
	srv := NewServer(&MockReplayService{}, nil, "")

	rr := doRequest(t, srv, "GET", "/api/schema/report", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "duracion_partida")
	assert.Contains(t, rr.Body.String(), "victoria")
	assert.Contains(t, rr.Body.String(), "run_id")
}

func TestListLocales(t *testing.T) {
	srv := NewServer(&MockReplayService{}, nil, "")

	rr := doRequest(t, srv, "GET", "/api/locales", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	locales := decode(t, rr)["locales"].([]interface{})
	require.Len(t, locales, 1)
}

func TestHealthAndStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>minimaps</h1>"), 0644))
	srv := NewServer(&MockReplayService{}, nil, dir)

	rr := doRequest(t, srv, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode(t, rr)["status"])

	rr = doRequest(t, srv, "GET", "/index.html", nil)
	assert.Equal(t, http.StatusMovedPermanently, rr.Code)

	rr = doRequest(t, srv, "GET", "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "minimaps")
}

func TestWebSocketDisabled(t *testing.T) {
	srv := NewServer(&MockReplayService{}, nil, "")
	rr := doRequest(t, srv, "GET", "/ws?topic=arabia", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
