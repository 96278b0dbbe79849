package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/report"
	"github.com/wricardo/mcp-training/recminimap/game/service"
	"github.com/wricardo/mcp-training/recminimap/game/store"
)

func sampleRecord() *store.Record {
	return &store.Record{
		ID:          "arabia",
		RunID:       "run-1",
		Replay:      "arabia.mgz",
		Minimap:     "/out/minimap_arabia.png",
		Locale:      "es",
		ProcessedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Report: &report.MatchReport{
			FileName:    "arabia.mgz",
			Duration:    "00:42:10",
			PointOfView: "Alice",
			MapName:     "Arabia",
			MapSize:     "Tiny (2 players)",
			Diplomacy:   "1v1",
			Population:  200,
			Teams: []report.Team{
				{Index: 1, Players: []report.PlayerEntry{
					{Number: 1, Nickname: "Alice", CivCode: "1", Civ: "Britanos", Victory: report.Victor, Color: "Azul"},
				}},
				{Index: 2, Players: []report.PlayerEntry{
					{Number: 2, Nickname: "Bob", CivCode: "2", Civ: "Francos", Victory: report.NonVictor, Color: "Rojo"},
				}},
			},
		},
	}
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.GetMCPServer())
}

func TestApiCall(t *testing.T) {
	t.Run("successful GET request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "/test", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		}))
		defer server.Close()

		client := NewClient(server.URL)
		var result map[string]string
		require.NoError(t, client.apiCall(context.Background(), "GET", "/test", nil, &result))
		assert.Equal(t, "ok", result["status"])
	})

	t.Run("POST request sends JSON body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "es", body["locale"])
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		assert.NoError(t, client.apiCall(context.Background(), "POST", "/test", map[string]string{"locale": "es"}, nil))
	})

	t.Run("error response with message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "report not found"})
		}))
		defer server.Close()

		client := NewClient(server.URL)
		err := client.apiCall(context.Background(), "GET", "/test", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "report not found", err.Error())
	})

	t.Run("error response without message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		err := client.apiCall(context.Background(), "GET", "/test", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "API error: 500", err.Error())
	})
}

func TestHandleListReplays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/replays", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"replays": []*service.ReplayInfo{
				{Name: "arabia.mgz", ID: "arabia", Size: 1024, Processed: true},
				{Name: "islands.mgx", ID: "islands", Size: 2048},
			},
			"count": 2,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListReplays(context.Background(), callTool("list_replays", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Recorded games (2)")
	assert.Contains(t, text, "arabia.mgz [processed]")
	assert.Contains(t, text, "islands.mgx [pending]")
}

func TestHandleProcessReplay(t *testing.T) {
	t.Run("requires a name", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1")
		result, err := client.handleProcessReplay(context.Background(), callTool("process_replay", map[string]interface{}{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "name is required")
	})

	t.Run("proxies to the process route", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "/api/replays/arabia.mgz/process", r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "en", body["locale"])
			json.NewEncoder(w).Encode(sampleRecord())
		}))
		defer server.Close()

		client := NewClient(server.URL)
		result, err := client.handleProcessReplay(context.Background(), callTool("process_replay", map[string]interface{}{
			"name":   "arabia.mgz",
			"locale": "en",
		}))
		require.NoError(t, err)
		assert.False(t, result.IsError)

		text := resultText(t, result)
		assert.Contains(t, text, "Processed arabia.mgz")
		assert.Contains(t, text, "Minimap: /out/minimap_arabia.png")
		assert.Contains(t, text, "1. Alice - Britanos (1), Azul, won")
		assert.Contains(t, text, "2. Bob - Francos (2), Rojo, lost")
	})

	t.Run("reports API failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"record": sampleRecord(),
				"error":  "render: unknown terrain id 99",
			})
		}))
		defer server.Close()

		client := NewClient(server.URL)
		result, err := client.handleProcessReplay(context.Background(), callTool("process_replay", map[string]interface{}{"name": "arabia.mgz"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "unknown terrain id 99")
	})
}

func TestHandleProcessAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/process", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(4), body["workers"])

		failed := &store.Record{ID: "broken", Replay: "broken.mgz", Errors: []string{"parse: malformed"}}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"batch": service.BatchResult{
				RunID:     "run-7",
				Processed: 1,
				Failed:    1,
				Records:   []*store.Record{sampleRecord(), failed},
			},
			"failures": []string{"broken.mgz: parse: malformed"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleProcessAll(context.Background(), callTool("process_all", map[string]interface{}{"workers": 4}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Run run-7: 1 processed, 1 failed")
	assert.Contains(t, text, "✓ arabia.mgz")
	assert.Contains(t, text, "✗ broken.mgz")
	assert.Contains(t, text, "- broken.mgz: parse: malformed")
}

func TestHandleMatchReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reports/arabia":
			json.NewEncoder(w).Encode(sampleRecord())
		case "/api/reports/broken":
			json.NewEncoder(w).Encode(&store.Record{ID: "broken", Errors: []string{"report: missing civilizations entry"}})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "report not found"})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	t.Run("text format", func(t *testing.T) {
		result, err := client.handleMatchReport(ctx, callTool("match_report", map[string]interface{}{"id": "arabia"}))
		require.NoError(t, err)
		text := resultText(t, result)
		assert.Contains(t, text, "Map: Arabia (Tiny (2 players))")
		assert.Contains(t, text, "Duration: 00:42:10")
		assert.Contains(t, text, "Team 2:")
	})

	t.Run("json format keeps report field names", func(t *testing.T) {
		result, err := client.handleMatchReport(ctx, callTool("match_report", map[string]interface{}{"id": "arabia", "format": "json"}))
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &decoded))
		assert.Equal(t, "arabia.mgz", decoded["nombre_archivo"])
		assert.Contains(t, decoded, "equipos")
	})

	t.Run("record without report", func(t *testing.T) {
		result, err := client.handleMatchReport(ctx, callTool("match_report", map[string]interface{}{"id": "broken"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "missing civilizations entry")
	})

	t.Run("unknown id", func(t *testing.T) {
		result, err := client.handleMatchReport(ctx, callTool("match_report", map[string]interface{}{"id": "nope"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "report not found")
	})
}

func TestHandleListReports(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"reports": []*service.ReportInfo{
				{ID: "arabia", Replay: "arabia.mgz", OK: true},
				{ID: "broken", Replay: "broken.mgz", Errors: []string{"parse: malformed"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListReports(context.Background(), callTool("list_reports", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Reports (2)")
	assert.Contains(t, text, "✓ arabia (arabia.mgz)")
	assert.Contains(t, text, "✗ broken (broken.mgz)")
	assert.Contains(t, text, "parse: malformed")
}

func TestHandleListLocales(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"locales": []locale.Info{
				{Name: "es", Filename: "es.json", Entries: map[string]int{locale.Civilizations: 39, locale.MapNames: 12}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListLocales(context.Background(), callTool("list_locales", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "- es (es.json): 39 civilizations, 12 map names")
}

func TestMCPServerHandlesToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"replays": []*service.ReplayInfo{}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	msg := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_replays","arguments":{}}}`)
	resp := client.GetMCPServer().HandleMessage(context.Background(), msg)
	require.NotNil(t, resp)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No recorded games found.")
}
