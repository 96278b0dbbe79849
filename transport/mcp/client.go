package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/report"
	"github.com/wricardo/mcp-training/recminimap/game/service"
	"github.com/wricardo/mcp-training/recminimap/game/store"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// Batch processing of large directories takes a while
			Timeout: 5 * time.Minute,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Recorded Game Minimaps",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Recorded Game Minimaps - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each recorded game (.mgl, .mgx, .mgz, .aoe2record) in the replay directory can
be processed into a 300x200 minimap PNG and a localized match report (Spanish
by default).

AVAILABLE TOOLS:
- list_replays: List recorded games
- process_replay: Process one recorded game by file name
- process_all: Process every recorded game
- match_report: Show the report of a processed game by id (file name without extension)
- list_reports: List stored reports
- list_locales: List available locales

NOTE: In reports, "victoria" is 0 for winners and 1 for everyone else.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_replays",
		Description: "List the recorded games in the replay directory",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListReplays)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "process_replay",
		Description: "Render the minimap and build the match report of one recorded game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "File name of the recorded game, e.g. arabia_1v1.mgz",
				},
				"locale": map[string]interface{}{
					"type":        "string",
					"description": "Report locale (optional, server default when omitted)",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleProcessReplay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "process_all",
		Description: "Process every recorded game; failures are reported per file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"locale": map[string]interface{}{
					"type":        "string",
					"description": "Report locale (optional)",
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"description": "Number of games processed concurrently (default 1)",
				},
			},
		},
	}, c.handleProcessAll)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "match_report",
		Description: "Show the stored match report of a processed game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Report id: the recorded game file name without extension",
				},
				"format": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"text", "json"},
					"description": "Output format (default text)",
				},
			},
			Required: []string{"id"},
		},
	}, c.handleMatchReport)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_reports",
		Description: "List stored reports and whether both minimap and report succeeded",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListReports)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_locales",
		Description: "List the locales available for match reports",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLocales)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// Tool handlers

func (c *Client) handleListReplays(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Replays []*service.ReplayInfo `json:"replays"`
	}
	if err := c.apiCall(ctx, "GET", "/api/replays", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReplays(response.Replays)), nil
}

func (c *Client) handleProcessReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name := cast.ToString(args["name"])
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	body := map[string]string{}
	if loc := cast.ToString(args["locale"]); loc != "" {
		body["locale"] = loc
	}

	var rec store.Record
	path := fmt.Sprintf("/api/replays/%s/process", url.PathEscape(name))
	if err := c.apiCall(ctx, "POST", path, body, &rec); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("processing %s failed: %v", name, err)), nil
	}

	return mcp.NewToolResultText(formatRecord(&rec)), nil
}

func (c *Client) handleProcessAll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if loc := cast.ToString(args["locale"]); loc != "" {
		body["locale"] = loc
	}
	if workers := cast.ToInt(args["workers"]); workers > 0 {
		body["workers"] = workers
	}

	var response struct {
		Batch    service.BatchResult `json:"batch"`
		Failures []string            `json:"failures"`
	}
	if err := c.apiCall(ctx, "POST", "/api/process", body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBatch(&response.Batch, response.Failures)), nil
}

func (c *Client) handleMatchReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id := cast.ToString(args["id"])
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	var rec store.Record
	if err := c.apiCall(ctx, "GET", "/api/reports/"+url.PathEscape(id), nil, &rec); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if cast.ToString(args["format"]) == "json" {
		data, err := json.MarshalIndent(rec.Report, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	if rec.Report == nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s has no report: %s", id, strings.Join(rec.Errors, "; "))), nil
	}
	return mcp.NewToolResultText(formatReport(rec.Report)), nil
}

func (c *Client) handleListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Reports []*service.ReportInfo `json:"reports"`
	}
	if err := c.apiCall(ctx, "GET", "/api/reports", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReports(response.Reports)), nil
}

func (c *Client) handleListLocales(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Locales []locale.Info `json:"locales"`
	}
	if err := c.apiCall(ctx, "GET", "/api/locales", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available locales (%d):\n", len(response.Locales))
	for _, l := range response.Locales {
		fmt.Fprintf(&b, "- %s (%s): %d civilizations, %d map names\n",
			l.Name, l.Filename, l.Entries[locale.Civilizations], l.Entries[locale.MapNames])
	}
	return mcp.NewToolResultText(b.String()), nil
}

// Formatters

func formatReplays(replays []*service.ReplayInfo) string {
	if len(replays) == 0 {
		return "No recorded games found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recorded games (%d):\n", len(replays))
	for _, r := range replays {
		status := "pending"
		if r.Processed {
			status = "processed"
		}
		fmt.Fprintf(&b, "- %s [%s] %d bytes\n", r.Name, status, r.Size)
	}
	return b.String()
}

func formatRecord(rec *store.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processed %s (id: %s, run: %s)\n", rec.Replay, rec.ID, rec.RunID)
	if rec.Minimap != "" {
		fmt.Fprintf(&b, "Minimap: %s\n", rec.Minimap)
	}
	if rec.Report != nil {
		b.WriteString("\n")
		b.WriteString(formatReport(rec.Report))
	}
	for _, e := range rec.Errors {
		fmt.Fprintf(&b, "✗ %s\n", e)
	}
	return b.String()
}

func formatBatch(batch *service.BatchResult, failures []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s: %d processed, %d failed\n", batch.RunID, batch.Processed, batch.Failed)
	for _, rec := range batch.Records {
		mark := "✓"
		if !rec.OK() {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, rec.Replay)
	}
	if len(failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

func formatReport(r *report.MatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.FileName)
	fmt.Fprintf(&b, "Map: %s (%s)\n", r.MapName, r.MapSize)
	fmt.Fprintf(&b, "Duration: %s\n", r.Duration)
	fmt.Fprintf(&b, "Point of view: %s\n", r.PointOfView)
	diplomacy := r.Diplomacy
	if r.TeamSize != "" {
		diplomacy += " " + r.TeamSize
	}
	fmt.Fprintf(&b, "Diplomacy: %s\n", diplomacy)
	fmt.Fprintf(&b, "Settings: population %d, speed %s, difficulty %s, reveal %s, locked teams %d\n",
		r.Population, r.Speed, r.Difficulty, r.MapReveal, r.LockTeams)

	for _, team := range r.Teams {
		fmt.Fprintf(&b, "Team %d:\n", team.Index)
		for _, p := range team.Players {
			result := "lost"
			if p.Victory == report.Victor {
				result = "won"
			}
			fmt.Fprintf(&b, "  %d. %s - %s (%s), %s, %s\n", p.Number, p.Nickname, p.Civ, p.CivCode, p.Color, result)
		}
	}
	return b.String()
}

func formatReports(reports []*service.ReportInfo) string {
	if len(reports) == 0 {
		return "No reports stored yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reports (%d):\n", len(reports))
	for _, r := range reports {
		mark := "✓"
		if !r.OK {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s (%s) processed %s\n", mark, r.ID, r.Replay, r.ProcessedAt.Format(time.RFC3339))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "    %s\n", e)
		}
	}
	return b.String()
}
