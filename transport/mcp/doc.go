// Package mcp exposes replay processing to AI agents over the Model Context
// Protocol.
//
// The Client is a thin MCP server that proxies every tool call to the REST
// API (see package api), so the same service instance answers HTTP, WebSocket
// and MCP traffic.
//
// MCP Tools:
//   - list_replays: List recorded games and whether they were processed
//   - process_replay: Render the minimap and build the report of one game
//   - process_all: Process every recorded game
//   - match_report: Show the stored report of a processed game
//   - list_reports: List stored reports with their status
//   - list_locales: List the available report locales
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp, answered with GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
