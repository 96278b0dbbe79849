// Package api provides the HTTP REST API for replay processing.
//
// Endpoints:
//
// Recorded games:
//   - GET /api/replays - List recorded games in the replay directory
//   - POST /api/replays/{name}/process - Process one recorded game
//   - POST /api/process - Process every recorded game
//
// Results:
//   - GET /api/reports - List stored reports
//   - GET /api/reports/{id} - Get a stored report record
//   - GET /api/minimaps/{id} - Get the minimap PNG of a processed game
//   - GET /api/schema/report - JSON schema of the match report
//
// Localization:
//   - GET /api/locales - List available locales
//
// Other:
//   - GET /health - Health check
//   - GET /ws?topic=<id> - WebSocket event stream
//   - / - Static files from the output directory
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Processing requests take an optional
// body:
//
//	{
//	  "locale": "es",  // default locale when omitted
//	  "workers": 4     // POST /api/process only
//	}
//
// Errors are returned as {"error": "message"}. A processing call where one
// stage failed answers 422 with the partial record and the error.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run()
//
//	srv := api.NewServer(replayService, hub, "static")
//	http.ListenAndServe(":8080", srv)
package api
