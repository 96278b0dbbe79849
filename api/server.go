package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/invopop/jsonschema"
	"go.uber.org/multierr"

	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
	"github.com/wricardo/mcp-training/recminimap/game/report"
	"github.com/wricardo/mcp-training/recminimap/game/service"
	"github.com/wricardo/mcp-training/recminimap/game/store"
	"github.com/wricardo/mcp-training/recminimap/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service   service.ReplayService
	hub       *websocket.Hub
	router    *mux.Router
	staticDir string
}

// NewServer creates a new API server serving static files from staticDir
func NewServer(replayService service.ReplayService, hub *websocket.Hub, staticDir string) *Server {
	s := &Server{
		service:   replayService,
		hub:       hub,
		router:    mux.NewRouter(),
		staticDir: staticDir,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Recorded games
	api.HandleFunc("/replays", s.handleListReplays).Methods("GET")
	api.HandleFunc("/replays/{name}/process", s.handleProcessReplay).Methods("POST")
	api.HandleFunc("/process", s.handleProcessAll).Methods("POST")

	// Results
	api.HandleFunc("/reports", s.handleListReports).Methods("GET")
	api.HandleFunc("/reports/{id}", s.handleGetReport).Methods("GET")
	api.HandleFunc("/minimaps/{id}", s.handleGetMinimap).Methods("GET")
	api.HandleFunc("/schema/report", s.handleReportSchema).Methods("GET")

	// Localization
	api.HandleFunc("/locales", s.handleListLocales).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrReplayNotFound),
		errors.Is(err, service.ErrReportNotFound),
		errors.Is(err, replay.ErrNoReplays):
		return http.StatusNotFound
	case errors.Is(err, locale.ErrLocaleNotFound),
		errors.Is(err, locale.ErrInvalidLocale):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// processRequest is the optional body of processing calls.
type processRequest struct {
	Locale  string `json:"locale,omitempty"`
	Workers int    `json:"workers,omitempty"`
}

func decodeProcessRequest(r *http.Request) (processRequest, error) {
	var req processRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// Replay Handlers

func (s *Server) handleListReplays(w http.ResponseWriter, r *http.Request) {
	replays, err := s.service.ListReplays(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"replays": replays,
		"count":   len(replays),
	})
}

func (s *Server) handleProcessReplay(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	req, err := decodeProcessRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.service.ProcessReplay(r.Context(), name, service.ProcessOptions{Locale: req.Locale})
	if err != nil {
		if rec == nil {
			respondError(w, statusFor(err), err.Error())
			return
		}
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"record": rec,
			"error":  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleProcessAll(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProcessRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch, err := s.service.ProcessAll(r.Context(), service.ProcessOptions{
		Locale:  req.Locale,
		Workers: req.Workers,
	})
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	failures := []string{}
	for _, e := range multierr.Errors(batch.Err()) {
		failures = append(failures, e.Error())
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"batch":    batch,
		"failures": failures,
	})
}

// Result Handlers

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.service.ListReports(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetReport(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetMinimap(w http.ResponseWriter, r *http.Request) {
	path, err := s.service.MinimapPath(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func (s *Server) handleReportSchema(w http.ResponseWriter, r *http.Request) {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(&store.Record{})
	schema.Title = "Match report record"

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"record": schema,
		"report": jsonschema.Reflect(&report.MatchReport{}),
	})
}

// Localization Handlers

func (s *Server) handleListLocales(w http.ResponseWriter, r *http.Request) {
	locales, err := s.service.ListLocales(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"locales": locales,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusServiceUnavailable)
		return
	}
	s.hub.ServeWS(w, r, r.URL.Query().Get("topic"))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
