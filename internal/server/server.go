// Package server wires the NDVI tile endpoint and the documented API
// routes into one HTTP handler.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/jknauernever/salish-prop/internal/api"
	"github.com/jknauernever/salish-prop/internal/earthengine"
	"github.com/jknauernever/salish-prop/internal/sentinel"
	"github.com/jknauernever/salish-prop/internal/service"
)

// Config holds the server configuration.
type Config struct {
	Host string
	Port string

	// EE configures the Earth Engine client. Project defaults to
	// sentinel.Project; BaseURL and HTTPClient are overridden in tests.
	EE earthengine.Config
}

// Server is the tile HTTP server.
type Server struct {
	config    Config
	mux       *http.ServeMux
	humaAPI   huma.API
	composite *service.CompositeService
}

// New creates a new tile server.
func New(cfg Config) *Server {
	if cfg.EE.Project == "" {
		cfg.EE.Project = sentinel.Project
	}

	mux := http.NewServeMux()

	// Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("salish-prop tiles API", api.Version)
	humaConfig.Info.Description = "Sentinel-2 NDVI dynamic tile API: converts a date range into an Earth Engine tile URL for a cloud-free composite over San Juan County."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:    cfg,
		mux:       mux,
		humaAPI:   humaAPI,
		composite: service.NewCompositeService(earthengine.NewClient(cfg.EE)),
	}

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the OpenAPI description of the documented routes.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

func (s *Server) routes() {
	handler := api.NewAPIHandler(s.config.EE.Project)
	handler.RegisterHealth(s.humaAPI)
	handler.RegisterInfo(s.humaAPI)

	// The tile endpoint stays off Huma: the map frontend depends on this
	// exact contract ({tileUrl}/{error} bodies, bare 204 preflight,
	// wildcard CORS origin) and Huma would wrap errors in its own envelope.
	s.mux.HandleFunc("/get-tiles", s.handleGetTiles)
}

// handleGetTiles serves the NDVI tile URL template for a date range.
func (s *Server) handleGetTiles(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Max-Age", "3600")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing start/end parameters"})
		return
	}

	tileURL, err := s.composite.TileURL(r.Context(), start, end)
	if err != nil {
		log.Printf("get-tiles %s..%s failed: %v", start, end, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"tileUrl": tileURL})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
