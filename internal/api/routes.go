// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// Version reported by the health and info endpoints.
const Version = "1.0.0"

// HealthBody is the health check response.
type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

// InfoBody describes the running service.
type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	Project  string   `json:"project" doc:"Earth Engine project maps are registered under"`
	Features []string `json:"features" doc:"Available features"`
}

// APIHandler holds the REST API handlers for the documented routes. The
// tile endpoint itself lives on the raw mux because its response contract
// predates this API.
type APIHandler struct {
	project string
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(project string) *APIHandler {
	return &APIHandler{project: project}
}

// RegisterHealth registers the health check route.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterInfo registers the service info route.
func (h *APIHandler) RegisterInfo(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

func (h *APIHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "salish-prop-tiles",
		Version:  Version,
		Project:  h.project,
		Features: []string{"sentinel-2", "ndvi", "cloud-free-composite"},
	}}, nil
}
