package handler

import (
	_ "embed"
	"net/http"
)

// OpenAPIDocument describes every route the API serves.
//
//go:embed openapi.yaml
var OpenAPIDocument []byte

// OpenAPI serves the API description.
// GET /openapi.yaml
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(OpenAPIDocument)
}
