package controllers

import (
	"encoding/json"
	"net/http"
)

type healthResponse struct {
	Status     string   `json:"status"`
	Version    string   `json:"version,omitempty"`
	GrantTypes []string `json:"grant_types"`
}

// HealthController maneja GET /healthz. El servicio no tiene dependencias
// externas obligatorias: si el proceso responde, está listo.
type HealthController struct {
	version    string
	grantTypes []string
}

func NewHealthController(version string, grantTypes []string) *HealthController {
	return &HealthController{version: version, grantTypes: grantTypes}
}

func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Version: c.version, GrantTypes: c.grantTypes})
}
