package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/hrsync/pkg/httpapi"
)

type HealthController struct {
	destinations []string
}

// NewHealthController reports liveness and the destinations the dispatcher knows.
func NewHealthController(destinations []string) *HealthController {
	return &HealthController{destinations: destinations}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Health).Methods(http.MethodGet)
}

type healthResponse struct {
	Status       string   `json:"status"`
	Destinations []string `json:"destinations"`
}

func (c *HealthController) Health(w http.ResponseWriter, _ *http.Request) {
	destinations := c.destinations
	if destinations == nil {
		destinations = []string{}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Destinations: destinations})
}
