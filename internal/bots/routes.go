package bots

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the Slack webhook endpoints on the given router.
func RegisterRoutes(r chi.Router, d *Dispatcher) {
	r.Post("/slack/events", d.HandleEvent)
	r.Post("/slack/interactions", d.HandleInteraction)
}
