package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voicegate/voicegate/internal/assistant"
	"github.com/voicegate/voicegate/internal/session"
	"github.com/voicegate/voicegate/internal/ws"
)

type deps struct {
	wsHandler  *ws.Handler
	registry   *session.Registry
	assistants assistant.Store
}

// registerRoutes wires all HTTP endpoints to the shared mux.
func registerRoutes(mux *http.ServeMux, d deps) {
	mux.HandleFunc("/call/web", d.wsHandler.Web)
	mux.HandleFunc("/call/bridge", d.wsHandler.Bridge)
	mux.HandleFunc("/healthz", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/sessions", d.handleSessions)
	mux.HandleFunc("GET /api/sessions/{id}", d.handleSession)
	mux.HandleFunc("GET /assistants", d.handleAssistants)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type sessionInfo struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Transport string `json:"transport"`
	Assistant string `json:"assistant"`
	StartedAt string `json:"started_at"`
}

func (d deps) handleSessions(w http.ResponseWriter, r *http.Request) {
	live := d.registry.List()
	infos := make([]sessionInfo, 0, len(live))
	for _, s := range live {
		infos = append(infos, describe(s))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"active":   len(infos),
		"sessions": infos,
	})
}

func (d deps) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := d.registry.Get(r.PathValue("id"))
	if sess == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(describe(sess))
}

type assistantInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Greeting   string `json:"greeting"`
	Voice      string `json:"voice"`
	Collection string `json:"collection"`
}

func (d deps) handleAssistants(w http.ResponseWriter, r *http.Request) {
	list, err := d.assistants.List(r.Context())
	if err != nil {
		http.Error(w, "assistant lookup failed", http.StatusInternalServerError)
		return
	}
	infos := make([]assistantInfo, 0, len(list))
	for _, a := range list {
		infos = append(infos, assistantInfo{
			ID:         a.ID,
			Name:       a.Name,
			Greeting:   a.Greeting,
			Voice:      a.Voice,
			Collection: a.Collection,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

func describe(s *session.Session) sessionInfo {
	return sessionInfo{
		ID:        s.ID,
		State:     s.State().String(),
		Transport: string(s.Transport),
		Assistant: s.Assistant.ID,
		StartedAt: s.StartedAt.UTC().Format(time.RFC3339),
	}
}
