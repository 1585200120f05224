package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
)

// PublicTables may be streamed without a session.
var PublicTables = []string{models.TableNews, models.TableServerStatus, models.TableSiteSettings}

const keepAlive = 25 * time.Second

type Handler struct {
	Emitter *ChangeEmitter
	Logger  *logger.Logger
	Allowed []string
}

func NewHandler(emitter *ChangeEmitter, log *logger.Logger, allowed []string) *Handler {
	return &Handler{Emitter: emitter, Logger: log, Allowed: allowed}
}

// Stream serves GET /api/stream?topics=news,server_status.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	tables := h.topics(r.URL.Query().Get("topics"))
	if len(tables) == 0 {
		http.Error(w, "No valid topics requested", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ctx := r.Context()
	events := h.Emitter.Subscribe(ctx, tables)
	h.Logger.Debug("SSE", fmt.Sprintf("Client subscribed to %s", strings.Join(tables, ",")))

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Logger.Debug("SSE", "Client disconnected")
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case change, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(change)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to marshal change: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", change.Table, data)
			flusher.Flush()
		}
	}
}

func (h *Handler) topics(raw string) []string {
	allowed := make(map[string]bool, len(h.Allowed))
	for _, t := range h.Allowed {
		allowed[t] = true
	}

	var out []string
	if strings.TrimSpace(raw) == "" {
		return append(out, h.Allowed...)
	}
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if allowed[part] && !seen[part] {
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}
