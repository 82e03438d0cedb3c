package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/clinicq/logger"
)

// ServeSSE streams tenant's events to the client until the request context
// ends or the broker shuts down. The subscription is released on every exit
// path.
func ServeSSE(b *Broker, w http.ResponseWriter, r *http.Request, tenant string) {
	log := b.log.WithContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("Streaming not supported", map[string]interface{}{logger.FieldTenant: tenant})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	sub, err := b.Subscribe(r.Context(), tenant)
	switch {
	case errors.Is(err, ErrEmptyTenant):
		http.Error(w, "tenant required", http.StatusUnauthorized)
		return
	case errors.Is(err, ErrBrokerClosed):
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sub.Close()

	// Long-lived stream: the server WriteTimeout must not apply.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("Could not disable write deadline", map[string]interface{}{
			logger.FieldChannelID: sub.ID(),
			logger.FieldError:     err.Error(),
		})
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	connected, _ := json.Marshal(ConnectedEvent{ClientID: sub.ID(), Tenant: tenant})
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventTypeConnected, connected); err != nil {
		return
	}
	flusher.Flush()

	log.Debug("Client connected", map[string]interface{}{
		logger.FieldTenant:    tenant,
		logger.FieldChannelID: sub.ID(),
		"remote_addr":         r.RemoteAddr,
	})

	keepAlive := time.NewTicker(b.KeepAlive())
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug("Client disconnected", map[string]interface{}{
				logger.FieldChannelID: sub.ID(),
				"reason":              ctx.Err().Error(),
			})
			return

		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", ev.Wire()); err != nil {
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			if _, err := fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix()); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
