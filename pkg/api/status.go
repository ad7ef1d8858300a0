package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const statusStreamInterval = 5 * time.Second

// handleStatus always answers 200; an unhealthy service shows up in the
// report body, not in the HTTP status.
func (s *Server) handleStatus(w http.ResponseWriter, req *http.Request) {
	report := s.aggregator.Run(req.Context())
	writeJSON(w, http.StatusOK, report)
}

// handleStatusStream pushes a fresh report over a websocket on an interval
// until the client goes away.
func (s *Server) handleStatusStream(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	streamCtx, cancel := context.WithCancel(req.Context())
	defer cancel()

	// handle client disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(statusStreamInterval)
	defer ticker.Stop()

	for {
		report := s.aggregator.Run(streamCtx)
		if err := conn.WriteJSON(report); err != nil {
			log.WithError(err).Debug("status stream closed")
			return
		}

		select {
		case <-ticker.C:
		case <-streamCtx.Done():
			return
		}
	}
}
