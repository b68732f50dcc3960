package webserver

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusReport is the liveness document served on / and /status.
type StatusReport struct {
	Status    string `json:"status"`
	Clients   int    `json:"clients"`
	Timestamp int64  `json:"timestamp"` // Unix ms
}

// Status answers from hub membership alone; it never touches the stream.
func (s *Server) Status() StatusReport {
	return StatusReport{
		Status:    "running",
		Clients:   s.hub.Count(),
		Timestamp: time.Now().UnixMilli(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Status())
}
