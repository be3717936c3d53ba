// Package server exposes the controller to the presentation layer over
// a WebSocket chat endpoint, plus HTTP surfaces for health checks and
// knowledge-base inspection.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/gantrylabs/foreman/agent"
	"github.com/gantrylabs/foreman/memory"
)

// Server serves the chat gateway.
type Server struct {
	controller *agent.Controller
	rules      *memory.RuleStore
	upgrader   websocket.Upgrader
}

// New creates a Server over the controller and rule store.
func New(controller *agent.Controller, rules *memory.RuleStore) *Server {
	return &Server{
		controller: controller,
		rules:      rules,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// turnRequest is one inbound chat frame.
type turnRequest struct {
	// SessionID lets a client resume a session; empty uses the
	// connection's session.
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

// turnResponse is one outbound chat frame.
type turnResponse struct {
	SessionID        string   `json:"session_id"`
	Text             string   `json:"text"`
	Reasoning        []string `json:"reasoning,omitempty"`
	AwaitingApproval bool     `json:"awaiting_approval"`
	Error            string   `json:"error,omitempty"`
}

// factView is a knowledge-base entry for the inspection panel.
type factView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Scope     string    `json:"scope,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/memory", s.handleMemory)
	return mux
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("[SERVER] Listening on %s (ws at /ws)", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// One session per connection unless the client pins its own.
	defaultSession := uuid.New().String()
	log.Printf("[SERVER] Client connected, session=%s", defaultSession)

	// Frames are read on a separate goroutine so a disconnect is
	// noticed while a turn is in flight and cancels it, rather than
	// after it finishes. The hijacked connection is invisible to the
	// request context otherwise.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames := make(chan turnRequest)
	go func() {
		defer cancel()
		for {
			var req turnRequest
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[SERVER] Read failed: %v", err)
				}
				return
			}
			select {
			case frames <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var req turnRequest
		select {
		case req = <-frames:
		case <-ctx.Done():
			return
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = defaultSession
		}

		resp := turnResponse{SessionID: sessionID}
		out, err := s.controller.ProcessTurn(ctx, sessionID, req.Text)
		if err != nil {
			// Turn aborted, state unchanged; the session stays usable.
			resp.Error = err.Error()
			resp.Text = "Something went wrong processing that. Please try again."
		} else {
			resp.Text = out.Text
			resp.AwaitingApproval = out.AwaitingApproval
			for _, step := range out.Trace {
				resp.Reasoning = append(resp.Reasoning, step.String())
			}
		}

		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("[SERVER] Write failed: %v", err)
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleMemory dumps the stored facts for the knowledge-base panel.
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	facts, err := s.rules.All(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]factView, 0, len(facts))
	for _, f := range facts {
		views = append(views, factView{
			ID:        f.ID(),
			Text:      f.Text(),
			Scope:     f.Scope(),
			CreatedAt: f.CreatedAt(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(views); err != nil {
		log.Printf("[SERVER] Encode memory dump failed: %v", err)
	}
}
