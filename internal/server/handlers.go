package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/plausch-chat/plausch/internal/broker"
)

// RegisterHandler registers a username and replies with its assigned color.
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "Username is required.", http.StatusBadRequest)
		return
	}

	color, err := s.registry.Register(username)
	if err != nil {
		if errors.Is(err, broker.ErrUsernameTaken) {
			http.Error(w, "Username already taken.", http.StatusConflict)
			return
		}
		s.logger.Error("registration failed", "username", username, "error", err)
		http.Error(w, "Internal server error.", http.StatusInternalServerError)
		return
	}

	s.logger.Info("client registered", "username", username, "color", color)
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, color)
}

// MessagesHandler serves the message endpoint: GET long-polls for the next
// message, POST dispatches a new one.
func (s *Server) MessagesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.longPoll(w, r)
	case http.MethodPost:
		s.postMessage(w, r)
	default:
		http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
	}
}

// longPoll installs a fresh pending slot for the client and suspends until it
// is fulfilled, the peer disconnects, or the configured timeout expires. An
// earlier poll for the same client is silently abandoned.
func (s *Server) longPoll(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Client id is required.", http.StatusBadRequest)
		return
	}

	slot := s.registry.BeginLongPoll(id)

	ctx := r.Context()
	if s.cfg.LongPollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LongPollTimeout)
		defer cancel()
	}

	msg, err := slot.Await(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		// Peer disconnected; the slot stays abandoned in place.
		s.logger.Debug("long poll canceled", "id", id)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		s.logger.Error("failed to write long-poll response", "id", id, "error", err)
	}
}

// postMessage decodes a chat message and hands it to the router.
func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	var msg broker.Message
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxMessageSize)
	if err := json.NewDecoder(body).Decode(&msg); err != nil || msg.Sender == "" {
		http.Error(w, "Message invalid.", http.StatusBadRequest)
		return
	}

	if !s.limiters.allow(msg.Sender) {
		s.logger.Warn("rate limit exceeded", "sender", msg.Sender)
		http.Error(w, "Rate limit exceeded.", http.StatusTooManyRequests)
		return
	}

	outcome := s.router.Dispatch(r.Context(), msg)
	s.writeOutcome(w, outcome)
}

func (s *Server) writeOutcome(w http.ResponseWriter, outcome broker.Outcome) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode(outcome.Status))
	fmt.Fprint(w, outcome.Text)
}

// statusCode maps router outcomes onto HTTP status codes.
func statusCode(status broker.Status) int {
	switch status {
	case broker.StatusCreated:
		return http.StatusCreated
	case broker.StatusOK:
		return http.StatusOK
	case broker.StatusBadRequest:
		return http.StatusBadRequest
	case broker.StatusNotFound:
		return http.StatusNotFound
	case broker.StatusProviderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ClientsHandler lists the active usernames other than the requesting client.
func (s *Server) ClientsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	others := s.registry.ListOthers(id)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(others); err != nil {
		s.logger.Error("failed to write clients response", "error", err)
	}
}

// StatisticsHandler serves the usage summary (GET) and records a message for
// a user (POST).
func (s *Server) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Statistics are disabled.", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		summary, err := s.store.Summary(r.Context())
		if err != nil {
			s.logger.Error("failed to load statistics", "error", err)
			http.Error(w, "Internal server error.", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, summary)

	case http.MethodPost:
		var username string
		if err := json.NewDecoder(r.Body).Decode(&username); err != nil || username == "" {
			http.Error(w, "Invalid username.", http.StatusBadRequest)
			return
		}
		if err := s.store.RecordMessage(r.Context(), username); err != nil {
			s.logger.Error("failed to record statistic", "username", username, "error", err)
			http.Error(w, "Internal server error.", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "Statistics updated.")

	default:
		http.Error(w, "Method not allowed.", http.StatusMethodNotAllowed)
	}
}

// HealthHandler provides a simple health check endpoint that returns server
// status.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, "plausch server is running!")
}
