package server

import "net/http"

// Routes configures and returns an HTTP ServeMux with all application routes.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.HealthHandler)
	mux.HandleFunc("/register", s.RegisterHandler)
	mux.HandleFunc("/messages", s.MessagesHandler)
	mux.HandleFunc("/clients", s.ClientsHandler)
	mux.HandleFunc("/statistics", s.StatisticsHandler)
	mux.HandleFunc("/ws", s.WebSocketHandler)
	return mux
}
