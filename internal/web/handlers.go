// Package web exposes battles over a small JSON API.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"etherduel/internal/battle"
	"etherduel/internal/combat"
	"etherduel/internal/session"
)

// Record is what the store keeps per battle: the latest state plus the
// accumulated log and settlement history.
type Record struct {
	State       battle.State            `json:"state"`
	Events      []combat.Event          `json:"events"`
	Settlements []battle.TurnSettlement `json:"settlements"`
}

type Server struct {
	Engine *battle.Engine
	Store  session.Store[Record]
	Logger *slog.Logger
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cards", s.handleCards)

	mux.HandleFunc("POST /battles", s.handleCreate)
	mux.HandleFunc("GET /battles/{id}", s.handleGet)
	mux.HandleFunc("DELETE /battles/{id}", s.handleDelete)
	mux.HandleFunc("POST /battles/{id}/turns", s.handleTurn)
	mux.HandleFunc("POST /battles/{id}/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /battles/{id}/rewind", s.handleRewind)

	mux.HandleFunc("GET /battles/{id}/report.pdf", s.handleReport)
	return mux
}

func (s *Server) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Server) handleCards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine.Catalog.Cards())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the battle named by the path, writing a 404 when it is missing.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (Record, bool) {
	rec, ok, err := s.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return Record{}, false
	}
	if !ok {
		http.Error(w, "battle not found", http.StatusNotFound)
		return Record{}, false
	}
	return rec, true
}

// storeError maps an Update failure to a status code.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		http.Error(w, "battle not found", http.StatusNotFound)
		return
	}
	s.log().Error("store update failed", "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// rejected reports whether a transition was ignored: the engine answers a
// refused request with a single warning and the state untouched.
func rejected(events []combat.Event) bool {
	return len(events) == 1 && events[0].Kind == combat.EventWarning
}
