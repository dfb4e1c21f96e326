package web

import (
	"fmt"
	"net/http"

	"etherduel/internal/report"
)

// GET /battles/{id}/report.pdf
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.load(w, r)
	if !ok {
		return
	}
	title := fmt.Sprintf("%s vs %s", rec.State.Player.Name, rec.State.Enemy.Name)
	pdf, err := report.Generate(report.Input{
		Title:       title,
		State:       rec.State,
		Events:      rec.Events,
		Settlements: rec.Settlements,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="battle-report.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		s.log().Warn("report write failed", "id", rec.State.ID, "err", err)
	}
}
