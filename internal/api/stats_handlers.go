package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"OrandaBot/internal/models"
	"OrandaBot/internal/stats"
)

// statsResponse - отчёт за период в JSON.
type statsResponse struct {
	Period  stats.Period                     `json:"period"`
	Start   time.Time                        `json:"start"`
	End     time.Time                        `json:"end"`
	Totals  map[models.Status]int            `json:"totals"`
	ByActor map[string]map[models.Status]int `json:"by_actor"`
	Actors  []string                         `json:"actors"`
}

// GetStats возвращает статистику смен статусов за day|month|year.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	p, err := stats.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Unknown period, use day, month or year")
		return
	}

	now := s.deps.Now()
	if s.deps.Config.Location != nil {
		now = now.In(s.deps.Config.Location)
	}
	report, err := stats.Compute(r.Context(), s.deps.Store, p, now)
	if err != nil {
		log.Printf("GetStats: Error calculating statistics: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}

	actors := report.Actors()
	if actors == nil {
		actors = []string{}
	}
	writeJSONSuccess(w, "Statistics retrieved successfully", statsResponse{
		Period:  report.Period,
		Start:   report.Start,
		End:     report.End,
		Totals:  report.Totals,
		ByActor: report.ByActor,
		Actors:  actors,
	})
}
