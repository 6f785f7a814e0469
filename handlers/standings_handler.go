package handlers

import (
	"net/http"

	"github.com/kartliga/kart-league/services"
)

type StandingsHandler struct {
	standingsService *services.StandingsService
}

func NewStandingsHandler(standingsService *services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

// Tournament отдаёт таблицу турнира: участники по убыванию суммы очков
// с разбивкой по раундам.
func (h *StandingsHandler) Tournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.TournamentStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AllTime отдаёт сводную таблицу за всё время: живые результаты плюс
// исторические итоги.
func (h *StandingsHandler) AllTime(w http.ResponseWriter, r *http.Request) {
	standings, err := h.standingsService.AllTimeStandings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
