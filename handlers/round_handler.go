package handlers

import (
	"net/http"

	"github.com/kartliga/kart-league/services"
)

type RoundHandler struct {
	roundService *services.RoundService
}

func NewRoundHandler(roundService *services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

// Record записывает результаты одного заезда. Ранжирование приходит
// как упорядоченный список id игроков, от победителя к последнему.
func (h *RoundHandler) Record(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordRoundInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.RecordRound(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.GetRound(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EndEarly завершает активный турнир без записи очередного раунда.
func (h *RoundHandler) EndEarly(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.roundService.EndTournamentEarly(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
