package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/connectfour-go/internal/api/response"
	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/storage"
)

// GameHandler serves archived games
type GameHandler struct {
	archive storage.Storage
}

// NewGameHandler creates a new game handler
func NewGameHandler(archive storage.Storage) *GameHandler {
	return &GameHandler{archive: archive}
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	game, err := h.archive.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(game))
}
