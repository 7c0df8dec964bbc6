package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/connectfour-go/internal/api/response"
	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/storage"
)

// PlayerHandler serves archived player records
type PlayerHandler struct {
	archive storage.Storage
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(archive storage.Storage) *PlayerHandler {
	return &PlayerHandler{archive: archive}
}

func identityFromPath(r *http.Request) (model.Identity, error) {
	vars := mux.Vars(r)
	id := model.Identity{Username: vars["username"], DisplayName: vars["display_name"]}
	if id.Username == "" || id.DisplayName == "" {
		return model.Identity{}, NewInvalidRequestError("username and display_name are required")
	}
	return id, nil
}

// Get handles GET /api/v1/players/{username}/{display_name}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := identityFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.archive.GetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Games handles GET /api/v1/players/{username}/{display_name}/games
func (h *PlayerHandler) Games(w http.ResponseWriter, r *http.Request) {
	id, err := identityFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.archive.GetPlayer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	games, err := h.archive.GetGamesForPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerGamesFromModel(id, games))
}
