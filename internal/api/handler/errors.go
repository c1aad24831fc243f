package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/hptracker/internal/api/apierr"
	"github.com/mcoot/hptracker/internal/model"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// roomFromPath parses the {code} path variable
func roomFromPath(r *http.Request) (model.RoomCode, error) {
	return model.ParseRoomCode(mux.Vars(r)["code"])
}

// playerFromPath parses the {code} and {name} path variables
func playerFromPath(r *http.Request) (model.RoomCode, model.PlayerName, error) {
	room, err := roomFromPath(r)
	if err != nil {
		return "", "", err
	}
	name, err := model.ParsePlayerName(mux.Vars(r)["name"])
	if err != nil {
		return "", "", err
	}
	return room, name, nil
}
