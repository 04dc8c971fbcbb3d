package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"pairlink/pkg/logger"
	"pairlink/pkg/models"
	"pairlink/pkg/store"
	"pairlink/pkg/utils"
)

// The pairing service owns user records; these endpoints let it push
// directory state that connection authorization reads.

func handleUpsertUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if u.Email == "" {
		utils.JSONError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := store.SaveUser(u); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to save user")
		return
	}
	logger.Info("user_saved", "identity", u.Email, "paired", u.Paired)
	_ = utils.JSONWrite(w, http.StatusOK, u)
}

func handleGetUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	u, found, err := store.GetUser(email)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		utils.JSONError(w, http.StatusNotFound, "user not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, u)
}
