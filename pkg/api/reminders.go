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

func handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var rem models.Reminder
	if err := json.NewDecoder(r.Body).Decode(&rem); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if rem.ConversationKey == "" || rem.Title == "" || rem.Date == "" || rem.Time == "" {
		utils.JSONError(w, http.StatusBadRequest, "conversationKey, title, scheduledDate and scheduledTime are required")
		return
	}
	if rem.ID == "" {
		rem.ID = utils.GenReminderID()
	}
	rem.Completed = false
	if err := store.SaveReminder(rem); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to save reminder")
		return
	}
	logger.Info("reminder_created", "id", rem.ID, "conversation", rem.ConversationKey)
	_ = utils.JSONWrite(w, http.StatusCreated, rem)
}

func handleListReminders(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("conversation")
	rems, err := store.ListReminders(key)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rems == nil {
		rems = []models.Reminder{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, rems)
}

func handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, found, err := store.GetReminder(id); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	} else if !found {
		utils.JSONError(w, http.StatusNotFound, "reminder not found")
		return
	}
	if err := store.DeleteReminder(id); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to delete reminder")
		return
	}
	logger.Info("reminder_deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func handleCompleteReminder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rem, found, err := store.GetReminder(id)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		utils.JSONError(w, http.StatusNotFound, "reminder not found")
		return
	}
	rem.Completed = true
	if err := store.SaveReminder(rem); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "failed to update reminder")
		return
	}
	logger.Info("reminder_completed", "id", id)
	_ = utils.JSONWrite(w, http.StatusOK, rem)
}
