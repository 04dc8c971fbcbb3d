package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pairlink/pkg/models"
	"pairlink/pkg/store"
	"pairlink/pkg/utils"
)

// Router returns the REST surface consumed by the backend application:
// conversation history reads plus the reminder and user-directory
// lifecycle that feeds the realtime core.
func Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handleHealthz).Methods("GET")
	r.HandleFunc("/readyz", handleReadyz).Methods("GET")

	r.HandleFunc("/v1/conversations/{conversationKey}/messages", handleListMessages).Methods("GET")

	r.HandleFunc("/v1/reminders", handleCreateReminder).Methods("POST")
	r.HandleFunc("/v1/reminders", handleListReminders).Methods("GET")
	r.HandleFunc("/v1/reminders/{id}", handleDeleteReminder).Methods("DELETE")
	r.HandleFunc("/v1/reminders/{id}/complete", handleCompleteReminder).Methods("POST")

	r.HandleFunc("/v1/users", handleUpsertUser).Methods("POST")
	r.HandleFunc("/v1/users/{email}", handleGetUser).Methods("GET")

	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !store.Ready() {
		utils.JSONError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleListMessages(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["conversationKey"]
	msgs, err := store.ListMessages(key)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Optional limit keeps only the newest n messages
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		if lim, err := strconv.Atoi(limStr); err == nil && lim >= 0 && lim < len(msgs) {
			msgs = msgs[len(msgs)-lim:]
		}
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		ConversationKey string           `json:"conversationKey"`
		Messages        []models.Message `json:"messages"`
	}{ConversationKey: key, Messages: msgs})
}
