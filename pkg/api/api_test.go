package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pairlink/pkg/models"
	"pairlink/pkg/store"
)

func setup(t *testing.T) *httptest.Server {
	t.Helper()
	require.NoError(t, store.Open(t.TempDir()))
	t.Cleanup(func() { _ = store.Close() })
	srv := httptest.NewServer(Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthAndReady(t *testing.T) {
	srv := setup(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestReadyzWithoutStore(t *testing.T) {
	srv := httptest.NewServer(Router())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestListMessages(t *testing.T) {
	srv := setup(t)
	key := "ABC123"
	for i := 1; i <= 3; i++ {
		require.NoError(t, store.AppendMessage(key, models.Message{
			ID:              fmt.Sprintf("m-%d", i),
			ConversationKey: key,
			Sender:          "alice@example.com",
			Kind:            models.KindText,
			Content:         fmt.Sprintf("msg %d", i),
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
		}))
	}

	var out struct {
		ConversationKey string           `json:"conversationKey"`
		Messages        []models.Message `json:"messages"`
	}
	resp := doJSON(t, "GET", srv.URL+"/v1/conversations/"+key+"/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &out)
	require.Equal(t, key, out.ConversationKey)
	require.Len(t, out.Messages, 3)
	require.Equal(t, "m-1", out.Messages[0].ID)

	// limit keeps the newest rows
	resp = doJSON(t, "GET", srv.URL+"/v1/conversations/"+key+"/messages?limit=2", nil)
	decode(t, resp, &out)
	require.Len(t, out.Messages, 2)
	require.Equal(t, "m-2", out.Messages[0].ID)
	require.Equal(t, "m-3", out.Messages[1].ID)
}

func TestListMessagesEmptyConversation(t *testing.T) {
	srv := setup(t)
	var out struct {
		Messages []models.Message `json:"messages"`
	}
	resp := doJSON(t, "GET", srv.URL+"/v1/conversations/NOSUCH/messages", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &out)
	require.NotNil(t, out.Messages)
	require.Empty(t, out.Messages)
}

func TestReminderCRUD(t *testing.T) {
	srv := setup(t)

	resp := doJSON(t, "POST", srv.URL+"/v1/reminders", models.Reminder{
		ConversationKey: "ABC123",
		Title:           "anniversary dinner",
		Date:            "2026-09-01",
		Time:            "19:30",
		Priority:        "high",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Reminder
	decode(t, resp, &created)
	require.NotEmpty(t, created.ID)
	require.False(t, created.Completed)

	var list []models.Reminder
	resp = doJSON(t, "GET", srv.URL+"/v1/reminders?conversation=ABC123", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &list)
	require.Len(t, list, 1)

	resp = doJSON(t, "POST", srv.URL+"/v1/reminders/"+created.ID+"/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var completed models.Reminder
	decode(t, resp, &completed)
	require.True(t, completed.Completed)

	resp = doJSON(t, "DELETE", srv.URL+"/v1/reminders/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, "DELETE", srv.URL+"/v1/reminders/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateReminderValidation(t *testing.T) {
	srv := setup(t)
	resp := doJSON(t, "POST", srv.URL+"/v1/reminders", models.Reminder{Title: "no conversation"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserUpsertAndGet(t *testing.T) {
	srv := setup(t)

	resp := doJSON(t, "POST", srv.URL+"/v1/users", models.User{
		Email: "alice@example.com", Name: "Alice", PairCode: "ABC123", Paired: true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var u models.User
	resp = doJSON(t, "GET", srv.URL+"/v1/users/alice@example.com", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &u)
	require.Equal(t, "Alice", u.Name)
	require.True(t, u.Paired)

	resp = doJSON(t, "GET", srv.URL+"/v1/users/nobody@example.com", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, "POST", srv.URL+"/v1/users", models.User{Name: "no email"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
