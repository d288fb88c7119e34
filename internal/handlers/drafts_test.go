package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"podify/internal/db"
	"podify/internal/middleware"
	"podify/internal/models"
	"podify/internal/test"
	"podify/pkg/tasks"
)

var draftColumns = []string{
	"id", "user_id", "voice_type", "voice_prompt", "image_prompt",
	"audio_url", "audio_object", "audio_duration_seconds", "audio_seq", "audio_status",
	"image_url", "image_object", "image_seq", "image_status", "created_at", "updated_at",
}

const draftID = "3e0c54a1-93a4-4a40-9d49-0ba0a3f9a2a1"

func emptyDraftRow(voiceType interface{}) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(draftColumns).AddRow(
		draftID, int64(1), voiceType, "", "",
		nil, nil, 0.0, 0, db.StatusNone,
		nil, nil, 0, db.StatusNone, now, now,
	)
}

func authedRequest(t *testing.T, method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	user := &models.User{ID: 1, TelegramUsername: "testuser", CreatedAt: time.Now()}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, user)
	return mux.SetURLVars(req.WithContext(ctx), map[string]string{"id": draftID})
}

// Selecting a voice writes only the voice field and hands back the matching
// preview resource.
func TestPutDraftVoice(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectExec(`UPDATE drafts SET voice_type = \$3`).
		WithArgs(draftID, int64(1), "echo").
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := New(&test.MockTaskEnqueuer{}, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	h.PutDraftVoice(rr, authedRequest(t, http.MethodPut, "/api/drafts/"+draftID+"/voice", `{"voice":"echo"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "echo", resp["voiceType"])
	assert.Equal(t, "/previews/echo.mp3", resp["previewUrl"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPutDraftVoiceRejectsUnknownVoice(t *testing.T) {
	_, mock := test.NewMockDB(t)

	h := New(&test.MockTaskEnqueuer{}, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	h.PutDraftVoice(rr, authedRequest(t, http.MethodPut, "/api/drafts/"+draftID+"/voice", `{"voice":"robot"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostDraftAudioEnqueuesGeneration(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM drafts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(draftID, int64(1)).
		WillReturnRows(emptyDraftRow("nova"))
	mock.ExpectQuery(`UPDATE drafts SET audio_seq = audio_seq \+ 1`).
		WithArgs(draftID, int64(1), "read this", db.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"audio_seq"}).AddRow(2))

	enqueuer := &test.MockTaskEnqueuer{}
	h := New(enqueuer, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	h.PostDraftAudio(rr, authedRequest(t, http.MethodPost, "/api/drafts/"+draftID+"/audio", `{"prompt":"read this"}`))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Len(t, enqueuer.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypeGenerateAudio, enqueuer.EnqueuedTasks[0].Type())

	var payload tasks.GenerateAudioTaskPayload
	assert.NoError(t, json.Unmarshal(enqueuer.EnqueuedTasks[0].Payload(), &payload))
	assert.Equal(t, draftID, payload.DraftID)
	assert.Equal(t, 2, payload.Seq)
	assert.Equal(t, "read this", payload.Prompt)
	assert.Equal(t, "nova", payload.Voice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Without a selected voice no generation request is issued.
func TestPostDraftAudioRequiresVoice(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM drafts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(draftID, int64(1)).
		WillReturnRows(emptyDraftRow(nil))

	enqueuer := &test.MockTaskEnqueuer{}
	h := New(enqueuer, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	h.PostDraftAudio(rr, authedRequest(t, http.MethodPost, "/api/drafts/"+draftID+"/audio", `{"prompt":"read this"}`))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Empty(t, enqueuer.EnqueuedTasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostDraftImageEnqueuesGeneration(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`UPDATE drafts SET image_seq = image_seq \+ 1`).
		WithArgs(draftID, int64(1), "a microphone", db.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"image_seq"}).AddRow(1))

	enqueuer := &test.MockTaskEnqueuer{}
	h := New(enqueuer, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	h.PostDraftImage(rr, authedRequest(t, http.MethodPost, "/api/drafts/"+draftID+"/image", `{"prompt":"a microphone"}`))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Len(t, enqueuer.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypeGenerateImage, enqueuer.EnqueuedTasks[0].Type())
	assert.NoError(t, mock.ExpectationsWereMet())
}

type mockMediaStore struct {
	uploaded []string
	removed  []string
}

func (m *mockMediaStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	m.uploaded = append(m.uploaded, objectName)
	return "http://store/podify/" + objectName, nil
}

func (m *mockMediaStore) Remove(ctx context.Context, objectName string) error {
	m.removed = append(m.removed, objectName)
	return nil
}

// Deleting a draft releases the media it was holding.
func TestDeleteDraftReleasesHeldObjects(t *testing.T) {
	_, mock := test.NewMockDB(t)

	rows := sqlmock.NewRows([]string{"audio_object", "image_object"}).
		AddRow("audio/a.mp3", "images/i.png")
	mock.ExpectQuery(`DELETE FROM drafts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(draftID, int64(1)).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("audio/a.mp3").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("images/i.png").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	store := &mockMediaStore{}
	h := New(&test.MockTaskEnqueuer{}, store, "previews")
	rr := httptest.NewRecorder()
	h.DeleteDraft(rr, authedRequest(t, http.MethodDelete, "/api/drafts/"+draftID, ""))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.ElementsMatch(t, []string{"audio/a.mp3", "images/i.png"}, store.removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Media referenced by a published podcast survives the draft teardown.
func TestDeleteDraftKeepsPublishedMedia(t *testing.T) {
	_, mock := test.NewMockDB(t)

	rows := sqlmock.NewRows([]string{"audio_object", "image_object"}).
		AddRow("audio/a.mp3", "images/i.png")
	mock.ExpectQuery(`DELETE FROM drafts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(draftID, int64(1)).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("audio/a.mp3").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("images/i.png").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	store := &mockMediaStore{}
	h := New(&test.MockTaskEnqueuer{}, store, "previews")
	rr := httptest.NewRecorder()
	h.DeleteDraft(rr, authedRequest(t, http.MethodDelete, "/api/drafts/"+draftID, ""))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, store.removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
