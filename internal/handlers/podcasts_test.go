package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"podify/internal/test"
)

var podcastColumns = []string{
	"id", "user_id", "title", "description", "voice_type", "voice_prompt", "image_prompt",
	"audio_url", "audio_object", "audio_duration_seconds", "image_url", "image_object",
	"views", "created_at",
}

func completeDraftRow() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(draftColumns).AddRow(
		draftID, int64(1), "nova", "read this", "a microphone",
		"http://store/podify/audio/a.mp3", "audio/a.mp3", 12.0, 1, "COMPLETED",
		"http://store/podify/images/i.png", "images/i.png", 1, "COMPLETED", now, now,
	)
}

func TestPostPodcastValidationFailure(t *testing.T) {
	_, mock := test.NewMockDB(t)

	h := New(&test.MockTaskEnqueuer{}, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	body := `{"draftId":"` + draftID + `","title":"T","description":"D"}`
	h.PostPodcast(rr, authedRequest(t, http.MethodPost, "/api/podcasts", body))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Errors, "title")
	assert.Contains(t, resp.Errors, "description")
	// The store was never reached.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPodcastIncompleteDraft(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM drafts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(draftID, int64(1)).
		WillReturnRows(emptyDraftRow("nova"))

	h := New(&test.MockTaskEnqueuer{}, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	body := `{"draftId":"` + draftID + `","title":"Tea Time","description":"A show"}`
	h.PostPodcast(rr, authedRequest(t, http.MethodPost, "/api/podcasts", body))

	assert.Equal(t, http.StatusConflict, rr.Code)
	var resp struct {
		Notice Notice `json:"notice"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Please generate audio and image", resp.Notice.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPodcastSuccess(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM drafts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(draftID, int64(1)).
		WillReturnRows(completeDraftRow())
	created := sqlmock.NewRows(podcastColumns).AddRow(
		"p-1", int64(1), "Tea Time", "A show", "nova", "read this", "a microphone",
		"http://store/podify/audio/a.mp3", "audio/a.mp3", 12.0,
		"http://store/podify/images/i.png", "images/i.png", int64(0), time.Now(),
	)
	mock.ExpectQuery(`INSERT INTO podcasts`).WillReturnRows(created)

	h := New(&test.MockTaskEnqueuer{}, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	body := `{"draftId":"` + draftID + `","title":"Tea Time","description":"A show"}`
	h.PostPodcast(rr, authedRequest(t, http.MethodPost, "/api/podcasts", body))

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp struct {
		Notice   Notice `json:"notice"`
		Redirect string `json:"redirect"`
		Podcast  struct {
			ID    string `json:"id"`
			Views int64  `json:"views"`
		} `json:"podcast"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Podcast Created", resp.Notice.Title)
	assert.Equal(t, "/", resp.Redirect)
	assert.Equal(t, "p-1", resp.Podcast.ID)
	assert.Equal(t, int64(0), resp.Podcast.Views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPodcastPersistenceFailure(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM drafts WHERE id = \$1 AND user_id = \$2`).
		WithArgs(draftID, int64(1)).
		WillReturnRows(completeDraftRow())
	mock.ExpectQuery(`INSERT INTO podcasts`).WillReturnError(assert.AnError)

	h := New(&test.MockTaskEnqueuer{}, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	body := `{"draftId":"` + draftID + `","title":"Tea Time","description":"A show"}`
	h.PostPodcast(rr, authedRequest(t, http.MethodPost, "/api/podcasts", body))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	var resp struct {
		Notice Notice `json:"notice"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Error while Submitting", resp.Notice.Title)
	assert.Equal(t, "destructive", resp.Notice.Variant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostPodcastViews(t *testing.T) {
	_, mock := test.NewMockDB(t)

	mock.ExpectExec(`UPDATE podcasts SET views = views \+ 1`).
		WithArgs(draftID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := New(&test.MockTaskEnqueuer{}, &mockMediaStore{}, "previews")
	rr := httptest.NewRecorder()
	h.PostPodcastViews(rr, authedRequest(t, http.MethodPost, "/api/podcasts/"+draftID+"/views", ""))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
