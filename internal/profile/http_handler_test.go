package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gameapi/internal/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testUserID = "3f0a2b1c-0000-0000-0000-000000000001"

func authedRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(httpx.ContextWithUser(r.Context(), testUserID, "authenticated"))
}

func TestHTTPHandler_GetMe(t *testing.T) {
	t.Run("requires an authenticated user", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(new(mockRepo)))

		w := httptest.NewRecorder()
		handler.GetMe(w, httptest.NewRequest(http.MethodGet, "/profiles/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns the profile", func(t *testing.T) {
		mRepo := new(mockRepo)
		handler := NewHTTPHandler(NewService(mRepo))

		mRepo.On("GetByID", mock.Anything, testUserID).Return(Profile{
			ID: testUserID, DisplayName: "Player One",
		}, nil)

		w := httptest.NewRecorder()
		handler.GetMe(w, authedRequest(http.MethodGet, "/profiles/me", ""))

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data Profile `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Player One", body.Data.DisplayName)
	})

	t.Run("404 when the profile does not exist", func(t *testing.T) {
		mRepo := new(mockRepo)
		handler := NewHTTPHandler(NewService(mRepo))

		mRepo.On("GetByID", mock.Anything, testUserID).Return(Profile{}, ErrNotFound)

		w := httptest.NewRecorder()
		handler.GetMe(w, authedRequest(http.MethodGet, "/profiles/me", ""))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_UpdateMe(t *testing.T) {
	t.Run("requires an authenticated user", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(new(mockRepo)))

		w := httptest.NewRecorder()
		handler.UpdateMe(w, httptest.NewRequest(http.MethodPut, "/profiles/me", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		handler := NewHTTPHandler(NewService(new(mockRepo)))

		w := httptest.NewRecorder()
		handler.UpdateMe(w, authedRequest(http.MethodPut, "/profiles/me", `{not json`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("updates and echoes the profile", func(t *testing.T) {
		mRepo := new(mockRepo)
		handler := NewHTTPHandler(NewService(mRepo))

		mRepo.On("GetByID", mock.Anything, testUserID).Return(Profile{ID: testUserID}, nil)
		mRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		handler.UpdateMe(w, authedRequest(http.MethodPut, "/profiles/me", `{"display_name":"Player Two"}`))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Player Two")
	})

	t.Run("validation failure is a 400", func(t *testing.T) {
		mRepo := new(mockRepo)
		handler := NewHTTPHandler(NewService(mRepo))

		mRepo.On("GetByID", mock.Anything, testUserID).Return(Profile{ID: testUserID}, nil)

		long := strings.Repeat("x", maxDisplayNameLength+1)
		w := httptest.NewRecorder()
		handler.UpdateMe(w, authedRequest(http.MethodPut, "/profiles/me", `{"display_name":"`+long+`"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
