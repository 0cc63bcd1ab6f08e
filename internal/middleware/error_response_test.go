package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/robosite/internal/model"
)

func TestStatusForAPIError(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{model.ErrCodeLoginRequired, http.StatusUnauthorized},
		{model.ErrCodeForbidden, http.StatusForbidden},
		{model.ErrCodeUserNotFound, http.StatusNotFound},
		{model.ErrCodeTeamNotFound, http.StatusNotFound},
		{model.ErrCodeUnitNotFound, http.StatusNotFound},
		{model.ErrCodeLessonNotFound, http.StatusNotFound},
		{model.ErrCodeComponentNotFound, http.StatusNotFound},
		{model.ErrCodeAlreadyExists, http.StatusConflict},
		{model.ErrCodeValidationFailed, http.StatusBadRequest},
		{model.ErrCodeStorageFailure, http.StatusInternalServerError},
		{model.ErrCodeProvisioningFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := StatusForAPIError(&model.APIError{Code: tt.code})
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestWriteAPIError_IncludesCategoryActionRedirect(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAPIError(rec, model.NewLoginRequiredError())

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Category != "auth" {
		t.Errorf("unexpected category: %q", body.Category)
	}
	if body.Action == "" {
		t.Error("action should not be empty")
	}
	if body.Redirect != "/auth/google/login" {
		t.Errorf("unexpected redirect: %q", body.Redirect)
	}
}

func TestWriteAPIError_OmitsEmptyRedirect(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAPIError(rec, model.NewValidationError("テスト"))

	var raw map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if _, ok := raw["redirect"]; ok {
		t.Error("empty redirect should be omitted from the payload")
	}
}

func TestWriteInternalServerError_HidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteInternalServerError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Category != "system" {
		t.Errorf("unexpected category: %q", body.Category)
	}
}
