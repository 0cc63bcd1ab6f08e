package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/robosite/internal/content"
	"github.com/hitoshi/robosite/internal/model"
)

// LessonServiceInterface はレッスンハンドラーが必要とするサービスインターフェース。
type LessonServiceInterface interface {
	CreateLesson(ctx context.Context, params content.CreateLessonParams) (*model.Lesson, error)
	UpdateLesson(ctx context.Context, id int64, params content.UpdateLessonParams) (*model.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error
	GetLesson(ctx context.Context, id int64) (*model.Lesson, error)
	ListLessons(ctx context.Context, unitID int64) ([]*model.Lesson, error)
}

// LessonHandler はレッスン管理のHTTPハンドラー。
type LessonHandler struct {
	service LessonServiceInterface
}

// NewLessonHandler はLessonHandlerを生成する。
func NewLessonHandler(service LessonServiceInterface) *LessonHandler {
	return &LessonHandler{service: service}
}

// createLessonRequest はレッスン作成リクエストのボディ。
type createLessonRequest struct {
	Name  string `json:"name"`
	Kind  int    `json:"kind"`
	Image string `json:"image"`
}

// updateLessonRequest はレッスン更新リクエストのボディ。nilのフィールドは変更しない。
type updateLessonRequest struct {
	Name  *string `json:"name"`
	Kind  *int    `json:"kind"`
	Image *string `json:"image"`
}

// lessonResponse はレッスン情報のAPIレスポンス。
type lessonResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Kind   int    `json:"kind"`
	Image  string `json:"image"`
	UnitID int64  `json:"unit_id"`
}

// Create はレッスン作成を処理する。
// POST /api/units/{id}/lessons
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	unitID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req createLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), content.CreateLessonParams{
		UnitID: unitID,
		Name:   req.Name,
		Kind:   req.Kind,
		Image:  req.Image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLessonResponse(lesson))
}

// Update はレッスン更新を処理する。
// PATCH /api/lessons/{id}
func (h *LessonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req updateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	lesson, err := h.service.UpdateLesson(r.Context(), id, content.UpdateLessonParams{
		Name:  req.Name,
		Kind:  req.Kind,
		Image: req.Image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLessonResponse(lesson))
}

// Delete はレッスン削除を処理する。配下の教材要素も削除される。
// DELETE /api/lessons/{id}
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteLesson(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get はレッスン詳細を取得する。
// GET /api/lessons/{id}
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLessonResponse(lesson))
}

// List は単元配下のレッスン一覧を取得する。
// GET /api/units/{id}/lessons
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	unitID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	lessons, err := h.service.ListLessons(r.Context(), unitID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]lessonResponse, 0, len(lessons))
	for _, l := range lessons {
		res = append(res, toLessonResponse(l))
	}
	writeJSON(w, http.StatusOK, res)
}

// toLessonResponse はmodel.LessonからAPIレスポンスに変換する。
func toLessonResponse(l *model.Lesson) lessonResponse {
	return lessonResponse{
		ID:     l.ID,
		Name:   l.Name,
		Kind:   l.Kind,
		Image:  l.Image,
		UnitID: l.UnitID,
	}
}
