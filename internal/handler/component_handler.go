package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/robosite/internal/content"
	"github.com/hitoshi/robosite/internal/model"
)

// ComponentServiceInterface は教材要素ハンドラーが必要とするサービスインターフェース。
type ComponentServiceInterface interface {
	CreateComponent(ctx context.Context, params content.CreateComponentParams) (*model.LessonComponent, error)
	UpdateComponent(ctx context.Context, id int64, params content.UpdateComponentParams) (*model.LessonComponent, error)
	DeleteComponent(ctx context.Context, id int64) error
	GetComponent(ctx context.Context, id int64) (*model.LessonComponent, error)
	ListComponents(ctx context.Context, lessonID int64) ([]*model.LessonComponent, error)
}

// ComponentHandler は教材要素管理のHTTPハンドラー。
type ComponentHandler struct {
	service ComponentServiceInterface
}

// NewComponentHandler はComponentHandlerを生成する。
func NewComponentHandler(service ComponentServiceInterface) *ComponentHandler {
	return &ComponentHandler{service: service}
}

// createComponentRequest は教材要素作成リクエストのボディ。
type createComponentRequest struct {
	Name    string `json:"name"`
	Kind    int    `json:"kind"`
	Content string `json:"content"`
}

// updateComponentRequest は教材要素更新リクエストのボディ。nilのフィールドは変更しない。
type updateComponentRequest struct {
	Name    *string `json:"name"`
	Kind    *int    `json:"kind"`
	Content *string `json:"content"`
}

// componentResponse は教材要素情報のAPIレスポンス。
type componentResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Kind     int    `json:"kind"`
	Content  string `json:"content"`
	LessonID int64  `json:"lesson_id"`
}

// Create は教材要素作成を処理する。コンテンツは保存前にサニタイズされる。
// POST /api/lessons/{id}/components
func (h *ComponentHandler) Create(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req createComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	component, err := h.service.CreateComponent(r.Context(), content.CreateComponentParams{
		LessonID: lessonID,
		Name:     req.Name,
		Kind:     req.Kind,
		Content:  req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toComponentResponse(component))
}

// Update は教材要素更新を処理する。
// PATCH /api/components/{id}
func (h *ComponentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req updateComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	component, err := h.service.UpdateComponent(r.Context(), id, content.UpdateComponentParams{
		Name:    req.Name,
		Kind:    req.Kind,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toComponentResponse(component))
}

// Delete は教材要素削除を処理する。
// DELETE /api/components/{id}
func (h *ComponentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteComponent(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get は教材要素詳細を取得する。
// GET /api/components/{id}
func (h *ComponentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	component, err := h.service.GetComponent(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toComponentResponse(component))
}

// List はレッスン配下の教材要素一覧を取得する。
// GET /api/lessons/{id}/components
func (h *ComponentHandler) List(w http.ResponseWriter, r *http.Request) {
	lessonID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	components, err := h.service.ListComponents(r.Context(), lessonID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]componentResponse, 0, len(components))
	for _, c := range components {
		res = append(res, toComponentResponse(c))
	}
	writeJSON(w, http.StatusOK, res)
}

// toComponentResponse はmodel.LessonComponentからAPIレスポンスに変換する。
func toComponentResponse(c *model.LessonComponent) componentResponse {
	return componentResponse{
		ID:       c.ID,
		Name:     c.Name,
		Kind:     c.Kind,
		Content:  c.Content,
		LessonID: c.LessonID,
	}
}
