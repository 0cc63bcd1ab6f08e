package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/robosite/internal/model"
)

// TeamServiceInterface はチームハンドラーが必要とするサービスインターフェース。
type TeamServiceInterface interface {
	Create(ctx context.Context, name string) (*model.Team, error)
	Rename(ctx context.Context, id int64, name string) (*model.Team, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Team, error)
	List(ctx context.Context) ([]*model.Team, error)
}

// TeamHandler はチーム管理のHTTPハンドラー。
type TeamHandler struct {
	service TeamServiceInterface
}

// NewTeamHandler はTeamHandlerを生成する。
func NewTeamHandler(service TeamServiceInterface) *TeamHandler {
	return &TeamHandler{service: service}
}

// teamRequest はチーム作成・名前変更リクエストのボディ。
type teamRequest struct {
	Name string `json:"name"`
}

// teamResponse はチーム情報のAPIレスポンス。
type teamResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Create はチーム作成を処理する。
// POST /api/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	team, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTeamResponse(team))
}

// Rename はチーム名の変更を処理する。
// PATCH /api/teams/{id}
func (h *TeamHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	team, err := h.service.Rename(r.Context(), id, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTeamResponse(team))
}

// Delete はチーム削除を処理する。所属ユーザーは無所属へ戻る。
// DELETE /api/teams/{id}
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get はチーム詳細を取得する。
// GET /api/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	team, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTeamResponse(team))
}

// List は全チーム一覧を取得する。
// GET /api/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		res = append(res, toTeamResponse(t))
	}
	writeJSON(w, http.StatusOK, res)
}

// toTeamResponse はmodel.TeamからAPIレスポンスに変換する。
func toTeamResponse(t *model.Team) teamResponse {
	return teamResponse{
		ID:   t.ID,
		Name: t.Name,
	}
}
