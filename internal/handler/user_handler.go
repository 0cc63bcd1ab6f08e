package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/robosite/internal/model"
	"github.com/hitoshi/robosite/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Register(ctx context.Context, params user.RegisterParams) (*model.User, error)
	Update(ctx context.Context, email string, params user.UpdateParams) (*model.User, error)
	Delete(ctx context.Context, email string) error
	Get(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。管理者専用ルートから呼ばれる。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// registerUserRequest はユーザー登録リクエストのボディ。
type registerUserRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Access int    `json:"access"`
	TeamID *int64 `json:"team_id"`
}

// updateUserRequest はユーザー更新リクエストのボディ。
type updateUserRequest struct {
	Name       *string `json:"name"`
	Access     *int    `json:"access"`
	TeamID     *int64  `json:"team_id"`
	RemoveTeam bool    `json:"remove_team"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Access int    `json:"access"`
	TeamID *int64 `json:"team_id"`
}

// Register は明示的なユーザー登録を処理する。
// POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	created, err := h.service.Register(r.Context(), user.RegisterParams{
		Email:  req.Email,
		Name:   req.Name,
		Access: model.AccessLevel(req.Access),
		TeamID: req.TeamID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

// Update はユーザーの権限・チーム・表示名の再割り当てを処理する。
// PATCH /api/users/{email}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	params := user.UpdateParams{
		Name:       req.Name,
		TeamID:     req.TeamID,
		RemoveTeam: req.RemoveTeam,
	}
	if req.Access != nil {
		access := model.AccessLevel(*req.Access)
		params.Access = &access
	}

	updated, err := h.service.Update(r.Context(), email, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}

// Delete はユーザーを削除する。
// DELETE /api/users/{email}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := h.service.Delete(r.Context(), email); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get はユーザー詳細を取得する。
// GET /api/users/{email}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	found, err := h.service.Get(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(found))
}

// List は全ユーザー一覧を取得する。
// GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]userResponse, 0, len(users))
	for _, u := range users {
		res = append(res, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, res)
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Access: int(u.Access),
		TeamID: u.TeamID,
	}
}
