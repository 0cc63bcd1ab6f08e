package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/robosite/internal/model"
)

// UnitServiceInterface は単元ハンドラーが必要とするサービスインターフェース。
type UnitServiceInterface interface {
	CreateUnit(ctx context.Context, name string) (*model.Unit, error)
	RenameUnit(ctx context.Context, id int64, name string) (*model.Unit, error)
	DeleteUnit(ctx context.Context, id int64) error
	ListUnits(ctx context.Context) ([]*model.Unit, error)
}

// UnitHandler は単元管理のHTTPハンドラー。
type UnitHandler struct {
	service UnitServiceInterface
}

// NewUnitHandler はUnitHandlerを生成する。
func NewUnitHandler(service UnitServiceInterface) *UnitHandler {
	return &UnitHandler{service: service}
}

// unitRequest は単元作成・名前変更リクエストのボディ。
type unitRequest struct {
	Name string `json:"name"`
}

// unitResponse は単元情報のAPIレスポンス。
type unitResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Create は単元作成を処理する。
// POST /api/units
func (h *UnitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	unit, err := h.service.CreateUnit(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUnitResponse(unit))
}

// Rename は単元名の変更を処理する。
// PATCH /api/units/{id}
func (h *UnitHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req unitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	unit, err := h.service.RenameUnit(r.Context(), id, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUnitResponse(unit))
}

// Delete は単元削除を処理する。配下のレッスン・教材要素も削除される。
// DELETE /api/units/{id}
func (h *UnitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteUnit(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List は全単元一覧を取得する。
// GET /api/units
func (h *UnitHandler) List(w http.ResponseWriter, r *http.Request) {
	units, err := h.service.ListUnits(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]unitResponse, 0, len(units))
	for _, u := range units {
		res = append(res, toUnitResponse(u))
	}
	writeJSON(w, http.StatusOK, res)
}

// toUnitResponse はmodel.UnitからAPIレスポンスに変換する。
func toUnitResponse(u *model.Unit) unitResponse {
	return unitResponse{
		ID:   u.ID,
		Name: u.Name,
	}
}
