package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mikan/doghouse/internal/middleware"
	"github.com/mikan/doghouse/internal/model"
)

// DogServiceInterface は犬ハンドラーが必要とするサービスインターフェース。
type DogServiceInterface interface {
	// Register は新しい犬を募集中として登録する。
	Register(ctx context.Context, name, description, registrantID string) (*model.Dog, error)
	// Adopt は募集中の犬を譲渡済みに遷移させる。
	Adopt(ctx context.Context, dogID, adopterID, message string) (*model.Dog, error)
	// Remove は募集中の犬レコードを削除する。
	Remove(ctx context.Context, dogID, requesterID string) (*model.Dog, error)
	// ListRegistered は登録者の犬一覧をページ単位で返す。
	ListRegistered(ctx context.Context, ownerID, adoptedFilter string, page int) ([]*model.Dog, error)
	// ListAdopted は譲渡を受けたユーザーの犬一覧をページ単位で返す。
	ListAdopted(ctx context.Context, adopterID string, page int) ([]*model.Dog, error)
}

// DogHandler は犬レコード管理のHTTPハンドラー。
type DogHandler struct {
	service DogServiceInterface
}

// NewDogHandler はDogHandlerを生成する。
func NewDogHandler(service DogServiceInterface) *DogHandler {
	return &DogHandler{
		service: service,
	}
}

// registerDogRequest は犬登録リクエストのボディ。
type registerDogRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// adoptDogRequest は譲渡リクエストのボディ。messageは省略可。
type adoptDogRequest struct {
	Message string `json:"message"`
}

// dogResponse は犬レコードのAPIレスポンス。
type dogResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	OriginalOwnerID     string    `json:"originalOwnerId"`
	CurrentOwnerID      *string   `json:"currentOwnerId"`
	MsgForOriginalOwner *string   `json:"msgForOriginalOwner"`
	Adopted             bool      `json:"adopted"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// dogListResponse は一覧レスポンス。現在ページと犬の配列を返す。
type dogListResponse struct {
	Page int           `json:"page"`
	Dogs []dogResponse `json:"dogs"`
}

// RegisterDog は新しい犬を募集中として登録する。
// POST /dogs/registerDog
func (h *DogHandler) RegisterDog(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.  Please login.")
		return
	}

	var req registerDogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	dog, err := h.service.Register(r.Context(), req.Name, req.Description, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Message: fmt.Sprintf("Successfully registered %s for adoption!", dog.Name),
	})
}

// AdoptDog は募集中の犬の譲渡を成立させる。
// ボディは省略可能で、登録者への感謝メッセージを含められる。
// POST /dogs/adoptDog/{id}
func (h *DogHandler) AdoptDog(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.  Please login.")
		return
	}

	dogID := chi.URLParam(r, "id")

	// ボディなしは空メッセージとして扱う
	var req adoptDogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	dog, err := h.service.Adopt(r.Context(), dogID, userID, req.Message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Congratulations!  You have adopted %s.", dog.Name),
	})
}

// RemoveDog は募集中の犬レコードを削除する。
// DELETE /dogs/removeDog/{id}
func (h *DogHandler) RemoveDog(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.  Please login.")
		return
	}

	dogID := chi.URLParam(r, "id")

	dog, err := h.service.Remove(r.Context(), dogID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Successfully removed %s.", dog.Name),
	})
}

// ListRegisteredDogs は自分が登録した犬の一覧をページ単位で取得する。
// adoptedクエリで譲渡状態による絞り込みができる。
// GET /dogs/registeredDogs?page=&adopted=
func (h *DogHandler) ListRegisteredDogs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.  Please login.")
		return
	}

	page := parsePage(r.URL.Query().Get("page"))
	adoptedFilter := r.URL.Query().Get("adopted")

	dogs, err := h.service.ListRegistered(r.Context(), userID, adoptedFilter, page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDogListResponse(page, dogs))
}

// ListAdoptedDogs は自分が譲渡を受けた犬の一覧をページ単位で取得する。
// GET /dogs/adoptedDogs?page=
func (h *DogHandler) ListAdoptedDogs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, "Authentication required.  Please login.")
		return
	}

	page := parsePage(r.URL.Query().Get("page"))

	dogs, err := h.service.ListAdopted(r.Context(), userID, page)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDogListResponse(page, dogs))
}

// parsePage はpageクエリ値をページ番号に変換する。
// 未指定・非数値・1未満はすべて1ページ目として扱う。
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// toDogListResponse はドメインのDogスライスを一覧レスポンスに変換する。
func toDogListResponse(page int, dogs []*model.Dog) dogListResponse {
	results := make([]dogResponse, len(dogs))
	for i, d := range dogs {
		results[i] = toDogResponse(d)
	}
	return dogListResponse{Page: page, Dogs: results}
}

// toDogResponse はドメインのDogをレスポンス型に変換する。
func toDogResponse(d *model.Dog) dogResponse {
	return dogResponse{
		ID:                  d.ID,
		Name:                d.Name,
		Description:         d.Description,
		OriginalOwnerID:     d.OriginalOwnerID,
		CurrentOwnerID:      d.CurrentOwnerID,
		MsgForOriginalOwner: d.MsgForOriginalOwner,
		Adopted:             d.Adopted,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}
