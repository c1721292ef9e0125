// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mikan/doghouse/internal/middleware"
	"github.com/mikan/doghouse/internal/model"
)

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// 業務エラー（*model.APIError）はそのステータスとメッセージをそのまま返し、
// 想定外のエラーはログに記録したうえで詳細を漏らさず500を返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, apiErr.Status, apiErr.Message)
		return
	}

	slog.Error("unexpected service error",
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}
