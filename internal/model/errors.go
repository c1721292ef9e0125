// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"net/http"
)

// APIError は業務ルール違反を表す統一エラー型。
// HTTPステータスコードとユーザー向けメッセージを保持し、
// ハンドラー層で {"error": Message} 形式のJSONレスポンスに変換される。
type APIError struct {
	Code    string // エラーコード
	Status  int    // 対応するHTTPステータスコード
	Message string // ユーザー向けメッセージ（APIの契約文字列）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingCredentials   = "MISSING_CREDENTIALS"
	ErrCodeDuplicateUsername    = "DUPLICATE_USERNAME"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeInvalidPassword      = "INVALID_PASSWORD"
	ErrCodeMissingDogFields     = "MISSING_DOG_FIELDS"
	ErrCodeDogNotFound          = "DOG_NOT_FOUND"
	ErrCodeSelfAdoption         = "SELF_ADOPTION"
	ErrCodeAlreadyAdopted       = "ALREADY_ADOPTED"
	ErrCodeNotOriginalOwner     = "NOT_ORIGINAL_OWNER"
	ErrCodeInvalidAdoptedFilter = "INVALID_ADOPTED_FILTER"
)

// NewMissingCredentialsError はユーザー名またはパスワード未入力のエラーを生成する。
func NewMissingCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeMissingCredentials,
		Status:  http.StatusBadRequest,
		Message: "Username and password are required.",
	}
}

// NewDuplicateUsernameError はユーザー名重複のエラーを生成する。
func NewDuplicateUsernameError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateUsername,
		Status:  http.StatusBadRequest,
		Message: "Username already exists",
	}
}

// NewUserNotFoundError は該当ユーザーが存在しない場合のエラーを生成する。
func NewUserNotFoundError(username string) *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("No such user found with username: %s", username),
	}
}

// NewInvalidPasswordError はパスワード不一致のエラーを生成する。
func NewInvalidPasswordError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidPassword,
		Status:  http.StatusUnauthorized,
		Message: "Invalid password",
	}
}

// NewMissingDogFieldsError は犬登録時の必須項目欠落エラーを生成する。
func NewMissingDogFieldsError() *APIError {
	return &APIError{
		Code:    ErrCodeMissingDogFields,
		Status:  http.StatusBadRequest,
		Message: "Name and description are required to register a dog.",
	}
}

// NewDogNotFoundError は指定IDの犬が存在しない場合のエラーを生成する。
func NewDogNotFoundError(dogID string) *APIError {
	return &APIError{
		Code:    ErrCodeDogNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("No dog with an id: %s was found.", dogID),
	}
}

// NewSelfAdoptionError は登録者自身による譲渡申請のエラーを生成する。
func NewSelfAdoptionError() *APIError {
	return &APIError{
		Code:    ErrCodeSelfAdoption,
		Status:  http.StatusBadRequest,
		Message: "You cannot adopt a dog that you registered yourself.",
	}
}

// NewAlreadyAdoptedError は譲渡済みの犬への再譲渡エラーを生成する。
func NewAlreadyAdoptedError(name string) *APIError {
	return &APIError{
		Code:    ErrCodeAlreadyAdopted,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Sorry, %s has already been adopted!", name),
	}
}

// NewRemoveAdoptedError は譲渡済みの犬の削除エラーを生成する。
func NewRemoveAdoptedError() *APIError {
	return &APIError{
		Code:    ErrCodeAlreadyAdopted,
		Status:  http.StatusBadRequest,
		Message: "You cannot remove a dog that has already been adopted!",
	}
}

// NewNotOriginalOwnerError は登録者以外による削除のエラーを生成する。
func NewNotOriginalOwnerError() *APIError {
	return &APIError{
		Code:    ErrCodeNotOriginalOwner,
		Status:  http.StatusForbidden,
		Message: "You cannot remove a dog that was registered by another user.",
	}
}

// NewInvalidAdoptedFilterError は無効なadoptedフィルタのエラーを生成する。
// フィルタは "true" または "false" の完全一致のみを受け付け、
// それ以外の値を暗黙にデフォルトへ丸めることはしない。
func NewInvalidAdoptedFilterError(value string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidAdoptedFilter,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("Invalid adopted filter: %s. Use \"true\" or \"false\".", value),
	}
}
