package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashにはbcryptダイジェストのみを保持し、生パスワードは保存しない。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
