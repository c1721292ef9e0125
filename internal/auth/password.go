// Package auth はパスワード認証とセッショントークンの発行・検証を提供する。
package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost はパスワードハッシュのコストパラメータ。
const bcryptCost = 10

// HashPassword はパスワードのbcryptダイジェストを生成する。
// bcryptはソルトを内包するため、同じ入力でも呼び出しごとに異なるダイジェストになる。
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword はパスワードがダイジェストと一致するかを返す。
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
