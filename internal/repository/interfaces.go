// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/mikan/doghouse/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error
}

// DogRepository は犬レコードの永続化インターフェース。
// adopt/removeのcheck-then-write競合はストア側の条件付き更新で直列化する。
type DogRepository interface {
	// Create は犬レコードを作成する。
	Create(ctx context.Context, dog *model.Dog) error

	// FindByID は指定IDの犬を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Dog, error)

	// Adopt は募集中の犬を譲渡済みに遷移させる。
	// adopted=false かつ original_owner_id != adopterID の行のみを
	// 1回の条件付きUPDATEで更新し、更新が成立したかどうかを返す。
	// falseは並行する譲渡が先に成立したか、前提条件が崩れたことを意味する。
	Adopt(ctx context.Context, dogID, adopterID, message string) (bool, error)

	// DeleteAvailable は募集中の犬レコードを物理削除する。
	// adopted=false の行のみを削除し、削除が成立したかどうかを返す。
	DeleteAvailable(ctx context.Context, dogID string) (bool, error)

	// ListByOriginalOwner は登録者の犬一覧を作成順で返す。
	// adoptedがnilでない場合はadoptedフラグで絞り込む。
	ListByOriginalOwner(ctx context.Context, ownerID string, adopted *bool, offset, limit int) ([]*model.Dog, error)

	// ListByCurrentOwner は譲渡先ユーザーの犬一覧を作成順で返す。
	ListByCurrentOwner(ctx context.Context, adopterID string, offset, limit int) ([]*model.Dog, error)
}
