package model

import "time"

// Dog は里親募集中または譲渡済みの犬レコードを表す。
//
// 状態遷移は一方向のみ: 登録時は募集中（Adopted=false, CurrentOwnerID=nil）、
// 譲渡が成立するとAdopted=trueとなり、以後の再譲渡・削除はできない。
// OriginalOwnerIDは作成時に一度だけ設定され、以後変更されない。
type Dog struct {
	ID                  string
	Name                string
	Description         string
	OriginalOwnerID     string
	CurrentOwnerID      *string
	MsgForOriginalOwner *string
	Adopted             bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsOwnedBy は指定ユーザーがこの犬の登録者かどうかを返す。
func (d *Dog) IsOwnedBy(userID string) bool {
	return d.OriginalOwnerID == userID
}
