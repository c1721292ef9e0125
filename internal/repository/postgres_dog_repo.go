package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mikan/doghouse/internal/model"
)

// PostgresDogRepo はPostgreSQLを使用した犬レコードリポジトリ。
type PostgresDogRepo struct {
	db *sql.DB
}

// NewPostgresDogRepo はPostgresDogRepoを生成する。
func NewPostgresDogRepo(db *sql.DB) *PostgresDogRepo {
	return &PostgresDogRepo{db: db}
}

// Create は犬レコードを作成する。
func (r *PostgresDogRepo) Create(ctx context.Context, dog *model.Dog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dogs (id, name, description, original_owner_id, current_owner_id,
		                   msg_for_original_owner, adopted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		dog.ID, dog.Name, dog.Description, dog.OriginalOwnerID, dog.CurrentOwnerID,
		dog.MsgForOriginalOwner, dog.Adopted, dog.CreatedAt, dog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert dog: %w", err)
	}
	return nil
}

// FindByID は指定IDの犬を取得する。見つからない場合はnilを返す。
func (r *PostgresDogRepo) FindByID(ctx context.Context, id string) (*model.Dog, error) {
	dog := &model.Dog{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, original_owner_id, current_owner_id,
		        msg_for_original_owner, adopted, created_at, updated_at
		 FROM dogs WHERE id = $1`,
		id,
	).Scan(&dog.ID, &dog.Name, &dog.Description, &dog.OriginalOwnerID, &dog.CurrentOwnerID,
		&dog.MsgForOriginalOwner, &dog.Adopted, &dog.CreatedAt, &dog.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find dog by ID: %w", err)
	}

	return dog, nil
}

// Adopt は募集中の犬を1回の条件付きUPDATEで譲渡済みに遷移させる。
// find→saveの2段階更新では並行する2つの譲渡が両方とも「募集中」を観測しうるため、
// 状態チェックと書き込みをこのUPDATEのWHERE句で原子的に行う。
func (r *PostgresDogRepo) Adopt(ctx context.Context, dogID, adopterID, message string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE dogs
		 SET adopted = TRUE,
		     current_owner_id = $2,
		     msg_for_original_owner = $3,
		     updated_at = now()
		 WHERE id = $1
		   AND adopted = FALSE
		   AND original_owner_id <> $2`,
		dogID, adopterID, message,
	)
	if err != nil {
		return false, fmt.Errorf("failed to adopt dog: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// DeleteAvailable は募集中の犬レコードを物理削除する。
// 譲渡済みの行は削除対象から除外されるため、並行して譲渡が成立した場合は
// 削除が成立せずfalseを返す。
func (r *PostgresDogRepo) DeleteAvailable(ctx context.Context, dogID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM dogs WHERE id = $1 AND adopted = FALSE`,
		dogID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete dog: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListByOriginalOwner は登録者の犬一覧を作成順で返す。
func (r *PostgresDogRepo) ListByOriginalOwner(ctx context.Context, ownerID string, adopted *bool, offset, limit int) ([]*model.Dog, error) {
	query := `SELECT id, name, description, original_owner_id, current_owner_id,
	                 msg_for_original_owner, adopted, created_at, updated_at
	          FROM dogs WHERE original_owner_id = $1`
	args := []any{ownerID}

	if adopted != nil {
		query += ` AND adopted = $2`
		args = append(args, *adopted)
	}

	query += fmt.Sprintf(` ORDER BY created_at, id OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dogs by original owner: %w", err)
	}
	defer rows.Close()

	return scanDogs(rows)
}

// ListByCurrentOwner は譲渡先ユーザーの犬一覧を作成順で返す。
func (r *PostgresDogRepo) ListByCurrentOwner(ctx context.Context, adopterID string, offset, limit int) ([]*model.Dog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, original_owner_id, current_owner_id,
		        msg_for_original_owner, adopted, created_at, updated_at
		 FROM dogs WHERE current_owner_id = $1
		 ORDER BY created_at, id OFFSET $2 LIMIT $3`,
		adopterID, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list dogs by current owner: %w", err)
	}
	defer rows.Close()

	return scanDogs(rows)
}

// scanDogs は結果セットをDogスライスに変換する。
func scanDogs(rows *sql.Rows) ([]*model.Dog, error) {
	var dogs []*model.Dog
	for rows.Next() {
		dog := &model.Dog{}
		if err := rows.Scan(&dog.ID, &dog.Name, &dog.Description, &dog.OriginalOwnerID,
			&dog.CurrentOwnerID, &dog.MsgForOriginalOwner, &dog.Adopted,
			&dog.CreatedAt, &dog.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dog row: %w", err)
		}
		dogs = append(dogs, dog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dog rows: %w", err)
	}
	return dogs, nil
}

// compile-time interface check
var _ DogRepository = (*PostgresDogRepo)(nil)
