// Package dog は犬レコードのライフサイクル管理を提供する。
package dog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mikan/doghouse/internal/model"
	"github.com/mikan/doghouse/internal/repository"
)

// PageSize は一覧取得の1ページあたりの件数。
const PageSize = 2

// MetricsRecorder はライフサイクルイベントの記録インターフェース。
// metrics.Collectorの部分集合として定義する。nilの場合は記録しない。
type MetricsRecorder interface {
	RecordDogRegistered()
	RecordDogAdopted()
	RecordDogRemoved()
}

// Service は犬レコードの状態遷移と所有権ルールを管理するサービス層。
//
// 状態遷移: 登録で募集中になり、譲渡で譲渡済み（終端）、
// 募集中の間のみ登録者本人が削除できる。
type Service struct {
	dogRepo  repository.DogRepository
	recorder MetricsRecorder
}

// NewService はServiceを生成する。recorderはnil可。
func NewService(dogRepo repository.DogRepository, recorder MetricsRecorder) *Service {
	return &Service{
		dogRepo:  dogRepo,
		recorder: recorder,
	}
}

// Register は新しい犬を募集中として登録する。
// nameまたはdescriptionが空の場合は業務エラーを返す。
func (s *Service) Register(ctx context.Context, name, description, registrantID string) (*model.Dog, error) {
	if name == "" || description == "" {
		return nil, model.NewMissingDogFieldsError()
	}

	now := time.Now()
	dog := &model.Dog{
		ID:              uuid.New().String(),
		Name:            name,
		Description:     description,
		OriginalOwnerID: registrantID,
		Adopted:         false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.dogRepo.Create(ctx, dog); err != nil {
		return nil, fmt.Errorf("failed to register dog: %w", err)
	}

	slog.Info("dog registered",
		slog.String("dog_id", dog.ID),
		slog.String("owner_id", registrantID),
	)
	if s.recorder != nil {
		s.recorder.RecordDogRegistered()
	}

	return dog, nil
}

// Adopt は募集中の犬を譲渡済みに遷移させる。
// 登録者本人による譲渡申請と譲渡済みの犬への再申請は業務エラーを返す。
// messageは省略時に空文字列として保存される。
func (s *Service) Adopt(ctx context.Context, dogID, adopterID, message string) (*model.Dog, error) {
	dog, err := s.dogRepo.FindByID(ctx, dogID)
	if err != nil {
		return nil, fmt.Errorf("failed to find dog: %w", err)
	}
	if dog == nil {
		return nil, model.NewDogNotFoundError(dogID)
	}
	if dog.IsOwnedBy(adopterID) {
		return nil, model.NewSelfAdoptionError()
	}
	if dog.Adopted {
		return nil, model.NewAlreadyAdoptedError(dog.Name)
	}

	// 状態チェックと書き込みはストア側の条件付きUPDATEで直列化する。
	// ここまでの読み取りとは別のサスペンションポイントになるため、
	// 並行する譲渡に敗れた場合は更新が成立しない。
	ok, err := s.dogRepo.Adopt(ctx, dogID, adopterID, message)
	if err != nil {
		return nil, fmt.Errorf("failed to adopt dog: %w", err)
	}
	if !ok {
		return nil, model.NewAlreadyAdoptedError(dog.Name)
	}

	slog.Info("dog adopted",
		slog.String("dog_id", dogID),
		slog.String("adopter_id", adopterID),
	)
	if s.recorder != nil {
		s.recorder.RecordDogAdopted()
	}

	dog.Adopted = true
	dog.CurrentOwnerID = &adopterID
	dog.MsgForOriginalOwner = &message
	return dog, nil
}

// Remove は募集中の犬レコードを物理削除する。
// 譲渡済みの犬は登録者本人を含め誰も削除できず、
// 募集中の犬は登録者本人のみが削除できる。
func (s *Service) Remove(ctx context.Context, dogID, requesterID string) (*model.Dog, error) {
	dog, err := s.dogRepo.FindByID(ctx, dogID)
	if err != nil {
		return nil, fmt.Errorf("failed to find dog: %w", err)
	}
	if dog == nil {
		return nil, model.NewDogNotFoundError(dogID)
	}
	if dog.Adopted {
		return nil, model.NewRemoveAdoptedError()
	}
	if !dog.IsOwnedBy(requesterID) {
		return nil, model.NewNotOriginalOwnerError()
	}

	ok, err := s.dogRepo.DeleteAvailable(ctx, dogID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove dog: %w", err)
	}
	if !ok {
		// 読み取り後に並行して譲渡が成立した場合
		return nil, model.NewRemoveAdoptedError()
	}

	slog.Info("dog removed",
		slog.String("dog_id", dogID),
		slog.String("owner_id", requesterID),
	)
	if s.recorder != nil {
		s.recorder.RecordDogRemoved()
	}

	return dog, nil
}

// ListRegistered は登録者の犬一覧をページ単位で返す。
// adoptedFilterは空文字・"true"・"false"のいずれかのみを受け付け、
// それ以外は業務エラーを返す（暗黙のデフォルトには丸めない）。
func (s *Service) ListRegistered(ctx context.Context, ownerID, adoptedFilter string, page int) ([]*model.Dog, error) {
	var adopted *bool
	switch adoptedFilter {
	case "":
		// フィルタなし
	case "true":
		t := true
		adopted = &t
	case "false":
		f := false
		adopted = &f
	default:
		return nil, model.NewInvalidAdoptedFilterError(adoptedFilter)
	}

	offset := pageOffset(page)
	dogs, err := s.dogRepo.ListByOriginalOwner(ctx, ownerID, adopted, offset, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered dogs: %w", err)
	}
	return dogs, nil
}

// ListAdopted は譲渡を受けたユーザーの犬一覧をページ単位で返す。
func (s *Service) ListAdopted(ctx context.Context, adopterID string, page int) ([]*model.Dog, error) {
	offset := pageOffset(page)
	dogs, err := s.dogRepo.ListByCurrentOwner(ctx, adopterID, offset, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list adopted dogs: %w", err)
	}
	return dogs, nil
}

// pageOffset は1始まりのページ番号をオフセットに変換する。
// 1未満のページ番号は1として扱う。
func pageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}
