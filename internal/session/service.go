package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/lockstat/internal/model"
	"github.com/hitoshi/lockstat/internal/repository"
)

// Service はセッションの作成・取得・削除・バルクインポートを統括するサービス層。
type Service struct {
	repo repository.SessionRepository
	loc  *time.Location
}

// NewService はServiceの新しいインスタンスを生成する。
// locはタイムゾーン指定の無いタイムスタンプの解釈に使用する。nilの場合はローカルタイム。
func NewService(repo repository.SessionRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc}
}

// Create は単一セッションを検証して永続化する。
// タイムスタンプ解析失敗はINVALID_TIMESTAMP、unlock <= lockはINVALID_ORDERINGで拒否する。
func (s *Service) Create(ctx context.Context, lockTime, unlockTime string) (*model.Session, error) {
	sess, err := s.buildSession(lockTime, unlockTime)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}

	return sess, nil
}

// List は全セッションをロック時刻の降順で取得する。
// 読み取り失敗は必ず伝播し、空の結果と混同しない。
func (s *Service) List(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.NewStoreReadFailedError(), err)
	}
	return sessions, nil
}

// Delete は指定IDのセッションを一括削除する。空のID列は何もしない。
func (s *Service) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.repo.DeleteByIDs(ctx, ids)
}

// Import は正規化済みレコード列をレコード単位の隔離でインポートする。
// 入力順に逐次処理し、1レコードの失敗が他のレコードを中断・ロールバックすることはない。
// 結果は常に Success + Failed == Total を満たし、Errorsは失敗ごとに1件。
func (s *Service) Import(ctx context.Context, records []model.ImportRecord) *model.ImportResult {
	result := &model.ImportResult{
		Total:  len(records),
		Errors: []string{},
	}

	for i, rec := range records {
		sess, err := s.buildSession(rec.LockTime, rec.UnlockTime)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("レコード%d: %v", i+1, err))
			continue
		}

		if err := s.repo.Create(ctx, sess); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("レコード%d: 保存に失敗しました: %v", i+1, err))
			continue
		}

		result.Success++
	}

	return result
}

// buildSession はタイムスタンプ文字列を検証し、継続時間を導出したSessionを構築する。
func (s *Service) buildSession(lockTime, unlockTime string) (*model.Session, error) {
	lock, err := ParseTimestamp("lockTime", lockTime, s.loc)
	if err != nil {
		return nil, err
	}

	unlock, err := ParseTimestamp("unlockTime", unlockTime, s.loc)
	if err != nil {
		return nil, err
	}

	if !unlock.After(lock) {
		return nil, model.NewInvalidOrderingError()
	}

	return &model.Session{
		ID:              uuid.New().String(),
		LockTime:        lock,
		UnlockTime:      unlock,
		DurationSeconds: ComputeDuration(lock, unlock),
	}, nil
}
