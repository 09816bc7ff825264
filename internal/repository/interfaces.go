// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/lockstat/internal/model"
)

// SessionRepository はセッションデータの永続化インターフェース。
// セッションは作成後不変で、更新操作は存在しない（作成・一括取得・ID指定削除のみ）。
type SessionRepository interface {
	// Create はセッションを作成する。IDと導出済みDurationSecondsを含む完全な
	// エンティティを受け取り、そのまま永続化する。
	Create(ctx context.Context, session *model.Session) error

	// ListAll は全セッションをロック時刻の降順で取得する。
	// 日付・範囲のフィルタリングはストアでは行わず、すべて集計層で行う。
	ListAll(ctx context.Context) ([]*model.Session, error)

	// DeleteByIDs は指定IDのセッションを一括削除する。空のID列は何もしない。
	DeleteByIDs(ctx context.Context, ids []string) error
}
