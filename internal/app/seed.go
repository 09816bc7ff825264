package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lockstat/internal/config"
	"github.com/hitoshi/lockstat/internal/database"
	"github.com/hitoshi/lockstat/internal/model"
)

// seedEntry は直近1週間のサンプルセッションの定義。
// 現在日からの相対日数とロック時刻・継続時間で表現する。
type seedEntry struct {
	daysAgo         int
	lockHour        int
	lockMinute      int
	durationSeconds int
}

// seedEntries は開発用のサンプルデータ。深夜の長時間セッションから
// 数十秒の短いセッションまで、統計表示の確認に使える分布にしてある。
var seedEntries = []seedEntry{
	// 当日
	{0, 2, 30, 25200},
	{0, 10, 15, 120},
	{0, 12, 45, 1800},
	{0, 14, 20, 45},
	{0, 16, 0, 3600},
	{0, 18, 30, 300},
	{0, 20, 15, 7200},

	// 前日
	{1, 1, 0, 21600},
	{1, 8, 30, 90},
	{1, 11, 0, 2400},
	{1, 13, 30, 600},
	{1, 15, 45, 30},
	{1, 17, 20, 4500},
	{1, 19, 0, 150},
	{1, 22, 30, 9000},

	// 2日前
	{2, 0, 45, 28800},
	{2, 10, 0, 180},
	{2, 12, 30, 1200},
	{2, 14, 15, 60},
	{2, 16, 45, 5400},
	{2, 19, 30, 240},
	{2, 21, 0, 3300},

	// 3日前
	{3, 1, 30, 23400},
	{3, 9, 0, 15},
	{3, 11, 45, 900},
	{3, 14, 0, 2700},
	{3, 16, 30, 20},
	{3, 18, 15, 6300},
	{3, 20, 45, 420},

	// 4日前
	{4, 2, 0, 19800},
	{4, 10, 30, 25},
	{4, 13, 0, 3000},
	{4, 15, 15, 450},
	{4, 17, 45, 7200},
	{4, 20, 0, 1500},

	// 5日前
	{5, 1, 15, 27000},
	{5, 11, 0, 360},
	{5, 14, 30, 1800},
	{5, 17, 0, 5400},
	{5, 19, 45, 40},
	{5, 22, 0, 4800},

	// 6日前
	{6, 0, 30, 24300},
	{6, 9, 45, 200},
	{6, 12, 15, 2100},
	{6, 15, 0, 90},
	{6, 18, 30, 8100},
	{6, 21, 15, 600},
}

// runSeed はマイグレーションを適用した上で、直近1週間分のサンプル
// セッションをデータベースに投入する。ローカル開発用サブコマンド。
func runSeed(cfg *config.Config) error {
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	repo := newSessionRepo(db)
	now := time.Now().In(loc)

	ctx := context.Background()
	for _, e := range seedEntries {
		day := now.AddDate(0, 0, -e.daysAgo)
		lock := time.Date(day.Year(), day.Month(), day.Day(), e.lockHour, e.lockMinute, 0, 0, loc)
		unlock := lock.Add(time.Duration(e.durationSeconds) * time.Second)

		sess := &model.Session{
			ID:              uuid.New().String(),
			LockTime:        lock,
			UnlockTime:      unlock,
			DurationSeconds: e.durationSeconds,
		}

		if err := repo.Create(ctx, sess); err != nil {
			return fmt.Errorf("サンプルデータの投入に失敗しました: %w", err)
		}
	}

	slog.Info("seed completed", slog.Int("sessions", len(seedEntries)))
	return nil
}
