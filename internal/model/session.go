// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"time"
)

// Session は1回のスクリーンロック（ロック→アンロック）区間を表す。
// DurationSecondsは常にLockTime/UnlockTimeから導出され、作成後は不変。
type Session struct {
	ID              string    `json:"id"`
	LockTime        time.Time `json:"lockTime"`
	UnlockTime      time.Time `json:"unlockTime"`
	DurationSeconds int       `json:"durationSeconds"`
}

// ImportRecord はインポート入力の1レコードを表す。
// CSV/JSONいずれの入力形式もこの形に正規化してから処理する。
type ImportRecord struct {
	LockTime   string `json:"lockTime"`
	UnlockTime string `json:"unlockTime"`
}

// ImportResult はバルクインポートの集計結果を表す。
// Success + Failed == Total が常に成立し、Errorsは失敗レコードごとに1件。
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors"`
}

// DailyStats は1日（または指定範囲）の集計統計を表す。永続化しない。
type DailyStats struct {
	Date                   string `json:"date"`
	TotalLockTimeSeconds   int    `json:"totalLockTimeSeconds"`
	AverageDurationSeconds int    `json:"averageDurationSeconds"`
	SessionCount           int    `json:"sessionCount"`
	LongestSessionSeconds  int    `json:"longestSessionSeconds"`
}

// TrendData はトレンド表示における1日分のバケットを表す。
type TrendData struct {
	Label          string `json:"label"`
	TotalSeconds   int    `json:"totalSeconds"`
	AverageSeconds int    `json:"averageSeconds"`
	SessionCount   int    `json:"sessionCount"`
}

// PeriodSummary はトレンド期間全体の要約統計を表す。
type PeriodSummary struct {
	TotalSeconds       int `json:"totalSeconds"`
	TotalSessions      int `json:"totalSessions"`
	AvgPerDay          int `json:"avgPerDay"`
	AvgSessionDuration int `json:"avgSessionDuration"`
}

// RankedSession はランキング表示用のセッションを表す。
// Labelは表示位置に基づく1始まりのラベルで、安定した識別子ではない。
type RankedSession struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	DurationSeconds int    `json:"durationSeconds"`
}

// Period はトレンド集計の期間種別を表す。
type Period string

const (
	// PeriodWeek は日曜始まり7日間の週次トレンドを示す。
	PeriodWeek Period = "week"
	// PeriodMonth はアンカー日を含む暦月のトレンドを示す。
	PeriodMonth Period = "month"
)

// RankOrder はセッションランキングのソート順を表す。
type RankOrder string

const (
	// RankLongest は継続時間の降順（最長から）を示す。
	RankLongest RankOrder = "longest"
	// RankShortest は継続時間の昇順（最短から）を示す。
	RankShortest RankOrder = "shortest"
)

// FormatDuration は秒数を短い表示形式（"5400" → "1h 30m"）に変換する。
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	if secs > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}

	return fmt.Sprintf("%dm", minutes)
}

// FormatDetailedDuration は秒数を詳細な英語表示形式に変換する。
func FormatDetailedDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%d %s %d %s", hours, plural(hours, "hour"), minutes, plural(minutes, "minute"))
	}

	if minutes > 0 {
		return fmt.Sprintf("%d %s", minutes, plural(minutes, "minute"))
	}

	return fmt.Sprintf("%d %s", seconds, plural(seconds, "second"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
