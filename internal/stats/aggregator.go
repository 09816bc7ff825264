// Package stats はセッション集合に対する純粋な集計計算を提供する。
// すべての関数はメモリ上のスナップショットに対して動作し、I/Oや共有状態を持たない。
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hitoshi/lockstat/internal/model"
)

// trendLabelLayout はトレンドバケットの表示ラベル形式（例: "Jan 02"）。
const trendLabelLayout = "Jan 02"

// FilterByDay はロック時刻が指定日の暦日（その日の0時からの終日、両端含む）に
// 含まれるセッションを入力順のまま返す。暦日はdayのロケーションで判定する。
func FilterByDay(sessions []*model.Session, day time.Time) []*model.Session {
	var filtered []*model.Session
	for _, s := range sessions {
		if sameDay(s.LockTime, day) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// FilterLastNDays はロック時刻が now − days日 より厳密に後のセッションを返す。
func FilterLastNDays(sessions []*model.Session, now time.Time, days int) []*model.Session {
	cutoff := now.AddDate(0, 0, -days)
	var filtered []*model.Session
	for _, s := range sessions {
		if s.LockTime.After(cutoff) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// ComputeDailyStats はセッション集合の要約統計を計算する。
// 空集合では平均・最長ともに0を返し、エラーにはならない。
func ComputeDailyStats(date string, sessions []*model.Session) model.DailyStats {
	stats := model.DailyStats{
		Date:         date,
		SessionCount: len(sessions),
	}

	for _, s := range sessions {
		stats.TotalLockTimeSeconds += s.DurationSeconds
		if s.DurationSeconds > stats.LongestSessionSeconds {
			stats.LongestSessionSeconds = s.DurationSeconds
		}
	}

	stats.AverageDurationSeconds = roundedMean(stats.TotalLockTimeSeconds, stats.SessionCount)

	return stats
}

// RankSessions はセッションを継続時間でソートし、先頭limit件に1始まりの
// 表示ラベルを付けて返す。同値のセッション間の順序は入力順を維持する。
func RankSessions(sessions []*model.Session, order model.RankOrder, limit int) []model.RankedSession {
	sorted := make([]*model.Session, len(sessions))
	copy(sorted, sessions)

	sort.SliceStable(sorted, func(i, j int) bool {
		if order == model.RankShortest {
			return sorted[i].DurationSeconds < sorted[j].DurationSeconds
		}
		return sorted[i].DurationSeconds > sorted[j].DurationSeconds
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	ranked := make([]model.RankedSession, len(sorted))
	for i, s := range sorted {
		ranked[i] = model.RankedSession{
			ID:              s.ID,
			Label:           fmt.Sprintf("Session %d", i+1),
			DurationSeconds: s.DurationSeconds,
		}
	}

	return ranked
}

// ComputeTrend は期間内の全暦日について日次バケットを時系列順に計算する。
// 週は日曜始まりの7日間、月はアンカー日を含む暦月。
// セッションが0件の日も全て0の統計で必ず出現する（全域・網羅的）。
func ComputeTrend(sessions []*model.Session, period model.Period, anchor time.Time) []model.TrendData {
	start, end := periodRange(period, anchor)

	var trend []model.TrendData
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		bucket := model.TrendData{Label: day.Format(trendLabelLayout)}

		for _, s := range sessions {
			if sameDay(s.LockTime, day) {
				bucket.TotalSeconds += s.DurationSeconds
				bucket.SessionCount++
			}
		}

		bucket.AverageSeconds = roundedMean(bucket.TotalSeconds, bucket.SessionCount)
		trend = append(trend, bucket)
	}

	return trend
}

// ComputePeriodSummary はトレンド列を期間全体の要約統計に畳み込む。
// 0除算になるケースはすべて0に解決する。
func ComputePeriodSummary(trend []model.TrendData) model.PeriodSummary {
	summary := model.PeriodSummary{}

	for _, d := range trend {
		summary.TotalSeconds += d.TotalSeconds
		summary.TotalSessions += d.SessionCount
	}

	summary.AvgPerDay = roundedMean(summary.TotalSeconds, len(trend))
	summary.AvgSessionDuration = roundedMean(summary.TotalSeconds, summary.TotalSessions)

	return summary
}

// periodRange は期間種別とアンカー日から開始日・終了日（いずれも0時）を求める。
func periodRange(period model.Period, anchor time.Time) (time.Time, time.Time) {
	day := startOfDay(anchor)

	if period == model.PeriodMonth {
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end := start.AddDate(0, 1, -1)
		return start, end
	}

	// 週: 日曜始まり
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start, end
}

// sameDay は2つの時刻がdayのロケーションで同一暦日かを判定する。
func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// startOfDay は指定時刻の属する暦日の0時を返す。
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// roundedMean はtotal/countを最近接整数へ丸めて返す。countが0の場合は0。
func roundedMean(total, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}
