package stats

import (
	"testing"
	"time"

	"github.com/hitoshi/lockstat/internal/model"
)

// sess はテスト用セッションを生成するヘルパー。
func sess(id string, lock time.Time, seconds int) *model.Session {
	return &model.Session{
		ID:              id,
		LockTime:        lock,
		UnlockTime:      lock.Add(time.Duration(seconds) * time.Second),
		DurationSeconds: seconds,
	}
}

// TestFilterByDay は暦日によるフィルタリングを検証する。
func TestFilterByDay(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	sessions := []*model.Session{
		sess("a", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 100),
		sess("b", time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC), 200),
		sess("c", time.Date(2024, 1, 14, 23, 59, 59, 0, time.UTC), 300),
		sess("d", time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), 400),
	}

	filtered := FilterByDay(sessions, day)

	if len(filtered) != 2 {
		t.Fatalf("filtered length = %d, want 2", len(filtered))
	}
	if filtered[0].ID != "a" || filtered[1].ID != "b" {
		t.Errorf("filtered IDs = %s,%s, want a,b", filtered[0].ID, filtered[1].ID)
	}
}

// TestFilterLastNDays はスライディングウィンドウのフィルタリングを検証する。
// カットオフと同時刻は含まれず、厳密に後のみ含まれる。
func TestFilterLastNDays(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	sessions := []*model.Session{
		sess("in-window", now.AddDate(0, 0, -3), 100),
		sess("at-cutoff", now.AddDate(0, 0, -7), 200),
		sess("too-old", now.AddDate(0, 0, -8), 300),
		sess("just-inside", now.AddDate(0, 0, -7).Add(time.Second), 400),
	}

	filtered := FilterLastNDays(sessions, now, 7)

	if len(filtered) != 2 {
		t.Fatalf("filtered length = %d, want 2", len(filtered))
	}
	if filtered[0].ID != "in-window" || filtered[1].ID != "just-inside" {
		t.Errorf("filtered IDs = %s,%s, want in-window,just-inside", filtered[0].ID, filtered[1].ID)
	}
}

// TestComputeDailyStats は日次要約統計の計算を検証する。
func TestComputeDailyStats(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	sessions := []*model.Session{
		sess("a", base, 300),
		sess("b", base.Add(time.Hour), 700),
		sess("c", base.Add(2*time.Hour), 100),
	}

	got := ComputeDailyStats("2024-01-15", sessions)

	if got.Date != "2024-01-15" {
		t.Errorf("Date = %q, want 2024-01-15", got.Date)
	}
	if got.TotalLockTimeSeconds != 1100 {
		t.Errorf("TotalLockTimeSeconds = %d, want 1100", got.TotalLockTimeSeconds)
	}
	// 1100/3 = 366.67 → 最近接整数へ丸めて367
	if got.AverageDurationSeconds != 367 {
		t.Errorf("AverageDurationSeconds = %d, want 367", got.AverageDurationSeconds)
	}
	if got.SessionCount != 3 {
		t.Errorf("SessionCount = %d, want 3", got.SessionCount)
	}
	if got.LongestSessionSeconds != 700 {
		t.Errorf("LongestSessionSeconds = %d, want 700", got.LongestSessionSeconds)
	}
}

// TestComputeDailyStats_Empty は空集合で全て0が返ることを検証する。
func TestComputeDailyStats_Empty(t *testing.T) {
	got := ComputeDailyStats("2024-01-15", nil)

	if got.TotalLockTimeSeconds != 0 || got.AverageDurationSeconds != 0 ||
		got.SessionCount != 0 || got.LongestSessionSeconds != 0 {
		t.Errorf("got = %+v, want all zero", got)
	}
}

// TestRankSessions はランキングのソート・切り詰め・ラベル付けを検証する。
func TestRankSessions(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	sessions := []*model.Session{
		sess("short", base, 60),
		sess("long", base.Add(time.Hour), 3600),
		sess("mid", base.Add(2*time.Hour), 600),
	}

	t.Run("longest", func(t *testing.T) {
		ranked := RankSessions(sessions, model.RankLongest, 10)

		if len(ranked) != 3 {
			t.Fatalf("ranked length = %d, want 3", len(ranked))
		}
		if ranked[0].ID != "long" || ranked[1].ID != "mid" || ranked[2].ID != "short" {
			t.Errorf("order = %s,%s,%s, want long,mid,short", ranked[0].ID, ranked[1].ID, ranked[2].ID)
		}
		if ranked[0].Label != "Session 1" || ranked[2].Label != "Session 3" {
			t.Errorf("labels = %q,%q, want Session 1, Session 3", ranked[0].Label, ranked[2].Label)
		}
	})

	t.Run("shortest", func(t *testing.T) {
		ranked := RankSessions(sessions, model.RankShortest, 10)

		if ranked[0].ID != "short" || ranked[2].ID != "long" {
			t.Errorf("order = %s,...,%s, want short,...,long", ranked[0].ID, ranked[2].ID)
		}
		// ラベルは順位であってIDではないため、昇順でもSession 1から始まる
		if ranked[0].Label != "Session 1" {
			t.Errorf("first label = %q, want Session 1", ranked[0].Label)
		}
	})

	t.Run("limit", func(t *testing.T) {
		ranked := RankSessions(sessions, model.RankLongest, 2)

		if len(ranked) != 2 {
			t.Fatalf("ranked length = %d, want 2", len(ranked))
		}
	})

	t.Run("入力順は変更しない", func(t *testing.T) {
		RankSessions(sessions, model.RankLongest, 10)

		if sessions[0].ID != "short" {
			t.Error("input slice must not be reordered")
		}
	})
}

// TestRankSessions_StableTies は同値のセッションが入力順を維持することを検証する。
func TestRankSessions_StableTies(t *testing.T) {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	sessions := []*model.Session{
		sess("first", base, 300),
		sess("second", base.Add(time.Hour), 300),
	}

	ranked := RankSessions(sessions, model.RankLongest, 10)

	if ranked[0].ID != "first" || ranked[1].ID != "second" {
		t.Errorf("tie order = %s,%s, want first,second", ranked[0].ID, ranked[1].ID)
	}
}

// TestComputeTrend_Week は週次トレンドが日曜始まりの7日間を網羅することを検証する。
func TestComputeTrend_Week(t *testing.T) {
	// 2024-01-17は水曜。週は2024-01-14（日）〜2024-01-20（土）。
	anchor := time.Date(2024, 1, 17, 15, 30, 0, 0, time.UTC)

	sessions := []*model.Session{
		sess("a", time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC), 600),
		sess("b", time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC), 1200),
		sess("c", time.Date(2024, 1, 17, 20, 0, 0, 0, time.UTC), 300),
		sess("out", time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), 9999),
	}

	trend := ComputeTrend(sessions, model.PeriodWeek, anchor)

	if len(trend) != 7 {
		t.Fatalf("trend length = %d, want 7", len(trend))
	}
	if trend[0].Label != "Jan 14" {
		t.Errorf("first label = %q, want Jan 14", trend[0].Label)
	}
	if trend[6].Label != "Jan 20" {
		t.Errorf("last label = %q, want Jan 20", trend[6].Label)
	}

	// 水曜（index 3）には2セッション
	if trend[3].SessionCount != 2 || trend[3].TotalSeconds != 1500 {
		t.Errorf("Wednesday bucket = %+v, want 2 sessions / 1500s", trend[3])
	}
	if trend[3].AverageSeconds != 750 {
		t.Errorf("Wednesday average = %d, want 750", trend[3].AverageSeconds)
	}

	// セッションの無い日も0で必ず出現する
	if trend[1].SessionCount != 0 || trend[1].TotalSeconds != 0 || trend[1].AverageSeconds != 0 {
		t.Errorf("empty day bucket = %+v, want all zero", trend[1])
	}
}

// TestComputeTrend_Month は月次トレンドが暦月全体を網羅することを検証する。
func TestComputeTrend_Month(t *testing.T) {
	anchor := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	trend := ComputeTrend(nil, model.PeriodMonth, anchor)

	// 2024年2月はうるう年で29日
	if len(trend) != 29 {
		t.Fatalf("trend length = %d, want 29", len(trend))
	}
	if trend[0].Label != "Feb 01" {
		t.Errorf("first label = %q, want Feb 01", trend[0].Label)
	}
	if trend[28].Label != "Feb 29" {
		t.Errorf("last label = %q, want Feb 29", trend[28].Label)
	}
}

// TestComputePeriodSummary は期間要約の畳み込みを検証する。
func TestComputePeriodSummary(t *testing.T) {
	trend := []model.TrendData{
		{Label: "Jan 14", TotalSeconds: 600, SessionCount: 1},
		{Label: "Jan 15", TotalSeconds: 0, SessionCount: 0},
		{Label: "Jan 16", TotalSeconds: 1500, SessionCount: 2},
	}

	got := ComputePeriodSummary(trend)

	if got.TotalSeconds != 2100 {
		t.Errorf("TotalSeconds = %d, want 2100", got.TotalSeconds)
	}
	if got.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", got.TotalSessions)
	}
	if got.AvgPerDay != 700 {
		t.Errorf("AvgPerDay = %d, want 700", got.AvgPerDay)
	}
	if got.AvgSessionDuration != 700 {
		t.Errorf("AvgSessionDuration = %d, want 700", got.AvgSessionDuration)
	}
}

// TestComputePeriodSummary_Empty は空のトレンド列で0除算にならないことを検証する。
func TestComputePeriodSummary_Empty(t *testing.T) {
	got := ComputePeriodSummary(nil)

	if got.TotalSeconds != 0 || got.TotalSessions != 0 || got.AvgPerDay != 0 || got.AvgSessionDuration != 0 {
		t.Errorf("got = %+v, want all zero", got)
	}
}
