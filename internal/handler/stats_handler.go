package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/lockstat/internal/model"
	"github.com/hitoshi/lockstat/internal/stats"
)

// dateLayout は日付クエリパラメータの形式。
const dateLayout = "2006-01-02"

// lastSevenDays はスライディングウィンドウ指定の予約値。
const lastSevenDays = "last-7-days"

// SessionListerInterface は統計ハンドラーが必要とする読み取りインターフェース。
type SessionListerInterface interface {
	// List は全セッションをロック時刻の降順で取得する。
	List(ctx context.Context) ([]*model.Session, error)
}

// StatsHandler は集計統計のHTTPハンドラー。
// ストアのスナップショットを1回取得し、集計はすべてstatsパッケージの純粋関数で行う。
type StatsHandler struct {
	lister SessionListerInterface
	loc    *time.Location
	now    func() time.Time
}

// NewStatsHandler はStatsHandlerを生成する。
// locは暦日判定に使用するタイムゾーン。nilの場合はローカルタイム。
func NewStatsHandler(lister SessionListerInterface, loc *time.Location) *StatsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &StatsHandler{
		lister: lister,
		loc:    loc,
		now:    time.Now,
	}
}

// trendResponse はトレンドAPIのレスポンス。
type trendResponse struct {
	Trend   []model.TrendData   `json:"trend"`
	Summary model.PeriodSummary `json:"summary"`
}

// GetDailyStats は指定日またはスライディングウィンドウの要約統計を返す。
// GET /api/stats/daily?date=YYYY-MM-DD|last-7-days（省略時は当日）
func (h *StatsHandler) GetDailyStats(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.lister.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	label, filtered, err := h.filterByDateParam(sessions, r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	daily := stats.ComputeDailyStats(label, filtered)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(daily)
}

// GetRankings は継続時間順のセッションランキングを返す。
// GET /api/stats/rankings?date=...&order=longest|shortest&limit=10
func (h *StatsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	order := model.RankOrder(r.URL.Query().Get("order"))
	if order == "" {
		order = model.RankLongest
	}
	if order != model.RankLongest && order != model.RankShortest {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     model.ErrCodeInvalidRequest,
			Message:  fmt.Sprintf("無効なソート順です: %q", order),
			Category: "validation",
			Action:   "orderにはlongestまたはshortestを指定してください。",
		})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	sessions, err := h.lister.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	_, filtered, err := h.filterByDateParam(sessions, r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	ranked := stats.RankSessions(filtered, order, limit)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ranked)
}

// GetTrend は週次または月次のトレンド列と期間要約を返す。
// GET /api/stats/trend?period=week|month&date=YYYY-MM-DD（省略時は当日を含む期間）
func (h *StatsHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	period := model.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = model.PeriodWeek
	}
	if period != model.PeriodWeek && period != model.PeriodMonth {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidPeriodError(string(period)))
		return
	}

	anchor := h.now().In(h.loc)
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation(dateLayout, v, h.loc)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDateError(v))
			return
		}
		anchor = parsed
	}

	sessions, err := h.lister.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	trend := stats.ComputeTrend(sessions, period, anchor)
	summary := stats.ComputePeriodSummary(trend)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trendResponse{Trend: trend, Summary: summary})
}

// filterByDateParam はdateクエリパラメータに従ってセッションを絞り込む。
// 空の場合は当日、last-7-daysの場合は現在時刻から7日間のスライディングウィンドウ、
// それ以外はYYYY-MM-DD形式の暦日として解釈する。
func (h *StatsHandler) filterByDateParam(sessions []*model.Session, date string) (string, []*model.Session, error) {
	if date == lastSevenDays {
		return lastSevenDays, stats.FilterLastNDays(sessions, h.now(), 7), nil
	}

	day := h.now().In(h.loc)
	label := day.Format(dateLayout)

	if date != "" {
		parsed, err := time.ParseInLocation(dateLayout, date, h.loc)
		if err != nil {
			return "", nil, model.NewInvalidDateError(date)
		}
		day = parsed
		label = date
	}

	return label, stats.FilterByDay(sessions, startOfDayIn(day, h.loc)), nil
}

// startOfDayIn は指定ロケーションにおけるその日の0時を返す。
func startOfDayIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
