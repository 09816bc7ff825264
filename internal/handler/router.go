package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/lockstat/internal/metrics"
	"github.com/hitoshi/lockstat/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// MetricsRecorder はルーター全体で使用する計測インターフェースをまとめたもの。
// *metrics.Collectorが満たす。nil許容。
type MetricsRecorder interface {
	middleware.HTTPMetricsRecorder
	ImportMetricsRecorder
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス
	Metrics  MetricsRecorder
	Gatherer prometheus.Gatherer

	// セッション・統計
	SessionService   SessionServiceInterface
	Location         *time.Location
	MaxImportRecords int
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → LoggingMiddleware → RateLimitMiddleware
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))

	sessionHandler := NewSessionHandler(deps.SessionService, deps.Metrics, deps.MaxImportRecords)
	statsHandler := NewStatsHandler(deps.SessionService, deps.Location)

	// --- レート制限の外のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)、インポートのみ専用制限を追加
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// セッション管理
		r.Route("/api/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.ListSessions)
			r.Post("/", sessionHandler.CreateSession)
			r.Delete("/", sessionHandler.DeleteSessions)
			r.Get("/export", sessionHandler.ExportSessions)

			// POST /api/sessions/import - バルクインポート（専用レート制限を追加）
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.ImportMiddleware()).Post("/import", sessionHandler.ImportSessions)
			} else {
				r.Post("/import", sessionHandler.ImportSessions)
			}
		})

		// 集計統計
		r.Route("/api/stats", func(r chi.Router) {
			r.Get("/daily", statsHandler.GetDailyStats)
			r.Get("/rankings", statsHandler.GetRankings)
			r.Get("/trend", statsHandler.GetTrend)
		})
	})

	return r
}

// newHealthHandler はストアへの疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			if err := checker.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
