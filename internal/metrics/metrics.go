// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する。
type Collector struct {
	sessionsCreated prometheus.Counter
	sessionsDeleted prometheus.Counter
	importSuccess   prometheus.Counter
	importFail      prometheus.Counter
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockstat_sessions_created_total",
			Help: "作成されたセッションの合計数",
		}),
		sessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockstat_sessions_deleted_total",
			Help: "削除されたセッションの合計数",
		}),
		importSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockstat_import_success_total",
			Help: "インポート成功レコードの合計数",
		}),
		importFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockstat_import_fail_total",
			Help: "インポート失敗レコードの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lockstat_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lockstat_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.sessionsCreated,
		c.sessionsDeleted,
		c.importSuccess,
		c.importFail,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordSessionCreated はセッション作成を記録する。
func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

// RecordSessionsDeleted はセッション削除数を記録する。
func (c *Collector) RecordSessionsDeleted(count int) {
	c.sessionsDeleted.Add(float64(count))
}

// RecordImportResult はバルクインポートの成功・失敗レコード数を記録する。
func (c *Collector) RecordImportResult(success, failed int) {
	c.importSuccess.Add(float64(success))
	c.importFail.Add(float64(failed))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
