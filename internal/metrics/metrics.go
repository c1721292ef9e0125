// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// ミドルウェアとドメインサービスは必要なメソッドだけを
// インターフェース経由で受け取る。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
	rateLimited     prometheus.Counter
	dogsRegistered  prometheus.Counter
	dogsAdopted     prometheus.Counter
	dogsRemoved     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doghouse_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "doghouse_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "doghouse_rate_limited_total",
			Help: "クールダウンでブロックされたリクエストの合計数",
		}),
		dogsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "doghouse_dogs_registered_total",
			Help: "登録された犬の合計数",
		}),
		dogsAdopted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "doghouse_dogs_adopted_total",
			Help: "譲渡が成立した犬の合計数",
		}),
		dogsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "doghouse_dogs_removed_total",
			Help: "削除された犬の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.rateLimited,
		c.dogsRegistered,
		c.dogsAdopted,
		c.dogsRemoved,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// RecordRateLimited はクールダウンによるブロックを記録する。
func (c *Collector) RecordRateLimited(userID string) {
	c.rateLimited.Inc()
}

// RecordDogRegistered は犬の登録を記録する。
func (c *Collector) RecordDogRegistered() {
	c.dogsRegistered.Inc()
}

// RecordDogAdopted は譲渡の成立を記録する。
func (c *Collector) RecordDogAdopted() {
	c.dogsAdopted.Inc()
}

// RecordDogRemoved は犬レコードの削除を記録する。
func (c *Collector) RecordDogRemoved() {
	c.dogsRemoved.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
