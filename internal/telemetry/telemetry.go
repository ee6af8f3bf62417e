// Package telemetry is the cross-cutting metrics sink every other
// component writes into. Styled after the teacher's zk/metrics package:
// module-level prometheus collector variables plus an Init() that
// registers them, here wrapped in a Recorder so call sites pass an
// explicit handle rather than reaching for package globals.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ledgerwatch/log/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var rpcLatencyBuckets = []float64{0.025, 0.05, 0.075, 0.1, 0.15, 0.2, 0.3, 0.5, 1.0, 5.0, 10.0}

// Recorder owns the named counters/gauges/histograms from spec §6.
type Recorder struct {
	registry *prometheus.Registry

	blocksProcessed      prometheus.Counter
	latestProcessedBlock prometheus.Gauge
	latestBlockProcessing prometheus.Gauge
	chainTipBlock        prometheus.Gauge
	chainTipLag          prometheus.Gauge

	rpcRequests prometheus.CounterVec
	rpcErrors   prometheus.CounterVec
	rpcLatency  prometheus.HistogramVec

	channelCapacity prometheus.GaugeVec

	bigqueryBatchSize      prometheus.HistogramVec
	bigqueryInsertLatency  prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		blocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blocks_processed", Help: "Total blocks processed.",
		}),
		latestProcessedBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "latest_processed_block", Help: "Most recent block number processed.",
		}),
		latestBlockProcessing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "latest_block_processing", Help: "Seconds spent processing the most recent block.",
		}),
		chainTipBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chain_tip_block", Help: "Latest block number reported by the chain.",
		}),
		chainTipLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chain_tip_lag", Help: "Blocks between the cursor and the chain tip.",
		}),
		rpcRequests: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rpc_requests", Help: "RPC calls issued, by method.",
		}, []string{"method"}),
		rpcErrors: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rpc_errors", Help: "RPC calls that failed, by method.",
		}, []string{"method"}),
		rpcLatency: *prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "rpc_latency", Help: "RPC call latency in seconds, by method.", Buckets: rpcLatencyBuckets,
		}, []string{"method"}),
		channelCapacity: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "channel_capacity", Help: "Available slots remaining, by sink channel.",
		}, []string{"channel"}),
		bigqueryBatchSize: *prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "bigquery_batch_size", Help: "Rows per InsertRows call, by table.",
		}, []string{"table"}),
		bigqueryInsertLatency: *prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "bigquery_insert_latency", Help: "InsertRows latency in seconds, by table.",
		}, []string{"table"}),
	}

	r.registry.MustRegister(
		r.blocksProcessed, r.latestProcessedBlock, r.latestBlockProcessing,
		r.chainTipBlock, r.chainTipLag,
		&r.rpcRequests, &r.rpcErrors, &r.rpcLatency,
		&r.channelCapacity,
		&r.bigqueryBatchSize, &r.bigqueryInsertLatency,
	)
	return r
}

// ObserveRPC records one request/latency/error sample for method, as
// required of every RPC Facade operation (spec §4.2). Safe to call on a
// nil Recorder (no-op) so tests can skip telemetry wiring.
func (r *Recorder) ObserveRPC(method string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.rpcRequests.WithLabelValues(method).Inc()
	r.rpcLatency.WithLabelValues(method).Observe(d.Seconds())
	if err != nil {
		r.rpcErrors.WithLabelValues(method).Inc()
	}
}

func (r *Recorder) ObserveBlockProcessed(blockNumber uint64, d time.Duration) {
	if r == nil {
		return
	}
	r.blocksProcessed.Inc()
	r.latestProcessedBlock.Set(float64(blockNumber))
	r.latestBlockProcessing.Set(d.Seconds())
}

func (r *Recorder) ObserveChainTip(latest, cursor uint64) {
	if r == nil {
		return
	}
	r.chainTipBlock.Set(float64(latest))
	if latest >= cursor {
		r.chainTipLag.Set(float64(latest - cursor))
	} else {
		r.chainTipLag.Set(0)
	}
}

func (r *Recorder) SetChannelCapacity(channel string, available int) {
	if r == nil {
		return
	}
	r.channelCapacity.WithLabelValues(channel).Set(float64(available))
}

func (r *Recorder) ObserveInsert(table string, rows int, d time.Duration) {
	if r == nil {
		return
	}
	r.bigqueryBatchSize.WithLabelValues(table).Observe(float64(rows))
	r.bigqueryInsertLatency.WithLabelValues(table).Observe(d.Seconds())
}

// Server exposes the registry over HTTP /metrics.
type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, r *Recorder) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

func (s *Server) Start() {
	go func() {
		log.Info(fmt.Sprintf("[telemetry] serving /metrics on %s", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("[telemetry] metrics server stopped", "err", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
