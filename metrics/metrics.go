// Package metrics exposes Prometheus counters for the ingestion pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_fetches_total",
		Help: "Page fetch attempts by outcome.",
	}, []string{"outcome"}) // ok, blocked, error

	CandidatesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_candidates_extracted_total",
		Help: "Candidate listings extracted from source pages.",
	}, []string{"source"})

	CardFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_card_failures_total",
		Help: "Listing cards dropped because extraction failed.",
	}, []string{"source"})

	RecordsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_records_stored_total",
		Help: "Ingested listing records created, by initial status.",
	}, []string{"status"})
)

// Serve exposes /metrics on the given address. It blocks, so callers run it
// in its own goroutine; an empty address disables the listener.
func Serve(addr string) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics listener stopped")
	}
}
