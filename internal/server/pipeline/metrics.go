package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeStored = "stored"
	outcomeZipped = "zipped"
	outcomeFailed = "failed"
)

var (
	outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instashare_pipeline_outcomes_total",
		Help: "Pipeline step outcomes by kind.",
	}, []string{"outcome"})

	storeRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "instashare_store_retries_total",
		Help: "Store attempts that failed and were retried.",
	})
)
