package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type metrics struct {
	lastRunTimestamp prometheus.Gauge
	lastRunSuccess   prometheus.Gauge
	runDuration      prometheus.Gauge
	failedStepsTotal *prometheus.CounterVec
	changesTotal     changeCounter
}

func newMetrics() *metrics {
	return &metrics{
		lastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "aws_network",
				Subsystem: "provisioner",
				Name:      "last_run_timestamp_seconds",
				Help:      "Timestamp of the last finished provisioning run",
			},
		),
		lastRunSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "aws_network",
				Subsystem: "provisioner",
				Name:      "last_run_success",
				Help:      "Whether the last provisioning run completed every step",
			},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "aws_network",
				Subsystem: "provisioner",
				Name:      "last_run_duration_seconds",
				Help:      "Duration of the last provisioning run",
			},
		),
		failedStepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aws_network",
				Subsystem: "provisioner",
				Name:      "failed_steps_total",
				Help:      "Number of provisioning steps that failed",
			},
			[]string{"resource_type"},
		),
		changesTotal: changeCounter{prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aws_network",
				Subsystem: "provisioner",
				Name:      "changes_total",
				Help:      "Number of AWS resources created, updated or deleted",
			},
			[]string{"resource_type", "operation"},
		)},
	}
}

type changeCounter struct {
	*prometheus.CounterVec
}

func (c changeCounter) created(resourceType string) {
	c.WithLabelValues(resourceType, "create").Inc()
}

func (c changeCounter) updated(resourceType string) {
	c.WithLabelValues(resourceType, "update").Inc()
}

func (c changeCounter) deleted(resourceType string) {
	c.WithLabelValues(resourceType, "delete").Inc()
}

func (metrics *metrics) failed(resourceType string) {
	metrics.failedStepsTotal.WithLabelValues(resourceType).Inc()
}

func (metrics *metrics) runFinished(start time.Time, err error) {
	now := time.Now()
	metrics.lastRunTimestamp.Set(float64(now.Unix()))
	metrics.runDuration.Set(now.Sub(start).Seconds())
	if err != nil {
		metrics.lastRunSuccess.Set(0)
	} else {
		metrics.lastRunSuccess.Set(1)
	}
}

func (metrics *metrics) serve(address string) {
	prometheus.MustRegister(metrics.lastRunTimestamp)
	prometheus.MustRegister(metrics.lastRunSuccess)
	prometheus.MustRegister(metrics.runDuration)
	prometheus.MustRegister(metrics.failedStepsTotal)
	prometheus.MustRegister(metrics.changesTotal)

	http.Handle("/metrics", promhttp.Handler())
	log.Fatal(http.ListenAndServe(address, nil))
}
