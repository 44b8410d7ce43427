package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lac-hong-legacy/learnhub/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "learnhub"
	DEFAULT_PROMETHEUS_PORT = 2112
)

// HTTP Metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active concurrent HTTP requests",
		},
		[]string{"method"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Progress Metrics
var (
	xpAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_xp_awarded_total",
			Help: "Total XP granted, by action kind",
		},
		[]string{"action"},
	)

	xpAwardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_xp_awards_total",
			Help: "Number of non-zero XP awards, by action kind",
		},
		[]string{"action"},
	)

	levelUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_level_ups_total",
			Help: "Number of awards that raised a user's level",
		},
	)

	lessonsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_lessons_completed_total",
			Help: "First-time lesson completions",
		},
	)

	coursesCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_courses_completed_total",
			Help: "Course completions",
		},
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_submissions_total",
			Help: "Judged practice submissions, by status",
		},
		[]string{"status"},
	)

	judgeDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "learnhub_judge_duration_seconds",
			Help:    "Round trip time to the execution service",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// MonitoringService serves Prometheus metrics on its own port. Recording
// methods are safe on a nil receiver so the service stays optional.
type MonitoringService struct {
	context.DefaultService

	port     int
	register *prometheus.Registry

	server *fiber.App
}

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *context.Context) error {
	port, err := strconv.Atoi(os.Getenv("PROMETHEUS_PORT"))
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	svc.register = NewMetricsRegistry()
	return svc.DefaultService.Configure(ctx)
}

// NewMetricsRegistry builds a registry holding runtime collectors and every learnhub metric.
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reg.MustRegister(
		httpRequestsTotal,
		httpRequestsActive,
		httpRequestDurationSeconds,
		xpAwardedTotal,
		xpAwardsTotal,
		levelUpsTotal,
		lessonsCompletedTotal,
		coursesCompletedTotal,
		submissionsTotal,
		judgeDurationSeconds,
	)
	return reg
}

func (svc *MonitoringService) Start() error {
	config := fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	}

	svc.server = fiber.New(config)
	svc.server.Use(recover.New())

	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

// RecordRequest records HTTP request metrics
func (svc *MonitoringService) RecordRequest(method, endpoint, status string, duration time.Duration) {
	if svc == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(endpoint, method, status).Observe(duration.Seconds())
}

func (svc *MonitoringService) RecordAward(action string, xp int, levelUp bool) {
	if svc == nil {
		return
	}
	xpAwardedTotal.WithLabelValues(action).Add(float64(xp))
	xpAwardsTotal.WithLabelValues(action).Inc()
	if levelUp {
		levelUpsTotal.Inc()
	}
}

func (svc *MonitoringService) RecordLessonCompleted(courseCompleted bool) {
	if svc == nil {
		return
	}
	lessonsCompletedTotal.Inc()
	if courseCompleted {
		coursesCompletedTotal.Inc()
	}
}

func (svc *MonitoringService) RecordSubmission(status string, judgeTime time.Duration) {
	if svc == nil {
		return
	}
	submissionsTotal.WithLabelValues(status).Inc()
	judgeDurationSeconds.Observe(judgeTime.Seconds())
}

// MonitoringMiddleware creates a Fiber middleware for monitoring HTTP requests
func MonitoringMiddleware(monitoringSvc *MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if monitoringSvc == nil {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()

		httpRequestsActive.WithLabelValues(method).Inc()
		defer httpRequestsActive.WithLabelValues(method).Dec()

		err := c.Next()

		// Route is resolved after Next so the pattern, not the raw path, is the label.
		endpoint := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else if appErr, ok := shared.GetAppError(err); ok {
				status = appErr.StatusCode
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		monitoringSvc.RecordRequest(method, endpoint, strconv.Itoa(status), time.Since(start))
		return err
	}
}
