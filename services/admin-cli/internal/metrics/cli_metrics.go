package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/metrics"
)

// Outcome итог выполнения команды
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeDeclined Outcome = "declined"
)

// CLIMetrics метрики команд поверх метрик клиента
type CLIMetrics struct {
	*metrics.Metrics

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	logger          logger.Logger
}

// NewCLIMetrics регистрирует метрики команд в реестре m
func NewCLIMetrics(m *metrics.Metrics, namespace string, log logger.Logger) *CLIMetrics {
	if log == nil {
		log = logger.NewNop()
	}

	commands := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cli",
			Name:      "commands_total",
			Help:      "Total number of executed CLI commands",
		},
		[]string{"command", "outcome"},
	)
	commandDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cli",
			Name:      "command_duration_seconds",
			Help:      "Duration of CLI commands in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	m.Registry().MustRegister(commands, commandDuration)

	return &CLIMetrics{
		Metrics:         m,
		commands:        commands,
		commandDuration: commandDuration,
		logger:          log,
	}
}

// CommandExecuted регистрирует выполнение команды
func (c *CLIMetrics) CommandExecuted(command string, outcome Outcome, duration time.Duration) {
	c.logger.Debug("команда выполнена",
		logger.String("command", command),
		logger.String("outcome", string(outcome)),
		logger.Duration("duration", duration))

	c.commands.WithLabelValues(command, string(outcome)).Inc()
	c.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}
