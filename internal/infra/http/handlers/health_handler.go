package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/xavierca1/crm-followup/internal/infra/scheduler"
)

const (
	SystemName    = "MVP CRM & Automation"
	SystemVersion = "1.0.0"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type ConnectionChecker interface {
	IsClosed() bool
}

type SchedulerStatusProvider interface {
	Status() scheduler.Status
}

type HealthHandler struct {
	DB        Pinger
	RabbitMQ  ConnectionChecker
	Scheduler SchedulerStatusProvider
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	System       string            `json:"system"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Scheduler    scheduler.State   `json:"scheduler"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db Pinger, rabbitMQ ConnectionChecker, sched SchedulerStatusProvider) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Scheduler: sched,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)
	healthy := true

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
			healthy = false
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	// RabbitMQ é opcional: sem conexão o serviço continua atendendo.
	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	response := HealthResponse{
		Status:       "online",
		System:       SystemName,
		Version:      SystemVersion,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Scheduler:    scheduler.StateNotInitialized,
		Dependencies: deps,
	}
	if h.Scheduler != nil {
		response.Scheduler = h.Scheduler.Status().Status
	}

	status := http.StatusOK
	if !healthy {
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}
