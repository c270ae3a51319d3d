package handlers

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/process"
)

// HealthHandler reports liveness plus the process's own resource usage.
type HealthHandler struct {
	log     *slog.Logger
	started time.Time
}

func NewHealthHandler(log *slog.Logger) *HealthHandler {
	return &HealthHandler{log: log, started: time.Now().UTC()}
}

func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		h.log.Error("Failed to inspect own process", "err", err)
		return fiber.ErrInternalServerError
	}

	memInfo, err := p.MemoryInfo()
	if err != nil {
		h.log.Error("Failed to collect memory info", "err", err)
		return fiber.ErrInternalServerError
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		h.log.Error("Failed to collect cpu usage", "err", err)
		return fiber.ErrInternalServerError
	}

	status, err := p.Status()
	if err != nil {
		h.log.Error("Failed to collect process status", "err", err)
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"status":         "ok",
		"pid":            os.Getpid(),
		"pid_status":     status,
		"cpu_percent":    cpuPercent,
		"ram_bytes":      memInfo.RSS,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
