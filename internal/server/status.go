package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"
)

// healthHandler reports operational status: database pool health plus host
// CPU, memory and disk metrics. The probes are independent, so they run
// concurrently and the slowest one bounds the response time.
func (s *Server) healthHandler(c echo.Context) error {
	var (
		dbStats    map[string]string
		vmem       *mem.VirtualMemoryStat
		cpuPercent []float64
		diskUsage  *disk.UsageStat
	)

	g, _ := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		dbStats = s.db.Health()
		return nil
	})
	g.Go(func() error {
		var err error
		vmem, err = mem.VirtualMemory()
		return err
	})
	g.Go(func() error {
		var err error
		cpuPercent, err = cpu.Percent(0, false)
		return err
	})
	g.Go(func() error {
		var err error
		diskUsage, err = disk.Usage("/")
		return err
	})

	// Metrics are best effort; a probe failure degrades the report rather
	// than failing the endpoint.
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("system metrics collection incomplete")
	}

	body := map[string]interface{}{
		"status":   "online",
		"uptime":   time.Since(StartTime).String(),
		"database": dbStats,
	}
	if vmem != nil {
		body["memory"] = map[string]interface{}{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(vmem.Total)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", vmem.UsedPercent),
		}
	}
	if len(cpuPercent) > 0 {
		body["cpu"] = map[string]interface{}{
			"usage_percent": fmt.Sprintf("%.2f%%", cpuPercent[0]),
		}
	}
	if diskUsage != nil {
		body["disk"] = map[string]interface{}{
			"total_gb":     fmt.Sprintf("%.2f GB", float64(diskUsage.Total)/1024/1024/1024),
			"used_percent": fmt.Sprintf("%.2f%%", diskUsage.UsedPercent),
		}
	}

	return c.JSON(http.StatusOK, body)
}
