package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nullforge/warden/internal/logger"
	"github.com/nullforge/warden/internal/metrics"
	"github.com/nullforge/warden/internal/registry"
	"github.com/nullforge/warden/internal/sweep"
)

// backgroundSweepInterval paces the serve process's own reconciliation
// passes — independent of each warden invocation's startup sweep
// (§4.6), since warden-admin serve is the one long-lived process that
// can usefully report sweep outcomes as a running counter.
const backgroundSweepInterval = 5 * time.Minute

func runBackgroundSweeps(reg registry.Registry) {
	ticker := time.NewTicker(backgroundSweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		removals, err := sweep.Run(context.Background(), reg, time.Now().UTC())
		if err != nil {
			logger.Warn("warden-admin: background sweep failed", "error", err)
			continue
		}
		for _, r := range removals {
			metrics.IncSweepReclaim(string(r.Reason))
		}
	}
}

// statusEntry is the JSON-facing projection of a registry.Entry served
// by GET /status.
type statusEntry struct {
	PID        int    `json:"pid"`
	StartedAt  string `json:"started_at"`
	LogID      string `json:"log_id"`
	LogPath    string `json:"log_path"`
	ManagerPID int    `json:"manager_pid"`
}

func runServer(addr string, reg registry.Registry) error {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	go runBackgroundSweeps(reg)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/status", func(c *gin.Context) {
		entries, err := reg.Snapshot(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		metrics.SetRegistrySize(len(entries))

		out := make([]statusEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, statusEntry{
				PID:        e.PID,
				StartedAt:  e.Record.StartedAt.Format("2006-01-02T15:04:05Z"),
				LogID:      e.Record.LogID,
				LogPath:    e.Record.LogPath,
				ManagerPID: e.Record.ManagerPID,
			})
		}
		c.JSON(http.StatusOK, gin.H{"runs": out})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router.Run(addr)
}
