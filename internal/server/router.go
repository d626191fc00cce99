// Package server exposes the analysis engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"apexrun/internal/service"
)

// NewRouter wires the API routes
func NewRouter(q *service.QueryService, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger), CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "apexrun API is running",
		})
	})

	sessions := NewSessionHandler(q)
	reports := NewReportHandler(q)
	analyze := NewAnalyzeHandler(q.Athlete())

	api := r.Group("/api/v1")
	{
		api.GET("/sessions", sessions.List)
		api.GET("/sessions/:id", sessions.Get)

		api.GET("/report", reports.Report)
		api.GET("/windows", reports.Windows)
		api.GET("/insights", reports.Insights)
		api.GET("/predictions", reports.Predictions)
		api.GET("/records", reports.Records)
		api.GET("/comparisons", reports.Comparisons)
		api.GET("/context", reports.Context)

		api.POST("/analyze", analyze.Analyze)
	}
	return r
}

// Run serves the API on addr until ctx is canceled
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving API", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info("API stopped")
	return nil
}
