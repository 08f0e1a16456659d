package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/clv/internal/api"
	"github.com/wonny/clv/internal/api/handlers"
	"github.com/wonny/clv/internal/s3_model"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다. 리포트 요청마다 파이프라인을 새로 실행합니다.
거래 로그는 프로세스 단위로 캐시되며 /api/source/reload 로만 다시 읽습니다.

Endpoints:
  GET  /health               - Health check
  GET  /api/report           - 전체 리포트 (format=json|yaml)
  GET  /api/customers/top    - CLV 상위 고객 (n=10)
  POST /api/source/reload    - 거래 로그 캐시 초기화

Example:
  go run ./cmd/clv serve
  go run ./cmd/clv serve --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	apiGridStep int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (overrides PORT)")
	serveCmd.Flags().IntVar(&apiGridStep, "grid-step", s3_model.DefaultGridStep, "matrix sampling step (frequency, recency days)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== CLV API Server ===")

	d, err := setup(cmd.Context(), apiGridStep)
	if err != nil {
		return err
	}
	defer d.close()

	// Override port if flag is set
	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	d.log.WithFields(map[string]interface{}{
		"port":   d.cfg.Port,
		"env":    d.cfg.Env,
		"source": d.loader.SourceName(),
	}).Info("Initializing API server")

	// Handler, router, server
	reportHandler := handlers.NewReportHandler(d.orchestrator, d.loader, d.log)
	router := api.NewRouter(reportHandler, d.cfg.API, d.log)
	server := api.New(d.cfg, d.log, router)

	// Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log := d.log
	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	PrintList([]string{
		"GET  /health",
		"GET  /api/report",
		"GET  /api/customers/top?n=10",
		"POST /api/source/reload",
	})
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
