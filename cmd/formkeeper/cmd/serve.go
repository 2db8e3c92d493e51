package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/core/httpapi"
	"github.com/solatis/formkeeper/internal/core/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and, when configured, the gRPC validation service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "127.0.0.1", "listen host")
	serveCmd.Flags().Int("port", 3000, "HTTP port")
	serveCmd.Flags().Int("grpc-port", 0, "gRPC port (0 disables gRPC)")
	serveCmd.Flags().Bool("migrate", false, "apply pending migrations before starting")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		_, log, database, err := openDB(ctx, cmd)
		if err != nil {
			return err
		}
		err = db.MigrateUp(ctx, database)
		database.Close()
		log.Sync()
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	if cmd.Flags().Changed("host") {
		cfg.HTTPHost, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.HTTPPort, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("grpc-port") {
		cfg.GRPCPort, _ = cmd.Flags().GetInt("grpc-port")
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler, err := httpapi.NewHandler(a.svc, a.log, cfg.MaxBodyBytes)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}
	httpServer, err := server.NewHTTPServer(cfg.HTTPAddr(), handler.Router(), cfg.ReadTimeout)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}
	servers := []server.Lifecycle{httpServer}

	if addr := cfg.GRPCAddr(); addr != "" {
		grpcServer, err := server.NewGRPCServer(addr, a.svc, a.log)
		if err != nil {
			return fmt.Errorf("failed to create grpc server: %w", err)
		}
		servers = append(servers, grpcServer)
	}

	a.log.Info("starting formkeeper",
		zap.String("version", Version),
		zap.String("http_addr", cfg.HTTPAddr()),
		zap.String("grpc_addr", cfg.GRPCAddr()),
		zap.Bool("cache", a.cache != nil))

	return server.Run(ctx, a.log, servers...)
}
