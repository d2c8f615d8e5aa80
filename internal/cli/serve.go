package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/estateflow-backend/internal/adapter/grpc"
	"github.com/simaogato/estateflow-backend/internal/adapter/rest"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(configFile func() string) *cobra.Command {
	var seedDemo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC and HTTP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx, configFile())
			if err != nil {
				return err
			}
			defer app.Close()

			// The schema and the standard catalog are ensured on every start
			if err := app.DB.Migrate(ctx); err != nil {
				return err
			}
			created, err := app.Seeder.Seed(ctx)
			if err != nil {
				return err
			}
			app.Logger.Info("discount catalog seeded", "created", created)

			if seedDemo {
				if err := app.Seeder.SeedDemo(ctx, app.Schedule.Today()); err != nil {
					return err
				}
			}

			return serve(app)
		},
	}
	cmd.Flags().BoolVar(&seedDemo, "seed-demo", false, "Create the demo site plan and product when missing")

	return cmd
}

func serve(app *App) error {
	cfg := app.Config

	grpcServer := grpclib.NewServer(grpclib.ChainUnaryInterceptor(
		grpcadapter.MetricsInterceptor(app.Metrics),
		grpcadapter.LoggingInterceptor(app.Logger.New("transport", "grpc")),
		grpcadapter.AuthInterceptor(cfg.APIToken),
	))
	grpcadapter.RegisterSalesConfigServiceServer(grpcServer, grpcadapter.NewServer(app.Pricing, app.Schedule))
	reflection.Register(grpcServer)

	if !cfg.LogDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: rest.NewRouter(&rest.Handler{
			PricingService:  app.Pricing,
			ScheduleService: app.Schedule,
			APIToken:        cfg.APIToken,
			Logger:          app.Logger.New("transport", "http"),
			Metrics:         app.Metrics,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		app.Logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		app.Logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	var serveErr error
	select {
	case sig := <-sigChan:
		app.Logger.Info("shutting down gracefully", "signal", sig.String())
	case serveErr = <-errCh:
		app.Logger.Error("server failed, shutting down", "error", serveErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		app.Logger.Warn("HTTP server shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	app.Logger.Info("servers stopped")

	return serveErr
}
