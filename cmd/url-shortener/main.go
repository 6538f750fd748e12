package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	api "github.com/RoystonDAlmeida/url-shortener-service/internal/api/http"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/config"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/service"
	"github.com/RoystonDAlmeida/url-shortener-service/internal/storage/memory"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		panic(err)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	logger := httplog.NewLogger("url-shortener", httplog.Options{
		JSON:     cfg.Env == config.EnvProd,
		LogLevel: logLevel(cfg.Env),
		Concise:  cfg.Env != config.EnvProd,
	})

	urlStore := memory.NewURLStore()
	urlSvc := service.NewURLService(urlStore)

	r := api.NewRouter(logger, urlSvc)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error
		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	return g.Wait()
}

func logLevel(env string) slog.Level {
	if env == config.EnvProd {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
