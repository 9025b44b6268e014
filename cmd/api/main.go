package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/majorossy/phreshfoods.com-sub003/internal/auth"
	"github.com/majorossy/phreshfoods.com-sub003/internal/config"
	"github.com/majorossy/phreshfoods.com-sub003/internal/database"
	"github.com/majorossy/phreshfoods.com-sub003/internal/handler"
	middlewarepkg "github.com/majorossy/phreshfoods.com-sub003/internal/middleware"
	"github.com/majorossy/phreshfoods.com-sub003/internal/repository"
	"github.com/majorossy/phreshfoods.com-sub003/internal/router"
	"github.com/majorossy/phreshfoods.com-sub003/internal/scheduler"
	"github.com/majorossy/phreshfoods.com-sub003/internal/service"
	"github.com/majorossy/phreshfoods.com-sub003/internal/sheet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	settings, err := config.LoadMapSettings(cfg.SettingsDir)
	if err != nil {
		log.Fatalf("failed to load map settings: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open business store: %v", err)
	}
	defer closeRepo()

	opts := []service.DirectoryOption{service.WithNormalizer(service.NewNormalizer(cfg.PhoneRegion))}
	source, err := openSource(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to configure sheet source: %v", err)
	}
	if source != nil {
		opts = append(opts, service.WithSource(source))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	directoryService := service.NewDirectoryService(repo, opts...)
	authService := service.NewAuthService(cfg.AdminPasswordHash, jwtManager)
	if cfg.AdminPasswordHash == "" {
		log.Printf("ADMIN_PASSWORD_HASH not set, admin login disabled")
	}

	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()

	var syncer *scheduler.Syncer
	if source != nil {
		syncer, err = scheduler.NewSyncer(directoryService, cfg.SyncInterval, log.Default())
		if err != nil {
			log.Fatalf("failed to create syncer: %v", err)
		}
		if err := syncer.Start(syncCtx); err != nil {
			log.Fatalf("failed to start syncer: %v", err)
		}
	} else {
		log.Printf("no sheet source configured, serving stored snapshot only")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log.Default()))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Businesses: handler.NewBusinessesHandler(directoryService, settings.DistanceUnit),
		Admin:      handler.NewAdminHandler(directoryService),
		Config:     handler.NewConfigHandler(settings),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", cfg.Port)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	stopSync()
	if syncer != nil {
		if err := syncer.Shutdown(); err != nil {
			log.Printf("syncer shutdown failed: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.BusinessesRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		repo, err := repository.NewFileBusinessesRepository(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("using file store path=%s", cfg.DataFile)
		return repo, func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewPGXBusinessesRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Printf("using postgres store max_conns=%d", pool.Config().MaxConns)
	return repo, pool.Close, nil
}

func openSource(ctx context.Context, cfg *config.Config) (sheet.Source, error) {
	parser := sheet.NewParser()
	switch {
	case cfg.Sheet.SpreadsheetID != "":
		src, err := sheet.NewSheetsSource(ctx, cfg.Sheet.APIKey, cfg.Sheet.SpreadsheetID, cfg.Sheet.Range, parser)
		if err != nil {
			return nil, err
		}
		log.Printf("using sheets api source spreadsheet_id=%s range=%s", cfg.Sheet.SpreadsheetID, cfg.Sheet.Range)
		return src, nil
	case cfg.Sheet.CSVURL != "":
		client := &http.Client{Timeout: 15 * time.Second}
		src, err := sheet.NewHTTPSource(client, cfg.Sheet.CSVURL, cfg.Sheet.ProxyURL, parser)
		if err != nil {
			return nil, err
		}
		log.Printf("using published csv source proxied=%t", cfg.Sheet.ProxyURL != "")
		return src, nil
	default:
		return nil, nil
	}
}
