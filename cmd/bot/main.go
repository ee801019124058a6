package main

import (
	"bus-schedule-bot/internal/adapters/cache"
	"bus-schedule-bot/internal/adapters/extraction"
	"bus-schedule-bot/internal/adapters/memory"
	"bus-schedule-bot/internal/adapters/repositories"
	"bus-schedule-bot/internal/adapters/telegram"
	"bus-schedule-bot/internal/api"
	"bus-schedule-bot/internal/catalog"
	"bus-schedule-bot/internal/config"
	"bus-schedule-bot/internal/dispatch"
	"bus-schedule-bot/internal/ingest"
	"bus-schedule-bot/internal/platform/db"
	"bus-schedule-bot/internal/ports"
	"bus-schedule-bot/internal/services"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

type storage struct {
	conn    *sql.DB
	dialect db.Dialect
	store   ports.ScheduleStore
	drivers ports.DriverRepository
}

// main is the application composition root.
// It wires concrete adapters behind ports, then runs the HTTP server and the
// Telegram poller until SIGINT/SIGTERM.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
	log.Println("shutdown complete")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	if st.conn != nil {
		defer st.conn.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg, st)
	if err != nil {
		return err
	}
	log.Printf("catalog loaded: source=%s routes=%d", cfg.RoutesSource, len(cat.ListAll()))

	ingestSvc := ingest.NewService(st.store, newExtractor(cfg, st))
	presenter := services.NewPresenter(cat, st.store)

	dispatcher := dispatch.New(presenter, st.drivers, ingestSvc, cfg.Location)
	dispatcher.MaxUploadBytes = cfg.MaxUploadBytes

	deps := api.Deps{
		Catalog:        cat,
		Store:          st.store,
		Drivers:        st.drivers,
		Ingest:         ingestSvc,
		MaxUploadBytes: int64(cfg.MaxUploadBytes),
	}
	if st.conn != nil {
		deps.Ping = st.conn.PingContext
	}

	// Timeouts allow for OCR latency on schedule imports.
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var workers []func(context.Context) error
	if cfg.BotDisabled {
		log.Println("Telegram bot disabled (BOT_DISABLED=true)")
	} else {
		bot, err := telegram.NewBot(cfg.TelegramToken, dispatcher, cfg.Workers, int64(cfg.MaxUploadBytes))
		if err != nil {
			return err
		}
		workers = append(workers, bot.Run)
	}

	return serve(ctx, srv, workers...)
}

// serve runs srv and every worker until ctx ends or one of them fails, then
// shuts the server down and waits for the workers.
func serve(ctx context.Context, srv *http.Server, workers ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server listening addr=%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	for _, w := range workers {
		g.Go(func() error {
			return w(gctx)
		})
	}

	return g.Wait()
}

func openStorage(cfg config.Config) (storage, error) {
	var (
		conn    *sql.DB
		dialect db.Dialect
		err     error
	)

	switch cfg.Store {
	case "memory":
		return storage{
			store:   memory.NewScheduleStore(),
			drivers: memory.NewDriverRepository(),
		}, nil
	case "postgres":
		dialect = db.Postgres
		conn, err = db.Open(cfg.DatabaseURL)
	default:
		dialect = db.SQLite
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return storage{}, fmt.Errorf("open storage: create %q: %w", dir, err)
			}
		}
		conn, err = db.OpenSQLite(cfg.DBPath)
	}
	if err != nil {
		return storage{}, err
	}

	if err := repositories.InitSchema(conn, dialect); err != nil {
		conn.Close()
		return storage{}, fmt.Errorf("open storage: %w", err)
	}

	return storage{
		conn:    conn,
		dialect: dialect,
		store:   repositories.NewSQLScheduleStore(conn, dialect),
		drivers: repositories.NewSQLDriverRepository(conn, dialect),
	}, nil
}

func loadCatalog(ctx context.Context, cfg config.Config, st storage) (*catalog.Catalog, error) {
	if cfg.RoutesSource != "db" {
		return catalog.LoadFile(cfg.RoutesPath)
	}
	if st.conn == nil {
		return nil, errors.New("ROUTES_SOURCE=db requires STORE=sqlite or STORE=postgres")
	}
	return catalog.LoadFromRepository(ctx, repositories.NewSQLRouteRepository(st.conn, st.dialect))
}

// newExtractor returns nil when no OCR backend is configured; image and PDF
// uploads then fail with a service error while CSV and text still work.
func newExtractor(cfg config.Config, st storage) ports.TextExtractor {
	gemini, err := extraction.NewGeminiExtractor(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("text extraction disabled: %v", err)
		return nil
	}
	if st.conn == nil {
		return gemini
	}
	return extraction.NewCachingExtractor(gemini, cache.NewSQLExtractionCache(st.conn, st.dialect))
}
