package main

import (
	"bus-schedule-bot/internal/adapters/repositories"
	"bus-schedule-bot/internal/catalog"
	"bus-schedule-bot/internal/config"
	"bus-schedule-bot/internal/domain"
	"bus-schedule-bot/internal/ingest"
	"bus-schedule-bot/internal/platform/db"
	"context"
	"database/sql"
	"flag"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool prepares a database for the bot: schema, route catalog seed, and
// optional bulk schedule import for one driver.
func main() {
	var (
		store      = flag.String("store", "", "sqlite or postgres (default: STORE env, then sqlite)")
		routesPath = flag.String("routes", "", "route catalog file to seed (default: ROUTES_PATH env)")
		importPath = flag.String("import", "", "schedule file (.csv, .xlsx or .txt) to import")
		driverID   = flag.Int64("driver", 0, "telegram id of the driver the import belongs to")
		driverName = flag.String("name", "", "driver name to register with -driver")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if *store == "" {
		*store = config.Get("STORE", "sqlite")
	}
	if *routesPath == "" {
		*routesPath = config.Get("ROUTES_PATH", "data/routes.yaml")
	}

	conn, dialect, err := open(*store)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn, dialect); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding routes from %s...", *routesPath)
	if err := seedRoutes(ctx, conn, dialect, *routesPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	if *importPath == "" {
		return
	}
	if *driverID == 0 {
		log.Fatal("-import requires -driver")
	}
	if err := importSchedule(ctx, conn, dialect, *driverID, *driverName, *importPath); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

func open(store string) (*sql.DB, db.Dialect, error) {
	switch store {
	case "postgres":
		databaseURL := config.Get("DATABASE_URL", "")
		if databaseURL == "" {
			log.Fatal("DATABASE_URL is required")
		}
		conn, err := db.Open(databaseURL)
		return conn, db.Postgres, err
	case "sqlite":
		path := config.Get("DB_PATH", "data/bot.db")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, db.SQLite, err
		}
		conn, err := db.OpenSQLite(path)
		return conn, db.SQLite, err
	default:
		log.Fatalf("unsupported store %q (want sqlite or postgres)", store)
		return nil, 0, nil
	}
}

func seedRoutes(ctx context.Context, conn *sql.DB, dialect db.Dialect, path string) error {
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}

	routes := cat.ListAll()
	if err := repositories.NewSQLRouteRepository(conn, dialect).SaveRoutes(ctx, routes); err != nil {
		return err
	}
	log.Printf("routes seeded: count=%d", len(routes))
	return nil
}

func importSchedule(ctx context.Context, conn *sql.DB, dialect db.Dialect, driverID int64, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	drivers := repositories.NewSQLDriverRepository(conn, dialect)
	if strings.TrimSpace(name) != "" {
		if err := drivers.RegisterDriver(ctx, domain.Driver{ID: driverID, Name: name}); err != nil {
			return err
		}
	} else if _, err := drivers.GetDriver(ctx, driverID); err != nil {
		return err
	}

	svc := ingest.NewService(repositories.NewSQLScheduleStore(conn, dialect), nil)
	res, err := svc.IngestDocument(ctx, driverID, ingest.Document{
		Name:     filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Data:     data,
	})
	if err != nil {
		return err
	}

	for _, e := range res.Errors {
		log.Printf("row %d rejected: %s", e.Row, e.Reason)
	}
	log.Printf("import %s: status=%s stored=%d total=%d", path, res.Status(), res.Stored, res.Total)
	return nil
}
