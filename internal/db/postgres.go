package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/envutil"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
)

// Service owns the gorm connection. DB_DRIVER selects the backend:
// "postgres" (default) for deployments, "sqlite" for local development
// and demo environments that run without a database server.
type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := envutil.GetEnv("DB_DRIVER", "postgres", log)
	switch driver {
	case "postgres":
		return newPostgres(serviceLog, log)
	case "sqlite":
		return newSQLite(serviceLog, log)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func newPostgres(serviceLog, log *logger.Logger) (*Service, error) {
	host := envutil.GetEnv("POSTGRES_HOST", "localhost", log)
	port := envutil.GetEnv("POSTGRES_PORT", "5432", log)
	user := envutil.GetEnv("POSTGRES_USER", "postgres", log)
	password := envutil.GetEnv("POSTGRES_PASSWORD", "", log)
	name := envutil.GetEnv("POSTGRES_NAME", "mirrorbuddy", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &Service{db: gdb, driver: "postgres", log: serviceLog}, nil
}

func newSQLite(serviceLog, log *logger.Logger) (*Service, error) {
	path := envutil.GetEnv("SQLITE_PATH", "mirrorbuddy.db", log)

	serviceLog.Info("Opening SQLite database...", "path", path)
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		serviceLog.Error("Failed to open SQLite database", "error", err)
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return &Service{db: gdb, driver: "sqlite", log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&domain.Material{},
		&domain.Collection{},
		&domain.Tag{},
		&domain.MaterialTag{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if s.driver != "postgres" {
		return nil
	}
	s.log.Info("Configuring foreign key relationships...")
	constraints := []struct {
		name string
		stmt string
	}{
		{"fk_material_collection_id", `
			ALTER TABLE "material"
			ADD CONSTRAINT "fk_material_collection_id"
			FOREIGN KEY ("collection_id")
			REFERENCES "collection"("id")
			ON DELETE SET NULL
		`},
		{"fk_material_tag_material_id", `
			ALTER TABLE "material_tag"
			ADD CONSTRAINT "fk_material_tag_material_id"
			FOREIGN KEY ("material_id")
			REFERENCES "material"("id")
			ON DELETE CASCADE
		`},
		{"fk_material_tag_tag_id", `
			ALTER TABLE "material_tag"
			ADD CONSTRAINT "fk_material_tag_tag_id"
			FOREIGN KEY ("tag_id")
			REFERENCES "tag"("id")
			ON DELETE CASCADE
		`},
	}
	for _, c := range constraints {
		stmt := fmt.Sprintf(`
			DO $$ BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%s') THEN
					%s;
				END IF;
			END $$;
		`, c.name, c.stmt)
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
