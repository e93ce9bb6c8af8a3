package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/types"
	"github.com/clipshare/clipshare-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "clipshare", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll migrates every table. The videos table is migrated under
// exactly one of the two identity shapes; which one is a deployment-time
// decision, never a per-request one.
func (s *PostgresService) AutoMigrateAll(strategy types.IdentityStrategy) error {
	s.log.Info("Auto migrating tables...", "video_id_strategy", string(strategy))
	models := []interface{}{
		&types.User{},
		&types.Theme{},
		&types.Comment{},
		&types.Rating{},
	}
	if strategy == types.IdentityGenerated {
		models = append(models, &types.KeyedVideo{})
	} else {
		models = append(models, &types.Video{})
	}
	if err := s.db.AutoMigrate(models...); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

// SeedThemes inserts the default theme catalog when the table is empty.
func (s *PostgresService) SeedThemes(names []string) error {
	var count int64
	if err := s.db.Model(&types.Theme{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	themes := make([]*types.Theme, 0, len(names))
	for _, name := range names {
		themes = append(themes, &types.Theme{Name: name})
	}
	if err := s.db.Create(&themes).Error; err != nil {
		s.log.Error("Failed to seed themes", "error", err)
		return err
	}
	s.log.Info("Seeded default themes", "count", len(themes))
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
