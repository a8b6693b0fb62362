// Package storage persiste o estado do marketplace no PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DB representa a conexão com o banco de dados PostgreSQL.
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// NewDB conecta-se ao PostgreSQL e executa as migrações.
func NewDB(ctx context.Context, dataSourceName string, logger *zap.Logger) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao pingar o banco de dados: %w", err)
	}
	logger.Info("conexão com PostgreSQL estabelecida")

	if err := runMigrations(db.DB, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{DB: db, logger: logger}, nil
}

// runMigrations executa as migrações embutidas usando sql-migrate.
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	n, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		logger.Info("migrações aplicadas", zap.Int("count", n))
	} else {
		logger.Debug("nenhuma migração nova para aplicar")
	}
	return nil
}

// Reset remove e recria o esquema. Usado apenas em testes.
func (d *DB) Reset() error {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
	if _, err := migrate.Exec(d.DB.DB, "postgres", migrations, migrate.Down); err != nil {
		return fmt.Errorf("erro ao reverter migrações: %w", err)
	}
	return runMigrations(d.DB.DB, d.logger)
}
