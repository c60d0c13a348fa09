package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linkedin-publisher/infrastructure/configuration"
	"linkedin-publisher/infrastructure/logger"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB opens and pings the history database.
func NewPostgreSQLDB(cfg configuration.Db) (*sql.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.User, cfg.Password, cfg.Name, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to postgres %s:%s/%s: %w", cfg.Host, port, cfg.Name, err)
	}
	logger.GetLogger().WithField("host", cfg.Host).WithField("database", cfg.Name).Debug("PostgreSQL connected")
	return db, nil
}
