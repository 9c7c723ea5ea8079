//go:build integration

// Package integration runs the HTTP API and repositories against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/constructora/backend/internal/infrastructure/config"
	"github.com/constructora/backend/internal/infrastructure/migration"
	"github.com/constructora/backend/internal/infrastructure/persistence"
	"github.com/constructora/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

const (
	testDBName     = "constructora_test"
	testDBUser     = "postgres"
	testDBPassword = "postgres"
)

var (
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
	sharedConfig      config.DatabaseConfig
)

// TestDB is a migrated database in the shared container
type TestDB struct {
	*persistence.Database
	Config config.DatabaseConfig
	t      *testing.T
}

// NewTestDB connects to the shared container, starting and migrating it on
// first use, and empties every table.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := ensureContainer(t)

	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg, level)
	require.NoError(t, err, "Failed to connect to database")

	tdb := &TestDB{Database: db, Config: cfg, t: t}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close database: %v", err)
		}
	})
	tdb.CleanTables()
	return tdb
}

func ensureContainer(t *testing.T) config.DatabaseConfig {
	t.Helper()
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		return sharedConfig
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(testDBName),
		tcpostgres.WithUsername(testDBUser),
		tcpostgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         testDBUser,
		Password:     testDBPassword,
		DBName:       testDBName,
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		TxMaxRetries: 3,
	}
	runMigrations(t, cfg)

	sharedContainer = container
	sharedConfig = cfg
	return cfg
}

// runMigrations applies the embedded migrations on a throwaway connection
func runMigrations(t *testing.T, cfg config.DatabaseConfig) {
	t.Helper()
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	require.NoError(t, err)

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	defer func() { _ = m.Close() }()

	require.NoError(t, m.Up(), "Failed to run migrations")
}

// CleanTables truncates every domain table and resets the payment counter
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename NOT IN ('schema_migrations', 'counters')
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	if len(tables) > 0 {
		err = tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))).Error
		require.NoError(tdb.t, err, "Failed to truncate tables")
	}
	require.NoError(tdb.t, tdb.DB.Exec("UPDATE counters SET current_number = 0").Error)
}

// CleanupSharedContainer terminates the shared container. Called from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
	}
}
