//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mpapenbr/simlap-service-go/pkg/db/migrate"
	database "github.com/mpapenbr/simlap-service-go/pkg/db/postgres"
)

// create a pg connection pool for the simlap testdatabase
func SetupTestDb() *pgxpool.Pool {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		log.Fatal(err)
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("simlap-service-test"),
	)
	if err != nil {
		log.Fatal(err)
	}
	containerPort, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())

	return migrateAndConnect(dbURL)
}

// use an already running database
func SetupExternalTestDb(dbURL string) *pgxpool.Pool {
	return migrateAndConnect(dbURL)
}

func migrateAndConnect(dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}
	return database.InitWithURL(dbURL)
}

func ClearLapAnalysisTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from lap_analysis")
}

func ClearUsageTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from usage_stats")
}

func ClearUserTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from users")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearLapAnalysisTable(pool)
	ClearUsageTable(pool)
	ClearUserTable(pool)
}
