// Package testdb provides a migrated postgres pool for repository tests.
package testdb

import (
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/mpapenbr/simlap-service-go/testsupport/tcpostgres"
)

var (
	once   sync.Once
	shared *pgxpool.Pool
)

// InitTestDb returns a pool with empty tables. The database is set up once
// per test binary. TESTDB_URL points to an external database, otherwise a
// container is started.
func InitTestDb(t testing.TB) *pgxpool.Pool {
	t.Helper()
	once.Do(func() {
		if url := os.Getenv("TESTDB_URL"); url != "" {
			shared = tcpg.SetupExternalTestDb(url)
		} else {
			shared = tcpg.SetupTestDb()
		}
	})
	tcpg.ClearAllTables(shared)
	return shared
}
