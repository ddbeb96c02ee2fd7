package resolver

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"component-graphql/internal/dbexec"
	"component-graphql/internal/sqlutil"
)

var fixtureStatements = []string{
	"CREATE TABLE components (id TEXT PRIMARY KEY, name TEXT NOT NULL)",
	"CREATE TABLE component_members (component_id TEXT NOT NULL, name TEXT NOT NULL, type TEXT NOT NULL, slot INTEGER NOT NULL, `offset` INTEGER NOT NULL, created_at TEXT DEFAULT CURRENT_TIMESTAMP)",
	"CREATE TABLE external_Player (id TEXT PRIMARY KEY, created_at TEXT NOT NULL, external_owner TEXT, external_health INTEGER, external_alive INTEGER)",
	"CREATE TABLE external_Position (id TEXT PRIMARY KEY, created_at TEXT NOT NULL, external_player TEXT, external_x INTEGER, external_y INTEGER)",

	"INSERT INTO components (id, name) VALUES ('player', 'Player'), ('position', 'Position')",
	"INSERT INTO component_members (component_id, name, type, slot, `offset`) VALUES " +
		"('player', 'owner', 'ContractAddress', 0, 0), " +
		"('player', 'health', 'u32', 1, 0), " +
		"('player', 'alive', 'bool', 1, 32), " +
		"('position', 'player', 'ContractAddress', 0, 0), " +
		"('position', 'x', 'u32', 1, 0), " +
		"('position', 'y', 'u32', 1, 32)",
	"INSERT INTO external_Player (id, created_at, external_owner, external_health, external_alive) VALUES " +
		"('p1', '2024-01-01 00:00:01', 'alice', 10, 1), " +
		"('p2', '2024-01-01 00:00:02', 'alice', 5, 1), " +
		"('p3', '2024-01-01 00:00:03', 'bob', 10, 0), " +
		"('p4', '2024-01-01 00:00:04', 'alice', 10, 2), " +
		"('p5', '2024-01-01 00:00:05', 'alice', 10, 1)",
}

// newFixtureStates opens an in-memory SQLite database holding two components:
// Player with five states and Position with none.
func newFixtureStates(t *testing.T) (*ComponentStates, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every connection to ":memory:" opens a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, stmt := range fixtureStatements {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}

	return NewComponentStates(dbexec.NewStandardPool(db), sqlutil.DialectSQLite, 0), db
}
