package schemarefresh

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"component-graphql/internal/dbexec"
	"component-graphql/internal/logging"
	"component-graphql/internal/resolver"
	"component-graphql/internal/sqlutil"
)

var fixtureStatements = []string{
	"CREATE TABLE components (id TEXT PRIMARY KEY, name TEXT NOT NULL)",
	"CREATE TABLE component_members (component_id TEXT NOT NULL, name TEXT NOT NULL, type TEXT NOT NULL, slot INTEGER NOT NULL, `offset` INTEGER NOT NULL)",
	"CREATE TABLE external_Moves (id TEXT PRIMARY KEY, created_at TEXT NOT NULL, external_remaining INTEGER, external_last_direction TEXT)",
	"INSERT INTO components (id, name) VALUES ('moves', 'Moves')",
	"INSERT INTO component_members (component_id, name, type, slot, `offset`) VALUES " +
		"('moves', 'remaining', 'u8', 0, 0), ('moves', 'last_direction', 'felt252', 0, 8)",
	"INSERT INTO external_Moves (id, created_at, external_remaining, external_last_direction) VALUES " +
		"('0x1', '2024-01-01 00:00:01', 3, 'left')",
}

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func newFixtureDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range fixtureStatements {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err, stmt)
	}
	return db
}

func newTestManager(t *testing.T, db *sql.DB) *Manager {
	t.Helper()
	pool := dbexec.NewStandardPool(db)
	manager, err := NewManager(context.Background(), Config{
		Pool:    pool,
		Dialect: sqlutil.DialectSQLite,
		States:  resolver.NewComponentStates(pool, sqlutil.DialectSQLite, 0),
		Logger:  testLogger(),
	})
	require.NoError(t, err)
	return manager
}

func postQuery(t *testing.T, h http.Handler, query string) map[string]any {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": query})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestNewManager_BuildsInitialSnapshot(t *testing.T) {
	manager := newTestManager(t, newFixtureDB(t))

	snapshot := manager.CurrentSnapshot()
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Components, 1)
	assert.Equal(t, "Moves", snapshot.Components[0].Name)
	assert.NotEmpty(t, snapshot.Fingerprint)
	assert.Contains(t, snapshot.Schema.QueryType().Fields(), "movesComponents")
}

func TestManagerHandler_ServesQueries(t *testing.T) {
	manager := newTestManager(t, newFixtureDB(t))

	resp := postQuery(t, manager.Handler(), `{ movesComponents(remaining: 3) { remaining last_direction } }`)
	assert.Nil(t, resp["errors"])
	assert.Equal(t, map[string]any{
		"movesComponents": []any{
			map[string]any{"remaining": float64(3), "last_direction": "left"},
		},
	}, resp["data"])
}

func TestManagerRefreshNow_PicksUpNewComponents(t *testing.T) {
	db := newFixtureDB(t)
	manager := newTestManager(t, db)
	before := manager.CurrentSnapshot()

	_, err := db.Exec("INSERT INTO components (id, name) VALUES ('health', 'Health')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO component_members (component_id, name, type, slot, `offset`) VALUES ('health', 'hp', 'u32', 0, 0)")
	require.NoError(t, err)

	require.NoError(t, manager.RefreshNowContext(context.Background()))

	after := manager.CurrentSnapshot()
	assert.NotSame(t, before, after)
	assert.NotEqual(t, before.Fingerprint, after.Fingerprint)
	assert.Contains(t, after.Schema.QueryType().Fields(), "healthComponents")
}

func TestManagerPoll_KeepsSnapshotWhenUnchanged(t *testing.T) {
	manager := newTestManager(t, newFixtureDB(t))
	before := manager.CurrentSnapshot()

	swapped, err := manager.refresh(context.Background(), "poll", false)
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.Same(t, before, manager.CurrentSnapshot())
}

func TestLoadDefinitions_SkipsUnknownTypes(t *testing.T) {
	db := newFixtureDB(t)
	_, err := db.Exec("INSERT INTO components (id, name) VALUES ('odd', 'Odd')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO component_members (component_id, name, type, slot, `offset`) VALUES ('odd', 'blob', 'Array<u8>', 0, 0)")
	require.NoError(t, err)

	conn, err := dbexec.NewStandardPool(db).Acquire(context.Background())
	require.NoError(t, err)
	defer func() { _ = conn.Release() }()

	defs, err := LoadDefinitions(context.Background(), conn, sqlutil.DialectSQLite, testLogger().Logger)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "moves", defs[0].Component.ID)
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	manager := newTestManager(t, newFixtureDB(t))
	snapshot := manager.CurrentSnapshot()

	defs := []resolver.ComponentDefinition{}
	assert.NotEqual(t, snapshot.Fingerprint, Fingerprint(defs))
	assert.Equal(t, Fingerprint(defs), Fingerprint(nil))
}

func TestNewManager_RequiresPool(t *testing.T) {
	_, err := NewManager(context.Background(), Config{})
	require.Error(t, err)
}

func TestManagerHandler_NotReady(t *testing.T) {
	manager := &Manager{}
	rec := httptest.NewRecorder()
	manager.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBuildSchema_RequiresQueryer(t *testing.T) {
	_, err := BuildSchema(context.Background(), BuildSchemaConfig{})
	require.Error(t, err)
}
