package planner

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"component-graphql/internal/component"
	"component-graphql/internal/scalartype"
	"component-graphql/internal/sqlutil"
)

func playerSchema() *component.AttributeSchema {
	return component.NewAttributeSchema(
		component.Attribute{Name: "owner", Type: "String"},
		component.Attribute{Name: "health", Type: "u32"},
		component.Attribute{Name: "alive", Type: "bool"},
	)
}

func TestPlanMany_NoFilters(t *testing.T) {
	q, err := PlanMany(sqlutil.DialectMySQL, component.QuerySpec{Entity: "Player", Limit: DefaultLimit}, playerSchema())
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `external_Player` ORDER BY created_at DESC LIMIT ?", q.SQL)
	assert.Equal(t, []interface{}{uint64(DefaultLimit)}, q.Args)
}

func TestPlanMany_FiltersAreBoundInSchemaOrder(t *testing.T) {
	spec := component.QuerySpec{
		Entity: "Player",
		Filters: component.FilterSet{
			{Attribute: "owner", Value: "alice"},
			{Attribute: "health", Value: "10"},
			{Attribute: "alive", Value: "1"},
		},
		Limit: 5,
	}
	q, err := PlanMany(sqlutil.DialectMySQL, spec, playerSchema())
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM `external_Player` WHERE (`external_owner` = ? AND `external_health` = ? AND `external_alive` = ?) ORDER BY created_at DESC LIMIT ?",
		q.SQL,
	)
	assert.Equal(t, []interface{}{"alice", uint64(10), int64(1), uint64(5)}, q.Args)
}

func TestPlanMany_InjectionAttemptStaysBound(t *testing.T) {
	payload := "x' OR '1'='1"
	spec := component.QuerySpec{
		Entity:  "Player",
		Filters: component.FilterSet{{Attribute: "owner", Value: payload}},
		Limit:   DefaultLimit,
	}
	q, err := PlanMany(sqlutil.DialectMySQL, spec, playerSchema())
	require.NoError(t, err)
	assert.False(t, strings.Contains(q.SQL, payload))
	assert.Equal(t, payload, q.Args[0])
}

func TestPlanMany_ZeroLimit(t *testing.T) {
	q, err := PlanMany(sqlutil.DialectSQLite, component.QuerySpec{Entity: "Player", Limit: 0}, playerSchema())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(q.SQL, "LIMIT ?"))
	assert.Equal(t, []interface{}{uint64(0)}, q.Args)
}

func TestPlanMany_Postgres(t *testing.T) {
	spec := component.QuerySpec{
		Entity:  "Moves",
		Filters: component.FilterSet{{Attribute: "owner", Value: "0xabc"}},
		Limit:   3,
	}
	q, err := PlanMany(sqlutil.DialectPostgres, spec, playerSchema())
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "external_Moves" WHERE ("external_owner" = $1) ORDER BY created_at DESC LIMIT $2`, q.SQL)
	assert.Equal(t, []interface{}{"0xabc", uint64(3)}, q.Args)
}

func TestPlanMany_Errors(t *testing.T) {
	_, err := PlanMany(sqlutil.DialectMySQL, component.QuerySpec{}, playerSchema())
	assert.Error(t, err)

	_, err = PlanMany(sqlutil.DialectMySQL, component.QuerySpec{
		Entity:  "Player",
		Filters: component.FilterSet{{Attribute: "health", Value: "ten"}},
	}, playerSchema())
	assert.True(t, errors.Is(err, component.ErrInvalidArgument))

	_, err = PlanMany(sqlutil.DialectMySQL, component.QuerySpec{
		Entity:  "Player",
		Filters: component.FilterSet{{Attribute: "unknown", Value: "1"}},
	}, playerSchema())
	assert.Error(t, err)

	badSchema := component.NewAttributeSchema(component.Attribute{Name: "ratio", Type: "f64"})
	_, err = PlanMany(sqlutil.DialectMySQL, component.QuerySpec{
		Entity:  "Player",
		Filters: component.FilterSet{{Attribute: "ratio", Value: "1"}},
	}, badSchema)
	assert.True(t, errors.Is(err, scalartype.ErrUnknownType))
}

func TestPlanByID(t *testing.T) {
	q, err := PlanByID(sqlutil.DialectMySQL, "Position", "0x1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `external_Position` WHERE `id` = ?", q.SQL)
	assert.Equal(t, []interface{}{"0x1"}, q.Args)

	q, err = PlanByID(sqlutil.DialectPostgres, "Position", "0x1")
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "external_Position" WHERE "id" = $1`, q.SQL)

	_, err = PlanByID(sqlutil.DialectMySQL, "", "0x1")
	assert.Error(t, err)
}
