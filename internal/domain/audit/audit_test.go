package audit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmsync/internal/platform/config"
	"hrmsync/internal/platform/db"
)

func TestFilterWhere(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args := Filter{Action: ActionLogin, EntityID: "u1", Since: since}.where("t1")
	assert.Equal(t, " WHERE tenant_id = $1 AND action = $2 AND entity_id = $3 AND created_at >= $4", where)
	assert.Equal(t, []any{"t1", ActionLogin, "u1", since}, args)

	where, args = Filter{}.where("t1")
	assert.Equal(t, " WHERE tenant_id = $1", where)
	assert.Len(t, args, 1)
}

func TestRecordAndList(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dbURL})
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, db.Migrate(ctx, pool))

	var tenantID string
	require.NoError(t, pool.QueryRow(ctx, `
    INSERT INTO tenants (name) VALUES ('Audit Test Tenant')
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `).Scan(&tenantID))

	svc := New(pool)
	entityID := uuid.NewString()
	require.NoError(t, svc.Record(ctx, tenantID, "", ActionEmployeeMigrated, "employee", entityID, "req-1", "127.0.0.1", nil, map[string]any{"created": true}))
	require.NoError(t, svc.Record(ctx, tenantID, "", ActionEntriesMigrated, "dependents", entityID, "req-2", "127.0.0.1", nil, map[string]any{"accepted": 1}))

	filter := Filter{EntityID: entityID}
	total, err := svc.Count(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	events, err := svc.List(ctx, tenantID, filter, 1, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)

	all, err := svc.List(ctx, tenantID, Filter{EntityID: entityID, Action: ActionEntriesMigrated}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "dependents", all[0].EntityType)
	assert.JSONEq(t, `{"accepted":1}`, string(all[0].After))
}
