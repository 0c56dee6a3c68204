package seqsync

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/sqlite-seq/engine"
)

func TestSQLiteShadowLogTriggers(t *testing.T) {
	trigs := SQLiteShadowLogTriggers("main._seq_nums", "", "")
	if len(trigs) != 3 {
		t.Fatalf("expected 3 triggers, got %d", len(trigs))
	}
	if !strings.Contains(trigs[0], "CREATE TRIGGER IF NOT EXISTS main__seq_nums_ai AFTER INSERT ON main._seq_nums") {
		t.Fatalf("unexpected insert trigger: %s", trigs[0])
	}
	if !strings.Contains(trigs[1], "'update'") {
		t.Fatalf("update trigger missing op: %s", trigs[1])
	}
	if !strings.Contains(trigs[2], "OLD.dataset_id") {
		t.Fatalf("delete trigger missing OLD reference: %s", trigs[2])
	}
	if !strings.Contains(trigs[0], "json_object('dataset_id', NEW.dataset_id, 'id', NEW.id, 'value', NEW.value)") {
		t.Fatalf("unexpected payload: %s", trigs[0])
	}
	if !strings.Contains(trigs[0], "ON CONFLICT(dataset_id) DO UPDATE") {
		t.Fatalf("missing SCN increment: %s", trigs[0])
	}
}

func TestMySQLShadowLogTriggers(t *testing.T) {
	trigs := MySQLShadowLogTriggers("_seq_nums", "", "custom_log")
	if len(trigs) != 3 {
		t.Fatalf("expected 3 triggers, got %d", len(trigs))
	}
	if !strings.Contains(trigs[0], "CREATE TRIGGER _seq_nums_ai AFTER INSERT ON _seq_nums\nFOR EACH ROW") {
		t.Fatalf("unexpected trigger name: %s", trigs[0])
	}
	if !strings.Contains(trigs[0], "JSON_OBJECT(") {
		t.Fatalf("payload must be JSON_OBJECT: %s", trigs[0])
	}
	if !strings.Contains(trigs[0], "ON DUPLICATE KEY UPDATE") || !strings.Contains(trigs[0], "@seqsync_scn") {
		t.Fatalf("missing SCN increment: %s", trigs[0])
	}
	if !strings.Contains(trigs[2], "INSERT INTO custom_log(") {
		t.Fatalf("custom log table not used: %s", trigs[2])
	}
}

func TestInstallAndReadLog(t *testing.T) {
	ctx := context.Background()
	db, err := engine.Open(filepath.Join(t.TempDir(), "upstream.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Install(ctx, db, "_seq_nums"))
	// Install is idempotent.
	require.NoError(t, Install(ctx, db, "_seq_nums"))

	_, err = db.Exec(`INSERT INTO _seq_nums(dataset_id, id, value) VALUES('ds','a',5),('ds','b',7),('other','c',1)`)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE _seq_nums SET value = 6 WHERE dataset_id = 'ds' AND id = 'a'`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM _seq_nums WHERE dataset_id = 'ds' AND id = 'b'`)
	require.NoError(t, err)

	entries, err := ReadLog(ctx, db, "ds", 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	var ops []string
	for i, e := range entries {
		assert.EqualValues(t, i+1, e.SCN)
		assert.Equal(t, "_seq_nums", e.ShadowTable)
		ops = append(ops, e.Op)
	}
	assert.Equal(t, []string{"insert", "insert", "update", "delete"}, ops)
	row, err := entries[2].DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, &Row{DatasetID: "ds", ID: "a", Value: 6}, row)

	tail, err := ReadLog(ctx, db, "ds", 2, 10)
	require.NoError(t, err)
	assert.Len(t, tail, 2)
	limited, err := ReadLog(ctx, db, "ds", 0, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	up, err := engine.Open(filepath.Join(dir, "up.sqlite"))
	require.NoError(t, err)
	defer up.Close()
	down, err := engine.Open(filepath.Join(dir, "down.sqlite"))
	require.NoError(t, err)
	defer down.Close()
	require.NoError(t, Install(ctx, up, "_seq_nums"))

	_, err = up.Exec(`INSERT INTO _seq_nums(dataset_id, id, value) VALUES('ds','a',1),('ds','b',2),('ds','c',3)`)
	require.NoError(t, err)
	cfg := Config{DatasetID: "ds", ShadowTable: "_seq_nums", LocalShadowTable: "_seq_local", BatchSize: 2}
	state, err := Sync(ctx, up, down, cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 3, state.LastSCN)

	_, err = up.Exec(`DELETE FROM _seq_nums WHERE id = 'a'`)
	require.NoError(t, err)
	_, err = up.Exec(`UPDATE _seq_nums SET value = 20 WHERE id = 'b'`)
	require.NoError(t, err)
	state, err = Sync(ctx, up, down, cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 5, state.LastSCN)

	rows, err := down.Query(`SELECT id, value FROM _seq_local WHERE dataset_id = 'ds' ORDER BY value`)
	require.NoError(t, err)
	defer rows.Close()
	got := map[string]int64{}
	for rows.Next() {
		var id string
		var v int64
		require.NoError(t, rows.Scan(&id, &v))
		got[id] = v
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]int64{"b": 20, "c": 3}, got)

	loaded, err := LoadState(ctx, down, cfg)
	require.NoError(t, err)
	assert.EqualValues(t, 5, loaded.LastSCN)
	assert.False(t, loaded.UpdatedAt.IsZero())
}

func TestSyncRequiresDataset(t *testing.T) {
	_, err := Sync(context.Background(), nil, nil, Config{})
	assert.Error(t, err)
}
