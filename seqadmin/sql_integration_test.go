package seqadmin

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/sqlite-seq/engine"
	"github.com/viant/sqlite-seq/index/sorted"
	"github.com/viant/sqlite-seq/seq"
	"github.com/viant/sqlite-seq/sequtil"
)

func TestReindex(t *testing.T) {
	db, err := engine.Open(filepath.Join(t.TempDir(), "reindex.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(seq.ShadowTableDDL("_seq_nums"))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO _seq_nums(dataset_id, id, value) VALUES
		('a','x',3),('a','y',1),('b','z',9)`)
	require.NoError(t, err)

	n, err := Reindex(context.Background(), db, "_seq_nums")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := db.Query(`SELECT dataset_id, "index" FROM sequence_storage WHERE shadow_table_name = '_seq_nums' ORDER BY dataset_id`)
	require.NoError(t, err)
	defer rows.Close()
	var datasets []string
	for rows.Next() {
		var ds string
		var blob []byte
		require.NoError(t, rows.Scan(&ds, &blob))
		assert.True(t, sorted.IsSortedBlob(blob), ds)
		datasets = append(datasets, ds)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a", "b"}, datasets)
}

func TestReindexRejectsInvalidName(t *testing.T) {
	db, err := engine.Open(filepath.Join(t.TempDir(), "invalid.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	for _, name := range []string{"nums", "_seq_x; DROP TABLE y", ""} {
		_, err := Reindex(context.Background(), db, name)
		assert.Error(t, err, name)
	}
}

func TestSeqAdminVirtualTable(t *testing.T) {
	db, err := engine.Open(filepath.Join(t.TempDir(), "seq_admin.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)
	require.NoError(t, seq.Register(db))
	require.NoError(t, Register(db, nil))
	require.NoError(t, engine.Configure(db, 5*time.Second))
	if _, err := db.Exec(`CREATE VIRTUAL TABLE seq_admin USING seq_admin(op)`); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			t.Skipf("skipping: seq_admin vtab not available (%v)", err)
		}
		t.Fatalf("CREATE VIRTUAL TABLE seq_admin failed: %v", err)
	}
	_, err = db.Exec(seq.ShadowTableDDL("_seq_admin_nums"))
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO _seq_admin_nums(dataset_id, id, value) VALUES('ds','a',1),('ds','b',2)`)
	require.NoError(t, err)
	// Allow a second connection for internal queries.
	db.SetMaxOpenConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var op string
	err = db.QueryRowContext(ctx, `SELECT op FROM seq_admin WHERE op MATCH '_seq_admin_nums'`).Scan(&op)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		t.Skipf("skipping: seq_admin MATCH timed out (%v)", err)
	}
	require.NoError(t, err)
	assert.Equal(t, "reindexed:2", op)
}

func TestReindexServesFreshLookups(t *testing.T) {
	db, err := engine.Open(filepath.Join(t.TempDir(), "reindex_fresh.sqlite"))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)
	require.NoError(t, seq.Register(db))
	require.NoError(t, engine.Configure(db, 5*time.Second))
	if _, err := db.Exec(`CREATE VIRTUAL TABLE nums USING seq(doc_id)`); err != nil {
		if strings.Contains(err.Error(), "no such module: seq") {
			t.Skipf("skipping: seq vtab not available (%v)", err)
		}
		t.Fatalf("CREATE VIRTUAL TABLE nums failed: %v", err)
	}
	ix, err := sequtil.NewIndex(db, "nums", "ds")
	require.NoError(t, err)
	db.SetMaxOpenConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	storageRows := func() map[string][]byte {
		rows, err := db.QueryContext(ctx, `SELECT shadow_table_name, "index" FROM sequence_storage WHERE dataset_id = 'ds'`)
		require.NoError(t, err)
		defer rows.Close()
		out := map[string][]byte{}
		for rows.Next() {
			var name string
			var blob []byte
			require.NoError(t, rows.Scan(&name, &blob))
			out[name] = blob
		}
		require.NoError(t, rows.Err())
		return out
	}

	require.NoError(t, ix.UpsertValues(ctx, []sequtil.Entry{{ID: "a", Value: 10}, {ID: "b", Value: 20}}))
	// Both spellings of the shadow resolve to the row the virtual table reads.
	for _, shadow := range []string{"main._seq_nums", sequtil.ShadowTableName("nums")} {
		n, err := Reindex(ctx, db, shadow)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		stored := storageRows()
		require.Len(t, stored, 1, shadow)
		assert.True(t, sorted.IsSortedBlob(stored["_seq_nums"]), shadow)
	}

	m, ok, err := ix.Locate(ctx, 20)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		t.Skipf("skipping: MATCH timed out (%v)", err)
	}
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sequtil.Match{ID: "b", Position: 1, Value: 20}, m)
	// The lookup used the persisted sorted blob rather than rebuilding.
	assert.True(t, sorted.IsSortedBlob(storageRows()["_seq_nums"]))

	// A write after Reindex drops the persisted blob.
	require.NoError(t, ix.UpsertValues(ctx, []sequtil.Entry{{ID: "c", Value: 30}}))
	assert.Empty(t, storageRows())
	m, ok, err = ix.Locate(ctx, 30)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sequtil.Match{ID: "c", Position: 2, Value: 30}, m)
}
