package seqsync

import "time"

// LogEntry mirrors a single row in seq_shadow_log on the upstream database.
type LogEntry struct {
	DatasetID   string
	ShadowTable string
	SCN         int64
	Op          string
	DocumentID  string
	Payload     []byte
	CreatedAt   time.Time
}

// Row is the decoded JSON payload of a LogEntry.
type Row struct {
	DatasetID string `json:"dataset_id"`
	ID        string `json:"id"`
	Value     int64  `json:"value"`
}

// SyncState describes the latest SCN applied locally for a dataset/shadow pair.
// It corresponds to rows in seq_sync_state on downstream replicas.
type SyncState struct {
	DatasetID   string
	ShadowTable string
	LastSCN     int64
	UpdatedAt   time.Time
}

// Config captures the settings of one replication stream.
type Config struct {
	// DatasetID identifies the dataset slice being synchronized.
	DatasetID string

	// ShadowTable is the upstream shadow table name (e.g. "main._seq_nums").
	ShadowTable string

	// LocalShadowTable receives the changes; defaults to ShadowTable.
	LocalShadowTable string

	// BatchSize controls how many log entries to fetch/apply per iteration.
	BatchSize int
}

const defaultBatchSize = 256

func (c *Config) init() {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.LocalShadowTable == "" {
		c.LocalShadowTable = c.ShadowTable
	}
}
