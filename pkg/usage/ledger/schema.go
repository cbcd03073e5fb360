package ledger

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the usage ledger tables.
const Schema = `
CREATE TABLE IF NOT EXISTS usage_records (
    id TEXT PRIMARY KEY,
    request_id TEXT,
    -- unix nanoseconds, UTC; both drivers store it the same way
    recorded_at INTEGER NOT NULL,

    mode TEXT NOT NULL,
    provider TEXT,
    model TEXT NOT NULL,

    -- "provider" or "estimated"
    source TEXT NOT NULL,
    prompt_tokens INTEGER NOT NULL,
    completion_tokens INTEGER NOT NULL,
    total_tokens INTEGER NOT NULL,

    cost_usd REAL NOT NULL,
    pricing_source TEXT NOT NULL,
    priced_as TEXT,

    outcome TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_recorded_at ON usage_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_records(model);
CREATE INDEX IF NOT EXISTS idx_usage_request_id ON usage_records(request_id);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO usage_records (
    id, request_id, recorded_at, mode, provider, model, source,
    prompt_tokens, completion_tokens, total_tokens,
    cost_usd, pricing_source, priced_as, outcome
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const selectRecent = `
SELECT id, request_id, recorded_at, mode, provider, model, source,
       prompt_tokens, completion_tokens, total_tokens,
       cost_usd, pricing_source, priced_as, outcome
FROM usage_records
ORDER BY recorded_at DESC, id DESC
LIMIT ?;
`

const summarizeSince = `
SELECT model,
       COUNT(*),
       COALESCE(SUM(prompt_tokens), 0),
       COALESCE(SUM(completion_tokens), 0),
       COALESCE(SUM(cost_usd), 0)
FROM usage_records
WHERE recorded_at >= ?
GROUP BY model
ORDER BY SUM(cost_usd) DESC, model ASC;
`

const deleteBefore = `DELETE FROM usage_records WHERE recorded_at < ?;`

const countRecords = `SELECT COUNT(*) FROM usage_records;`
