package db

// SchemaSQL is the complete schema for fresh installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All
// repository tests build their :memory: database from GetSchemaSQL(), so a
// column referenced by repository code but missing here fails immediately
// with "no such column" instead of drifting.
//
// When adding columns or tables, add a migration in migrations.go and
// update SchemaSQL here.
const SchemaSQL = `
-- Local optimistic task store (the most trusted leg)
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	remote_id TEXT,
	title TEXT NOT NULL,
	description TEXT,
	category TEXT NOT NULL DEFAULT 'General',
	priority TEXT NOT NULL CHECK(priority IN ('high', 'medium', 'low')) DEFAULT 'medium',
	due TEXT,
	completed BOOLEAN NOT NULL DEFAULT 0,
	bounty_base INTEGER NOT NULL DEFAULT 0 CHECK(bounty_base >= 0),
	fingerprint TEXT,
	version INTEGER NOT NULL DEFAULT 1,
	sync_state TEXT NOT NULL CHECK(sync_state IN ('synced', 'pending', 'local_only')) DEFAULT 'local_only',
	last_fault TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Escrow lifecycle per fingerprint. Rows for superseded versions are kept:
-- their ledger records stay open and remain inspectable.
CREATE TABLE IF NOT EXISTS escrows (
	fingerprint TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	amount_base INTEGER NOT NULL CHECK(amount_base >= 0),
	state TEXT NOT NULL CHECK(state IN ('no_escrow', 'authorization_required', 'authorized', 'escrowed', 'claimed')),
	tx_ref TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_escrows_task ON escrows(task_id, version);

-- Single active session (bearer token + identities)
CREATE TABLE IF NOT EXISTS session (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	email TEXT NOT NULL,
	display_name TEXT,
	wallet_address TEXT,
	token TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Monotonic counters. Task IDs come from here rather than MAX(id) so an
-- id is never reused within a session, even after deleting the newest task.
CREATE TABLE IF NOT EXISTS counters (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema. Tests use this instead of
// hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}
