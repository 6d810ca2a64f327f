//go:build integration

package containers

// Schema returns the DDL the postgres stores expect, in dependency order.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS asset_types (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS classifications (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			asset_type_id UUID REFERENCES asset_types(id),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meldingen (
			id UUID PRIMARY KEY,
			text TEXT NOT NULL,
			classification_id UUID REFERENCES classifications(id),
			token TEXT,
			token_expires TIMESTAMPTZ,
			phone TEXT,
			email TEXT,
			lat DOUBLE PRECISION,
			lon DOUBLE PRECISION,
			street TEXT,
			house_number INTEGER,
			house_number_addition TEXT,
			postal_code TEXT,
			city TEXT,
			state TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			version BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assets (
			id UUID PRIMARY KEY,
			external_id TEXT NOT NULL,
			asset_type_id UUID NOT NULL REFERENCES asset_types(id),
			melding_id UUID NOT NULL REFERENCES meldingen(id) ON DELETE CASCADE,
			UNIQUE (external_id, asset_type_id)
		)`,
		`CREATE TABLE IF NOT EXISTS attachments (
			id UUID PRIMARY KEY,
			melding_id UUID NOT NULL REFERENCES meldingen(id) ON DELETE CASCADE,
			original_filename TEXT NOT NULL,
			original_media_type TEXT NOT NULL,
			file_path TEXT NOT NULL,
			optimized_path TEXT,
			optimized_media_type TEXT,
			thumbnail_path TEXT,
			thumbnail_media_type TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS melding_audit_events (
			id BIGSERIAL PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			melding_id UUID NOT NULL,
			action TEXT NOT NULL,
			from_state TEXT,
			to_state TEXT,
			detail TEXT
		)`,
	}
}
