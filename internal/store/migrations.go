package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Fortunes table - stores the messages shown on unrolled scrolls
		`CREATE TABLE IF NOT EXISTS fortunes (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT 'general',
			weight INTEGER NOT NULL DEFAULT 1,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Trigger log table - records every accepted fireworks trigger
		`CREATE TABLE IF NOT EXISTS trigger_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fortune_id TEXT REFERENCES fortunes(id) ON DELETE SET NULL,
			source TEXT NOT NULL DEFAULT 'gesture',
			triggered_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_fortunes_enabled ON fortunes(enabled)`,
		`CREATE INDEX IF NOT EXISTS idx_trigger_log_fortune_id ON trigger_log(fortune_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
