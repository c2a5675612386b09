package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotEnoughFortunes is returned when a draw asks for more enabled
// fortunes than the database holds.
var ErrNotEnoughFortunes = errors.New("not enough enabled fortunes")

// Fortune represents a fortune message stored in the database.
type Fortune struct {
	ID        string
	Text      string
	Category  string
	Weight    int
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FortuneRepository provides CRUD operations for fortunes.
type FortuneRepository struct {
	db *sql.DB
}

// Fortunes returns the fortune repository for this store.
func (s *Store) Fortunes() *FortuneRepository {
	return &FortuneRepository{db: s.db}
}

// defaultFortunes seed a fresh database so the experience never comes up
// with empty scrolls.
var defaultFortunes = []string{
	"Great fortune arrives on the east wind.",
	"A small kindness returns threefold.",
	"The patient hand catches the brightest spark.",
	"What you seek is closer than it appears.",
	"An open palm gathers more than a closed fist.",
	"Tonight's sky holds a message meant for you.",
	"An old friend brings unexpected news.",
	"The quietest wish burns the longest.",
}

// SeedDefaults inserts the default fortunes if the table is empty.
func (r *FortuneRepository) SeedDefaults() error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM fortunes`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, text := range defaultFortunes {
		f := &Fortune{
			ID:       uuid.New().String(),
			Text:     text,
			Category: "general",
			Weight:   1,
			Enabled:  true,
		}
		if err := r.Create(f); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a new fortune into the database.
func (r *FortuneRepository) Create(f *Fortune) error {
	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	_, err := r.db.Exec(
		`INSERT INTO fortunes (id, text, category, weight, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Text, f.Category, f.Weight, boolToInt(f.Enabled), f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a fortune by its ID.
func (r *FortuneRepository) GetByID(id string) (*Fortune, error) {
	f := &Fortune{}
	var enabled int

	err := r.db.QueryRow(
		`SELECT id, text, category, weight, enabled, created_at, updated_at
		 FROM fortunes WHERE id = ?`,
		id,
	).Scan(&f.ID, &f.Text, &f.Category, &f.Weight, &enabled, &f.CreatedAt, &f.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	f.Enabled = enabled != 0
	return f, nil
}

// List retrieves all fortunes from the database.
func (r *FortuneRepository) List() ([]*Fortune, error) {
	rows, err := r.db.Query(
		`SELECT id, text, category, weight, enabled, created_at, updated_at
		 FROM fortunes ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fortunes []*Fortune
	for rows.Next() {
		f := &Fortune{}
		var enabled int

		err := rows.Scan(&f.ID, &f.Text, &f.Category, &f.Weight, &enabled, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, err
		}

		f.Enabled = enabled != 0
		fortunes = append(fortunes, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fortunes, nil
}

// Update updates an existing fortune in the database.
func (r *FortuneRepository) Update(f *Fortune) error {
	f.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE fortunes SET text = ?, category = ?, weight = ?, enabled = ?, updated_at = ?
		 WHERE id = ?`,
		f.Text, f.Category, f.Weight, boolToInt(f.Enabled), f.UpdatedAt, f.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a fortune from the database by its ID.
func (r *FortuneRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM fortunes WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Draw returns count distinct enabled fortunes in random order.
func (r *FortuneRepository) Draw(count int) ([]*Fortune, error) {
	rows, err := r.db.Query(
		`SELECT id, text, category, weight, enabled, created_at, updated_at
		 FROM fortunes WHERE enabled = 1 ORDER BY RANDOM() LIMIT ?`,
		count,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fortunes []*Fortune
	for rows.Next() {
		f := &Fortune{}
		var enabled int

		err := rows.Scan(&f.ID, &f.Text, &f.Category, &f.Weight, &enabled, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, err
		}

		f.Enabled = enabled != 0
		fortunes = append(fortunes, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(fortunes) < count {
		return nil, ErrNotEnoughFortunes
	}

	return fortunes, nil
}

// LogTrigger records an accepted fireworks trigger. fortuneID may be empty
// when no fortune was chosen yet.
func (r *FortuneRepository) LogTrigger(fortuneID, source string) error {
	var id interface{}
	if fortuneID != "" {
		id = fortuneID
	}
	_, err := r.db.Exec(
		`INSERT INTO trigger_log (fortune_id, source) VALUES (?, ?)`,
		id, source,
	)
	return err
}

// TriggerCount returns the number of recorded triggers.
func (r *FortuneRepository) TriggerCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM trigger_log`).Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
