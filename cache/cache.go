// ABOUTME: Local sqlite cache of recently seen contacts
// ABOUTME: Lets list screens paint instantly before network results land
package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"salesdesk/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS recent_contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	phone TEXT,
	company_name TEXT,
	lifecycle_stage INTEGER,
	seen_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recent_contacts_seen_at ON recent_contacts(seen_at DESC);
`

// Cache is an advisory local store: failures are for the caller to log, never
// to surface. The record store stays the single source of truth.
type Cache struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the cache database at path.
func Open(path string) (*Cache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	// Single connection avoids database-locked errors under WAL.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put upserts the given contacts with a fresh seen-at timestamp.
func (c *Cache) Put(contacts []models.Contact) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	now := time.Now()
	for i := range contacts {
		contact := &contacts[i]
		_, err := tx.Exec(`
			INSERT INTO recent_contacts (id, name, email, phone, company_name, lifecycle_stage, seen_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				email = excluded.email,
				phone = excluded.phone,
				company_name = excluded.company_name,
				lifecycle_stage = excluded.lifecycle_stage,
				seen_at = excluded.seen_at
		`, contact.ID.String(), contact.DisplayName(), contact.Email, contact.Phone,
			contact.CompanyName, contact.LifecycleStage, now)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Recent returns the most recently seen contacts, newest first.
func (c *Cache) Recent(limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := c.db.Query(`
		SELECT id, name, email, phone, company_name, lifecycle_stage
		FROM recent_contacts
		ORDER BY seen_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContacts(rows)
}

// Search returns cached contacts whose name or email matches query.
func (c *Cache) Search(query string, limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := c.db.Query(`
		SELECT id, name, email, phone, company_name, lifecycle_stage
		FROM recent_contacts
		WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ?
		ORDER BY seen_at DESC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanContacts(rows)
}

// Forget drops one contact from the cache.
func (c *Cache) Forget(id uuid.UUID) error {
	_, err := c.db.Exec(`DELETE FROM recent_contacts WHERE id = ?`, id.String())
	return err
}

func scanContacts(rows *sql.Rows) ([]models.Contact, error) {
	var contacts []models.Contact
	for rows.Next() {
		var contact models.Contact
		var id string
		if err := rows.Scan(&id, &contact.Name, &contact.Email, &contact.Phone,
			&contact.CompanyName, &contact.LifecycleStage); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err == nil {
			contact.ID = parsed
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}
