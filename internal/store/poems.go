package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// UpsertPoem stores the poem for a date. A second write for the same date
// replaces title, content and keyword ids in place; there is never more
// than one poem row per date.
func (s *Store) UpsertPoem(date string, title *string, content string, keywordIDs []int64) (int64, error) {
	idsJSON, err := json.Marshal(keywordIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal keyword ids: %w", err)
	}

	// RETURNING yields the row id on both the insert and the update path;
	// LastInsertId would be stale after an update.
	var id int64
	err = s.db.QueryRow(`
		INSERT INTO poems (date, title, content, keyword_ids)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			keyword_ids = excluded.keyword_ids
		RETURNING id`,
		date, title, content, string(idsJSON)).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// PoemByDate returns the poem for a date, or nil when none exists.
func (s *Store) PoemByDate(date string) (*Poem, error) {
	row := s.db.QueryRow(`
		SELECT id, date, title, content, keyword_ids, created_at
		FROM poems
		WHERE date = ?`,
		date)

	poem, err := scanPoem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return poem, nil
}

// AllPoems returns every poem, newest date first.
func (s *Store) AllPoems() ([]Poem, error) {
	rows, err := s.db.Query(`
		SELECT id, date, title, content, keyword_ids, created_at
		FROM poems
		ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var poems []Poem
	for rows.Next() {
		poem, err := scanPoem(rows)
		if err != nil {
			return nil, err
		}
		poems = append(poems, *poem)
	}

	return poems, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoem(row rowScanner) (*Poem, error) {
	var poem Poem
	var idsJSON string

	if err := row.Scan(&poem.ID, &poem.Date, &poem.Title, &poem.Content, &idsJSON, &poem.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(idsJSON), &poem.KeywordIDs); err != nil {
		return nil, fmt.Errorf("decode keyword ids for %s: %w", poem.Date, err)
	}

	return &poem, nil
}
