package store

import (
	"database/sql"

	"github.com/bowerhall/chainverse/internal/derivation"
)

// InsertKeyword stores a derived keyword. The slot column is unique:
// inserting a slot that already has a keyword is routine (the collector and
// backfill revisit slots) and reports inserted=false instead of an error.
func (s *Store) InsertKeyword(kw derivation.Keyword) (int64, bool, error) {
	result, err := s.db.Exec(`
		INSERT INTO keywords (word, slot, blockhash, block_time, word_index)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO NOTHING`,
		kw.Word, int64(kw.Slot), kw.Blockhash, kw.BlockTime, int64(kw.WordIndex))
	if err != nil {
		return 0, false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected == 0 {
		return 0, false, nil
	}

	id, err := result.LastInsertId()
	return id, true, err
}

// InsertKeywordAt stores a keyword with its creation time pinned to noon on
// the given date. Used by backfill so historical keywords land in the right
// day bucket. Same conflict absorption as InsertKeyword.
func (s *Store) InsertKeywordAt(kw derivation.Keyword, date string) (int64, bool, error) {
	createdAt := date + " 12:00:00"

	result, err := s.db.Exec(`
		INSERT INTO keywords (word, slot, blockhash, block_time, word_index, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO NOTHING`,
		kw.Word, int64(kw.Slot), kw.Blockhash, kw.BlockTime, int64(kw.WordIndex), createdAt)
	if err != nil {
		return 0, false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected == 0 {
		return 0, false, nil
	}

	id, err := result.LastInsertId()
	return id, true, err
}

// KeywordsForDate returns the keywords whose creation time falls on the
// given UTC date, oldest first. The id tiebreak keeps ordering stable when
// several rows share a timestamp.
func (s *Store) KeywordsForDate(date string) ([]Keyword, error) {
	rows, err := s.db.Query(`
		SELECT id, word, slot, blockhash, block_time, word_index, created_at
		FROM keywords
		WHERE DATE(created_at) = ?
		ORDER BY created_at ASC, id ASC`,
		date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKeywords(rows)
}

// RecentKeywords returns the newest keywords, newest first, up to limit.
func (s *Store) RecentKeywords(limit int) ([]Keyword, error) {
	rows, err := s.db.Query(`
		SELECT id, word, slot, blockhash, block_time, word_index, created_at
		FROM keywords
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanKeywords(rows)
}

// CountKeywordsForDate returns how many keywords the given date has
// accumulated.
func (s *Store) CountKeywordsForDate(date string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM keywords WHERE DATE(created_at) = ?`, date).Scan(&count)
	return count, err
}

func scanKeywords(rows *sql.Rows) ([]Keyword, error) {
	var keywords []Keyword

	for rows.Next() {
		var kw Keyword
		if err := rows.Scan(&kw.ID, &kw.Word, &kw.Slot, &kw.Blockhash, &kw.BlockTime, &kw.WordIndex, &kw.CreatedAt); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}

	return keywords, rows.Err()
}
