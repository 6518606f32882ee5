package store

import (
	"testing"

	"github.com/bowerhall/chainverse/internal/derivation"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func testKeyword(slot uint64, word string) derivation.Keyword {
	blockTime := int64(1234567890)
	return derivation.Keyword{
		Word:      word,
		Slot:      slot,
		Blockhash: "hash_" + word,
		BlockTime: &blockTime,
		WordIndex: 7,
		Source:    derivation.SourceBlockhash,
	}
}

func TestInsertKeyword(t *testing.T) {
	s := openTestStore(t)

	id, inserted, err := s.InsertKeyword(testKeyword(100, "moon"))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to report inserted")
	}
	if id == 0 {
		t.Error("expected a row id")
	}
}

func TestInsertKeywordDuplicateSlotAbsorbed(t *testing.T) {
	s := openTestStore(t)

	if _, _, err := s.InsertKeyword(testKeyword(100, "moon")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// same slot again, repeatedly: never an error, never a second row
	for i := 0; i < 3; i++ {
		_, inserted, err := s.InsertKeyword(testKeyword(100, "river"))
		if err != nil {
			t.Fatalf("duplicate insert raised: %v", err)
		}
		if inserted {
			t.Error("duplicate slot reported as inserted")
		}
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM keywords WHERE slot = 100`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row for slot 100, got %d", count)
	}

	// original word preserved, not overwritten by the losing insert
	recent, err := s.RecentKeywords(1)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if recent[0].Word != "moon" {
		t.Errorf("expected original word moon, got %q", recent[0].Word)
	}
}

func TestInsertKeywordAt(t *testing.T) {
	s := openTestStore(t)

	id, inserted, err := s.InsertKeywordAt(testKeyword(200, "ember"), "2026-01-15")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if !inserted || id == 0 {
		t.Fatalf("expected insert, got inserted=%v id=%d", inserted, id)
	}

	keywords, err := s.KeywordsForDate("2026-01-15")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(keywords) != 1 {
		t.Fatalf("expected 1 keyword for pinned date, got %d", len(keywords))
	}
	if keywords[0].CreatedAt != "2026-01-15 12:00:00" {
		t.Errorf("expected pinned noon timestamp, got %q", keywords[0].CreatedAt)
	}

	// conflict absorption applies to pinned inserts too
	_, inserted, err = s.InsertKeywordAt(testKeyword(200, "ember"), "2026-01-16")
	if err != nil {
		t.Fatalf("duplicate insert raised: %v", err)
	}
	if inserted {
		t.Error("duplicate slot reported as inserted")
	}
}

func TestKeywordsForDateOrdering(t *testing.T) {
	s := openTestStore(t)

	// pinned to the same timestamp, so ordering falls back to insert order
	words := []string{"moon", "river", "ember"}
	for i, w := range words {
		if _, _, err := s.InsertKeywordAt(testKeyword(uint64(300+i), w), "2026-01-20"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	keywords, err := s.KeywordsForDate("2026-01-20")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(keywords) != 3 {
		t.Fatalf("expected 3 keywords, got %d", len(keywords))
	}

	for i, w := range words {
		if keywords[i].Word != w {
			t.Errorf("position %d: expected %q, got %q", i, w, keywords[i].Word)
		}
	}

	var lastID int64
	for _, kw := range keywords {
		if kw.ID <= lastID {
			t.Errorf("ids not ascending: %d after %d", kw.ID, lastID)
		}
		lastID = kw.ID
	}
}

func TestKeywordsForDateEmpty(t *testing.T) {
	s := openTestStore(t)

	keywords, err := s.KeywordsForDate("1999-01-01")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(keywords) != 0 {
		t.Errorf("expected no keywords, got %d", len(keywords))
	}
}

func TestRecentKeywordsLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		if _, _, err := s.InsertKeyword(testKeyword(uint64(400+i), "w")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	keywords, err := s.RecentKeywords(3)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(keywords) != 3 {
		t.Errorf("expected 3 keywords, got %d", len(keywords))
	}

	// newest first
	if keywords[0].ID < keywords[1].ID {
		t.Error("expected descending order")
	}
}

func TestCountKeywordsForDate(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 4; i++ {
		if _, _, err := s.InsertKeywordAt(testKeyword(uint64(500+i), "w"), "2026-02-01"); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	count, err := s.CountKeywordsForDate("2026-02-01")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4, got %d", count)
	}
}

func TestUpsertPoemReplacesOnSameDate(t *testing.T) {
	s := openTestStore(t)

	firstID, err := s.UpsertPoem("2026-03-01", nil, "first draft", []int64{1, 2})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	title := "Nocturne"
	secondID, err := s.UpsertPoem("2026-03-01", &title, "final version", []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if firstID != secondID {
		t.Errorf("replacing upsert changed the row id: %d then %d", firstID, secondID)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM poems WHERE date = '2026-03-01'`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 poem row, got %d", count)
	}

	poem, err := s.PoemByDate("2026-03-01")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if poem.Content != "final version" {
		t.Errorf("expected replaced content, got %q", poem.Content)
	}
	if poem.Title == nil || *poem.Title != "Nocturne" {
		t.Error("expected replaced title")
	}
	if len(poem.KeywordIDs) != 3 {
		t.Errorf("expected 3 keyword ids, got %d", len(poem.KeywordIDs))
	}
}

func TestPoemByDateMissing(t *testing.T) {
	s := openTestStore(t)

	poem, err := s.PoemByDate("1999-01-01")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if poem != nil {
		t.Error("expected nil for missing poem")
	}
}

func TestAllPoemsOrderedByDateDescending(t *testing.T) {
	s := openTestStore(t)

	dates := []string{"2026-03-01", "2026-03-03", "2026-03-02"}
	for _, d := range dates {
		if _, err := s.UpsertPoem(d, nil, "poem for "+d, []int64{}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	poems, err := s.AllPoems()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(poems) != 3 {
		t.Fatalf("expected 3 poems, got %d", len(poems))
	}

	want := []string{"2026-03-03", "2026-03-02", "2026-03-01"}
	for i, d := range want {
		if poems[i].Date != d {
			t.Errorf("position %d: expected %s, got %s", i, d, poems[i].Date)
		}
	}
}

func TestPoemKeywordIDsRoundTrip(t *testing.T) {
	s := openTestStore(t)

	ids := []int64{42, 7, 99}
	if _, err := s.UpsertPoem("2026-04-01", nil, "poem", ids); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	poem, err := s.PoemByDate("2026-04-01")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if len(poem.KeywordIDs) != len(ids) {
		t.Fatalf("expected %d ids, got %d", len(ids), len(poem.KeywordIDs))
	}
	for i, id := range ids {
		if poem.KeywordIDs[i] != id {
			t.Errorf("id %d: expected %d, got %d", i, id, poem.KeywordIDs[i])
		}
	}
}
