package store

// Keyword is a stored keyword row. Rows are insert-only: never mutated,
// never deleted.
type Keyword struct {
	ID        int64  `json:"id"`
	Word      string `json:"word"`
	Slot      int64  `json:"slot"`
	Blockhash string `json:"blockhash"`
	BlockTime *int64 `json:"block_time"`
	WordIndex int64  `json:"word_index"`
	CreatedAt string `json:"created_at"`
}

// Poem is a stored poem row. The keyword id list is owned by the poem as a
// value; keywords carry no back-reference.
type Poem struct {
	ID         int64   `json:"id"`
	Date       string  `json:"date"`
	Title      *string `json:"title"`
	Content    string  `json:"content"`
	KeywordIDs []int64 `json:"keyword_ids"`
	CreatedAt  string  `json:"created_at"`
}
