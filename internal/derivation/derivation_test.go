package derivation

import (
	"fmt"
	"testing"

	"github.com/bowerhall/chainverse/internal/solana"
	"github.com/bowerhall/chainverse/internal/words"
)

func testDictionary(size int) *words.Dictionary {
	nouns := make([]string, size)
	for i := range nouns {
		nouns[i] = fmt.Sprintf("word%03d", i)
	}
	return words.New(nouns, nil, nil)
}

func testBlock() *solana.Block {
	blockTime := int64(1234567890)
	height := uint64(1000)
	return &solana.Block{
		Slot:              12345,
		Blockhash:         "test_hash_123",
		PreviousBlockhash: "prev_hash_456",
		BlockTime:         &blockTime,
		BlockHeight:       &height,
		ParentSlot:        12344,
		TransactionCount:  50,
		SampleSignatures:  []string{"sig1", "sig2", "sig3"},
	}
}

func TestSeedGolden(t *testing.T) {
	// sha256("abc") = ba7816bf...; first 8 bytes little-endian
	const want = uint64(16919744041952114874)
	if got := Seed("abc"); got != want {
		t.Errorf("Seed(abc) = %d, want %d", got, want)
	}
}

func TestIndexGolden(t *testing.T) {
	d := New(testDictionary(100))

	index, err := d.Index("abc")
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if index != 74 {
		t.Errorf("Index(abc) with N=100 = %d, want 74", index)
	}
}

func TestIndexStableAcrossDictionaryInstances(t *testing.T) {
	first, err := New(testDictionary(100)).Index("abc")
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	second, err := New(testDictionary(100)).Index("abc")
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}

	if first != second {
		t.Errorf("index differs across dictionary instances: %d vs %d", first, second)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	d := New(testDictionary(100))
	block := testBlock()

	kw1, err := d.Derive(block)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	kw2, err := d.Derive(block)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if kw1.Word != kw2.Word || kw1.WordIndex != kw2.WordIndex {
		t.Errorf("derivation not deterministic: %+v vs %+v", kw1, kw2)
	}
	if kw1.Slot != block.Slot {
		t.Errorf("expected slot %d, got %d", block.Slot, kw1.Slot)
	}
	if kw1.Source != SourceBlockhash {
		t.Errorf("expected blockhash source, got %s", kw1.Source)
	}
}

func TestDeriveFromSourceUsesDistinctEntropy(t *testing.T) {
	d := New(testDictionary(100))
	block := testBlock()

	// golden indexes for the test block's entropy strings
	cases := []struct {
		source Source
		want   int
	}{
		{SourceBlockhash, 21},         // "test_hash_123"
		{SourcePreviousBlockhash, 25}, // "prev_hash_456"
	}

	for _, tc := range cases {
		kw, err := d.DeriveFromSource(block, tc.source)
		if err != nil {
			t.Fatalf("DeriveFromSource(%s) failed: %v", tc.source, err)
		}
		if kw.WordIndex != tc.want {
			t.Errorf("source %s: index %d, want %d", tc.source, kw.WordIndex, tc.want)
		}
	}
}

func TestDeriveManyNoDuplicates(t *testing.T) {
	d := New(testDictionary(100))
	keywords := d.DeriveMany(testBlock())

	if len(keywords) < 1 || len(keywords) > 5 {
		t.Fatalf("expected 1 to 5 keywords, got %d", len(keywords))
	}

	seen := make(map[string]bool)
	for _, kw := range keywords {
		if seen[kw.Word] {
			t.Errorf("duplicate word %q", kw.Word)
		}
		seen[kw.Word] = true
	}
}

func TestDeriveManyDedupesAcrossSources(t *testing.T) {
	// a single-word dictionary forces every source onto the same word
	d := New(testDictionary(1))
	keywords := d.DeriveMany(testBlock())

	if len(keywords) != 1 {
		t.Errorf("expected all sources to collapse to 1 keyword, got %d", len(keywords))
	}
}

func TestDeriveEmptyDictionary(t *testing.T) {
	d := New(words.New(nil, nil, nil))

	if _, err := d.Derive(testBlock()); err != ErrEmptyDictionary {
		t.Errorf("expected ErrEmptyDictionary, got %v", err)
	}
}

func TestDeriveBlocksDedupesAcrossBlocks(t *testing.T) {
	d := New(testDictionary(1))

	blocks := []*solana.Block{testBlock(), testBlock()}
	keywords := d.DeriveBlocks(blocks)

	if len(keywords) != 1 {
		t.Errorf("expected 1 unique keyword across identical blocks, got %d", len(keywords))
	}
}

func TestDifferentBlocksCanDiffer(t *testing.T) {
	d := New(testDictionary(100))

	a := testBlock()
	a.Blockhash = "hash_1"
	b := testBlock()
	b.Blockhash = "hash_2"

	kwA, err := d.Derive(a)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	kwB, err := d.Derive(b)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	// golden: "hash_1" -> 95, "hash_2" -> 24 with N=100
	if kwA.WordIndex != 95 || kwB.WordIndex != 24 {
		t.Errorf("unexpected indexes: %d and %d, want 95 and 24", kwA.WordIndex, kwB.WordIndex)
	}
}
