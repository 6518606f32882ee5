package derivation

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/bowerhall/chainverse/internal/solana"
	"github.com/bowerhall/chainverse/internal/words"
)

// ErrEmptyDictionary is returned when derivation is attempted against a
// vocabulary with no words. Reducing a seed modulo zero is never allowed.
var ErrEmptyDictionary = errors.New("dictionary is empty")

// Source identifies which piece of block data supplied the entropy.
type Source string

const (
	SourceBlockhash         Source = "blockhash"
	SourcePreviousBlockhash Source = "previous_blockhash"
	SourceTransaction       Source = "transaction"
	SourceRewards           Source = "rewards"
	SourceTransactionCount  Source = "tx_count"
)

// Keyword is a word deterministically derived from block entropy, together
// with the block coordinates it came from.
type Keyword struct {
	Word      string
	Slot      uint64
	Blockhash string
	BlockTime *int64
	WordIndex int
	Source    Source
}

// Deriver maps block entropy onto a dictionary. Same entropy string and same
// dictionary contents always yield the same word, on any machine, any run.
type Deriver struct {
	dict *words.Dictionary
}

func New(dict *words.Dictionary) *Deriver {
	return &Deriver{dict: dict}
}

// Seed hashes an entropy string to a numeric seed: sha256 of the UTF-8
// bytes, first 8 bytes read as an unsigned little-endian 64-bit integer.
func Seed(entropy string) uint64 {
	digest := sha256.Sum256([]byte(entropy))
	return binary.LittleEndian.Uint64(digest[:8])
}

// Index reduces an entropy string to a word index in [0, total).
func (d *Deriver) Index(entropy string) (int, error) {
	total := d.dict.Total()
	if total == 0 {
		return 0, ErrEmptyDictionary
	}
	return int(Seed(entropy) % uint64(total)), nil
}

// Derive produces the canonical keyword for a block, using the blockhash as
// entropy. This is what the live collection loop stores, one per slot.
func (d *Deriver) Derive(block *solana.Block) (Keyword, error) {
	return d.DeriveFromSource(block, SourceBlockhash)
}

// DeriveFromSource produces a keyword from a specific entropy source.
func (d *Deriver) DeriveFromSource(block *solana.Block, source Source) (Keyword, error) {
	return d.keywordFor(block, entropyFor(block, source), source)
}

func (d *Deriver) keywordFor(block *solana.Block, entropy string, source Source) (Keyword, error) {
	index, err := d.Index(entropy)
	if err != nil {
		return Keyword{}, err
	}

	word, ok := d.dict.WordAt(index)
	if !ok {
		return Keyword{}, fmt.Errorf("word index %d out of bounds", index)
	}

	return Keyword{
		Word:      word,
		Slot:      block.Slot,
		Blockhash: block.Blockhash,
		BlockTime: block.BlockTime,
		WordIndex: index,
		Source:    source,
	}, nil
}

// DeriveMany extracts a deduplicated set of 1 to 5 keywords from a single
// block: the blockhash word, the previous-blockhash word if it differs, and
// words from up to three sample signatures that are not already present.
// Used by batch backfill, where each block should contribute variety.
func (d *Deriver) DeriveMany(block *solana.Block) []Keyword {
	var keywords []Keyword

	if kw, err := d.Derive(block); err == nil {
		keywords = append(keywords, kw)
	}

	if kw, err := d.DeriveFromSource(block, SourcePreviousBlockhash); err == nil {
		if len(keywords) == 0 || keywords[0].Word != kw.Word {
			keywords = append(keywords, kw)
		}
	}

	for i, sig := range block.SampleSignatures {
		if i >= 3 {
			break
		}
		entropy := fmt.Sprintf("%s:%d", sig, i)
		kw, err := d.keywordFor(block, entropy, SourceTransaction)
		if err != nil {
			continue
		}
		if !containsWord(keywords, kw.Word) {
			keywords = append(keywords, kw)
		}
	}

	return keywords
}

// DeriveBlocks derives keywords across multiple blocks, keeping only the
// first occurrence of each word.
func (d *Deriver) DeriveBlocks(blocks []*solana.Block) []Keyword {
	var all []Keyword
	seen := make(map[string]bool)

	for _, block := range blocks {
		for _, kw := range d.DeriveMany(block) {
			if !seen[kw.Word] {
				seen[kw.Word] = true
				all = append(all, kw)
			}
		}
	}

	return all
}

func containsWord(keywords []Keyword, word string) bool {
	for _, kw := range keywords {
		if kw.Word == word {
			return true
		}
	}
	return false
}

func entropyFor(block *solana.Block, source Source) string {
	switch source {
	case SourcePreviousBlockhash:
		return block.PreviousBlockhash
	case SourceTransaction:
		return strings.Join(block.SampleSignatures, ":")
	case SourceRewards:
		var height uint64
		if block.BlockHeight != nil {
			height = *block.BlockHeight
		}
		return fmt.Sprintf("rewards:%d", height)
	case SourceTransactionCount:
		return fmt.Sprintf("txcount:%d:%d", block.TransactionCount, block.Slot)
	default:
		return block.Blockhash
	}
}
