// Command backfill fills historical day buckets with keywords and poems.
//
// Slot estimation is a best-effort linear heuristic: the current slot minus
// a fixed slots-per-day offset approximates a past date's slot range, and
// unavailable slots are probed downward. Good enough for entropy sampling;
// not a chain-time oracle.
//
//	backfill                       # from 2026-01-01 through today
//	backfill 2026-03-01            # one day
//	backfill 2026-03-01 2026-03-07 # a range
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/bowerhall/chainverse/internal/config"
	"github.com/bowerhall/chainverse/internal/derivation"
	"github.com/bowerhall/chainverse/internal/llm"
	"github.com/bowerhall/chainverse/internal/logger"
	"github.com/bowerhall/chainverse/internal/poem"
	"github.com/bowerhall/chainverse/internal/solana"
	"github.com/bowerhall/chainverse/internal/store"
	"github.com/bowerhall/chainverse/internal/words"
)

const (
	keywordsPerDay  = 12
	nearbySlotProbe = 50
	defaultStart    = "2026-01-01"
	dateLayout      = "2006-01-02"
)

func init() {
	godotenv.Load()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	if cfg.Generator.APIKey == "" {
		logger.Fatal("generator api key not configured", "provider", cfg.Generator.Provider)
	}

	start, end, err := parseRange(os.Args[1:])
	if err != nil {
		logger.Fatal("invalid date range", "error", err)
	}

	dict, err := words.Load(cfg.WordsPath)
	if err != nil {
		logger.Fatal("failed to load word dictionary", "error", err)
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", "error", err)
	}
	defer db.Close()

	model, err := llm.New(cfg.Generator)
	if err != nil {
		logger.Fatal("failed to create generator", "error", err)
	}

	b := &backfiller{
		chain:      solana.WithURL(cfg.RPCURL),
		derivation: derivation.New(dict),
		db:         db,
		poems:      poem.NewGenerator(model),
		minWords:   cfg.Collector.MinKeywordsForPoem,
	}

	ctx := context.Background()

	currentSlot, err := b.chain.CurrentSlot(ctx)
	if err != nil {
		logger.Fatal("failed to get current slot", "error", err)
	}

	logger.Info("backfill starting", "from", start.Format(dateLayout), "to", end.Format(dateLayout), "current_slot", currentSlot)

	daysProcessed := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := b.processDay(ctx, day, currentSlot); err != nil {
			logger.Error("day failed", "date", day.Format(dateLayout), "error", err)
			continue
		}
		daysProcessed++
	}

	logger.Info("backfill complete", "days", daysProcessed)
}

type backfiller struct {
	chain      *solana.Client
	derivation *derivation.Deriver
	db         *store.Store
	poems      *poem.Generator
	minWords   int
}

func (b *backfiller) processDay(ctx context.Context, day time.Time, currentSlot uint64) error {
	date := day.Format(dateLayout)

	existing, err := b.db.PoemByDate(date)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Info("poem already exists, skipping", "date", date)
		return nil
	}

	keywords, err := b.db.KeywordsForDate(date)
	if err != nil {
		return err
	}

	if needed := keywordsPerDay - len(keywords); needed > 0 {
		logger.Info("collecting keywords", "date", date, "existing", len(keywords), "needed", needed)
		b.collectKeywords(ctx, date, day, currentSlot, needed)

		keywords, err = b.db.KeywordsForDate(date)
		if err != nil {
			return err
		}
	}

	if len(keywords) < b.minWords {
		logger.Warn("not enough keywords for a poem", "date", date, "have", len(keywords), "need", b.minWords)
		return nil
	}

	wordList := make([]string, len(keywords))
	ids := make([]int64, len(keywords))
	for i, kw := range keywords {
		wordList[i] = kw.Word
		ids[i] = kw.ID
	}

	content, err := b.poems.Generate(ctx, wordList)
	if err != nil {
		return fmt.Errorf("generate poem: %w", err)
	}

	if _, err := b.db.UpsertPoem(date, nil, content, ids); err != nil {
		return fmt.Errorf("store poem: %w", err)
	}

	logger.Info("poem generated", "date", date, "keywords", len(ids))
	return nil
}

// collectKeywords spreads target slots across the day's estimated slot
// range and derives multiple keywords from each block it can find.
func (b *backfiller) collectKeywords(ctx context.Context, date string, day time.Time, currentSlot uint64, needed int) {
	daysAgo := int64(time.Now().UTC().Sub(day).Hours() / 24)
	if daysAgo < 0 {
		daysAgo = 0
	}

	baseSlot := currentSlot
	offset := uint64(daysAgo) * solana.SlotsPerDay
	if baseSlot > offset {
		baseSlot -= offset
	}

	slotInterval := uint64(solana.SlotsPerDay / (needed + 1))
	collected := 0

	for i := 0; i < needed && collected < needed; i++ {
		targetSlot := baseSlot + uint64(i)*slotInterval

		block, err := b.findBlockNear(ctx, targetSlot)
		if err != nil {
			logger.Warn("no block found near slot", "slot", targetSlot, "error", err)
			continue
		}

		for _, kw := range b.derivation.DeriveMany(block) {
			if collected >= needed {
				break
			}
			_, inserted, err := b.db.InsertKeywordAt(kw, date)
			if err != nil {
				logger.Error("failed to store keyword", "word", kw.Word, "slot", kw.Slot, "error", err)
				continue
			}
			if inserted {
				collected++
			}
		}
	}
}

// findBlockNear probes downward from the target slot until a block is
// available. Skipped slots are common on Solana.
func (b *backfiller) findBlockNear(ctx context.Context, target uint64) (*solana.Block, error) {
	var lastErr error

	for offset := uint64(0); offset < nearbySlotProbe; offset++ {
		if offset > target {
			break
		}

		block, err := b.chain.GetBlock(ctx, target-offset)
		if err == nil {
			return block, nil
		}

		lastErr = err
		if !errors.Is(err, solana.ErrBlockNotAvailable) {
			return nil, err
		}
	}

	return nil, lastErr
}

func parseRange(args []string) (time.Time, time.Time, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	switch len(args) {
	case 0:
		start, err := time.Parse(dateLayout, defaultStart)
		return start, today, err
	case 1:
		day, err := time.Parse(dateLayout, args[0])
		return day, day, err
	default:
		start, err := time.Parse(dateLayout, args[0])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := time.Parse(dateLayout, args[1])
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("end date %s before start date %s", args[1], args[0])
		}
		return start, end, nil
	}
}
