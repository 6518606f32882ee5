package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bowerhall/chainverse/internal/derivation"
	"github.com/bowerhall/chainverse/internal/logger"
	"github.com/bowerhall/chainverse/internal/solana"
	"github.com/bowerhall/chainverse/internal/store"
)

// BlockSource supplies the newest confirmed block.
type BlockSource interface {
	LatestBlock(ctx context.Context) (*solana.Block, error)
}

// PoemGenerator turns a day's keywords into a poem.
type PoemGenerator interface {
	Generate(ctx context.Context, keywords []string) (string, error)
}

// Publisher is told about each freshly generated poem. Publish failures are
// logged and never fail the cycle.
type Publisher interface {
	PoemPublished(ctx context.Context, date, content string) error
}

// Config is the collector's full configuration, passed by value.
type Config struct {
	IntervalMinutes    int
	CronSchedule       string // optional 5-field cron expression, overrides the interval
	MinKeywordsForPoem int
}

// cronParser accepts standard 5-field cron expressions.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Collector runs the collection loop: each cycle derives one keyword from
// the newest block, stores it, and generates the daily poem once enough
// keywords have accumulated. No cycle error ever stops the loop.
type Collector struct {
	chain      BlockSource
	derivation *derivation.Deriver
	db         *store.Store
	poems      PoemGenerator
	cfg        Config
	publishers []Publisher
}

func New(chain BlockSource, deriver *derivation.Deriver, db *store.Store, poems PoemGenerator, cfg Config) *Collector {
	return &Collector{
		chain:      chain,
		derivation: deriver,
		db:         db,
		poems:      poems,
		cfg:        cfg,
	}
}

// AddPublisher registers a publisher for generated poems.
func (c *Collector) AddPublisher(p Publisher) {
	c.publishers = append(c.publishers, p)
}

// Today returns the current UTC calendar date, the key of the day bucket.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Run drives collection cycles until the context is cancelled. With a cron
// schedule configured, cycles fire at schedule times; otherwise on a fixed
// interval.
func (c *Collector) Run(ctx context.Context) error {
	if c.cfg.CronSchedule != "" {
		sched, err := cronParser.Parse(c.cfg.CronSchedule)
		if err != nil {
			return fmt.Errorf("invalid collection schedule: %w", err)
		}
		logger.Info("collector starting", "schedule", c.cfg.CronSchedule)
		return c.runCron(ctx, sched)
	}

	interval := time.Duration(c.cfg.IntervalMinutes) * time.Minute
	logger.Info("collector starting", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("collector stopping")
			return ctx.Err()
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

func (c *Collector) runCron(ctx context.Context, sched cron.Schedule) error {
	for {
		next := sched.Next(time.Now())

		select {
		case <-ctx.Done():
			logger.Debug("collector stopping")
			return ctx.Err()
		case <-time.After(time.Until(next)):
			c.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single collection cycle. The two phases are isolated:
// a failed keyword collection still lets the poem check run on previously
// collected data, and vice versa.
func (c *Collector) RunOnce(ctx context.Context) {
	if err := c.collectKeyword(ctx); err != nil {
		logger.Error("keyword collection failed", "error", err)
	}

	if err := c.maybeGeneratePoem(ctx); err != nil {
		logger.Error("poem generation cycle failed", "error", err)
	}
}

// collectKeyword fetches the newest confirmed block, derives one keyword
// from its blockhash and stores it. A slot that already has a keyword is
// absorbed silently.
func (c *Collector) collectKeyword(ctx context.Context) error {
	block, err := c.chain.LatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest block: %w", err)
	}

	kw, err := c.derivation.Derive(block)
	if err != nil {
		return fmt.Errorf("derive keyword: %w", err)
	}

	id, inserted, err := c.db.InsertKeyword(kw)
	if err != nil {
		return fmt.Errorf("store keyword: %w", err)
	}

	if inserted {
		logger.Info("keyword collected", "word", kw.Word, "slot", kw.Slot, "id", id)
	} else {
		logger.Debug("keyword already collected", "slot", kw.Slot)
	}

	return nil
}

// maybeGeneratePoem generates today's poem once the day has accumulated
// enough keywords and no poem exists yet. A failed generation leaves no
// poem row, so the next cycle retries naturally.
func (c *Collector) maybeGeneratePoem(ctx context.Context) error {
	today := Today()

	existing, err := c.db.PoemByDate(today)
	if err != nil {
		return fmt.Errorf("check existing poem: %w", err)
	}
	if existing != nil {
		return nil
	}

	keywords, err := c.db.KeywordsForDate(today)
	if err != nil {
		return fmt.Errorf("load today's keywords: %w", err)
	}

	if len(keywords) < c.cfg.MinKeywordsForPoem {
		logger.Debug("not enough keywords yet", "date", today, "have", len(keywords), "need", c.cfg.MinKeywordsForPoem)
		return nil
	}

	words := make([]string, len(keywords))
	ids := make([]int64, len(keywords))
	for i, kw := range keywords {
		words[i] = kw.Word
		ids[i] = kw.ID
	}

	logger.Info("generating poem", "date", today, "keywords", len(words))

	content, err := c.poems.Generate(ctx, words)
	if err != nil {
		return fmt.Errorf("generate poem for %s: %w", today, err)
	}

	if _, err := c.db.UpsertPoem(today, nil, content, ids); err != nil {
		return fmt.Errorf("store poem for %s: %w", today, err)
	}

	logger.Info("poem stored", "date", today, "keywords", len(ids))
	c.publish(ctx, today, content)

	return nil
}

func (c *Collector) publish(ctx context.Context, date, content string) {
	for _, p := range c.publishers {
		if err := p.PoemPublished(ctx, date, content); err != nil {
			logger.Error("poem publish failed", "date", date, "error", err)
		}
	}
}
