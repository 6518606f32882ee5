package config

import (
	"github.com/bowerhall/chainverse/internal/archive"
	"github.com/bowerhall/chainverse/internal/llm"
	"github.com/bowerhall/chainverse/internal/notify"
)

// Config is the process configuration, sourced from the environment once at
// startup. Nothing reads env vars after Load.
type Config struct {
	DatabasePath string
	WordsPath    string
	RPCURL       string
	Port         int

	Collector CollectorConfig
	Generator llm.Config
	Notify    notify.Config
	Archive   ArchiveConfig
}

// CollectorConfig drives the collection loop.
type CollectorConfig struct {
	IntervalMinutes    int
	CronSchedule       string
	MinKeywordsForPoem int
}

// ArchiveConfig enables the optional poem archive.
type ArchiveConfig struct {
	Enabled bool
	archive.Config
}
