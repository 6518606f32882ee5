package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bowerhall/chainverse/internal/archive"
	"github.com/bowerhall/chainverse/internal/llm"
	"github.com/bowerhall/chainverse/internal/notify"
	"github.com/bowerhall/chainverse/internal/solana"
)

const (
	defaultDatabasePath    = "chain_verse.db"
	defaultWordsPath       = "words.json"
	defaultPort            = 3000
	defaultIntervalMinutes = 90
	defaultMinKeywords     = 8
)

func Load() (*Config, error) {
	dbPath := os.Getenv("CHAINVERSE_DB")
	if dbPath == "" {
		dbPath = defaultDatabasePath
	}

	wordsPath := os.Getenv("CHAINVERSE_WORDS")
	if wordsPath == "" {
		wordsPath = defaultWordsPath
	}

	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		rpcURL = solana.MainnetRPCURL
	}

	port, err := intEnv("PORT", defaultPort)
	if err != nil {
		return nil, err
	}

	collectorCfg, err := loadCollectorConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabasePath: dbPath,
		WordsPath:    wordsPath,
		RPCURL:       rpcURL,
		Port:         port,
		Collector:    collectorCfg,
		Generator:    loadGeneratorConfig(),
		Notify:       loadNotifyConfig(),
		Archive:      loadArchiveConfig(),
	}, nil
}

func loadCollectorConfig() (CollectorConfig, error) {
	interval, err := intEnv("KEYWORD_INTERVAL_MINUTES", defaultIntervalMinutes)
	if err != nil {
		return CollectorConfig{}, err
	}
	if interval < 1 {
		return CollectorConfig{}, fmt.Errorf("KEYWORD_INTERVAL_MINUTES must be at least 1, got %d", interval)
	}

	minKeywords, err := intEnv("MIN_KEYWORDS_FOR_POEM", defaultMinKeywords)
	if err != nil {
		return CollectorConfig{}, err
	}
	if minKeywords < 1 {
		return CollectorConfig{}, fmt.Errorf("MIN_KEYWORDS_FOR_POEM must be at least 1, got %d", minKeywords)
	}

	return CollectorConfig{
		IntervalMinutes:    interval,
		CronSchedule:       os.Getenv("COLLECTION_SCHEDULE"),
		MinKeywordsForPoem: minKeywords,
	}, nil
}

func loadGeneratorConfig() llm.Config {
	provider := os.Getenv("GENERATOR_PROVIDER")
	if provider == "" {
		provider = "openrouter"
	}

	apiKey := os.Getenv("GENERATOR_API_KEY")
	if apiKey == "" && provider == "openrouter" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" && provider == "claude" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return llm.Config{
		Provider: provider,
		APIKey:   apiKey,
		Model:    os.Getenv("GENERATOR_MODEL"),
		BaseURL:  os.Getenv("GENERATOR_BASE_URL"),
	}
}

func loadNotifyConfig() notify.Config {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		chatID, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
		return notify.Config{Provider: "telegram", Token: token, ChatID: chatID}
	}

	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		return notify.Config{Provider: "discord", Token: token, ChannelID: os.Getenv("DISCORD_CHANNEL_ID")}
	}

	return notify.Config{}
}

func loadArchiveConfig() ArchiveConfig {
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")

	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	return ArchiveConfig{
		Enabled: accessKey != "" && secretKey != "",
		Config: archive.Config{
			Endpoint:  endpoint,
			AccessKey: accessKey,
			SecretKey: secretKey,
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
			Bucket:    os.Getenv("MINIO_BUCKET"),
		},
	}
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}

	return value, nil
}
