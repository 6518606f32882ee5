// Package notify announces freshly generated poems to a chat surface.
// Announcements are outbound only and best effort: a failed send is logged
// by the caller and never blocks the collection loop.
package notify

import (
	"context"
	"fmt"
)

// Notifier sends a poem announcement.
type Notifier interface {
	PoemPublished(ctx context.Context, date, content string) error
}

// Config selects the announcement provider.
type Config struct {
	Provider  string
	Token     string
	ChatID    int64  // telegram
	ChannelID string // discord
}

// New builds a notifier, or nil when no provider is configured.
func New(cfg Config) (Notifier, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "telegram":
		return newTelegram(cfg.Token, cfg.ChatID)
	case "discord":
		return newDiscord(cfg.Token, cfg.ChannelID)
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Provider)
	}
}

func announcement(date, content string) string {
	return fmt.Sprintf("Poem of the day (%s)\n\n%s", date, content)
}
