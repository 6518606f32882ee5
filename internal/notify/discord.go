package notify

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/bowerhall/chainverse/internal/logger"
)

type discord struct {
	session   *discordgo.Session
	channelID string
}

func newDiscord(token, channelID string) (Notifier, error) {
	if channelID == "" {
		return nil, errors.New("discord channel id is required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	logger.Info("discord notifier ready", "channel", channelID)
	return &discord{session: session, channelID: channelID}, nil
}

func (d *discord) PoemPublished(ctx context.Context, date, content string) error {
	// announcements go over the REST API, no gateway connection needed
	_, err := d.session.ChannelMessageSend(d.channelID, announcement(date, content))
	return err
}
