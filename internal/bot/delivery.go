package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/flor3z/welcome-bot/internal/metrics"
	"github.com/flor3z/welcome-bot/internal/notify"
)

// channelLookup finds the channel notifications of an event are sent to.
// An empty ID means none is configured.
type channelLookup interface {
	GetChannel(ctx context.Context, guildID string, event domain.EventType) (string, error)
}

// notificationRenderer renders the stored notification of an event, or nil
// when none is configured
type notificationRenderer interface {
	Render(ctx context.Context, guildID string, event domain.EventType, actor notify.Actor) (*notify.Rendered, error)
}

// messageSender posts a message to a channel
type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// delivery sends rendered member notifications to their configured channel
type delivery struct {
	channels channelLookup
	renderer notificationRenderer
	sender   messageSender
}

// deliver renders the notification of event and sends it to the configured
// channel. It reports false when the notification or channel is not set up.
func (d *delivery) deliver(ctx context.Context, guildID string, event domain.EventType, actor notify.Actor) (bool, error) {
	channelID, err := d.channels.GetChannel(ctx, guildID, event)
	if err != nil {
		return false, fmt.Errorf("failed to get notification channel: %w", err)
	}
	if channelID == "" {
		return false, nil
	}

	msg, err := d.renderer.Render(ctx, guildID, event, actor)
	if err != nil {
		metrics.NotificationsSentTotal.WithLabelValues(event.String(), "render_failure").Inc()
		return false, err
	}
	if msg == nil || (msg.Content == "" && msg.Embed == nil) {
		return false, nil
	}

	_, err = d.sender.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: msg.Content,
		Embeds:  msg.Embeds(),
		Files:   msg.Files,
	}, discordgo.WithContext(ctx))
	if err != nil {
		metrics.NotificationsSentTotal.WithLabelValues(event.String(), "send_failure").Inc()
		return false, fmt.Errorf("failed to send message: %w", err)
	}

	metrics.NotificationsSentTotal.WithLabelValues(event.String(), "success").Inc()
	slog.Debug("Sent member notification", "guildID", guildID, "event", event, "channelID", channelID)
	return true, nil
}
