package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/flor3z/welcome-bot/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannels struct {
	channelID string
	err       error
}

func (f fakeChannels) GetChannel(context.Context, string, domain.EventType) (string, error) {
	return f.channelID, f.err
}

type fakeRenderer struct {
	msg   *notify.Rendered
	err   error
	calls int
}

func (f *fakeRenderer) Render(context.Context, string, domain.EventType, notify.Actor) (*notify.Rendered, error) {
	f.calls++
	return f.msg, f.err
}

type fakeSender struct {
	channelID string
	sent      []*discordgo.MessageSend
	err       error
}

func (f *fakeSender) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.channelID = channelID
	f.sent = append(f.sent, data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

var joiner = notify.Actor{Name: "alice", Mention: "<@42>"}

func TestDeliver(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the rendered notification to the channel", func(t *testing.T) {
		embed := &discordgo.MessageEmbed{Title: "Welcome"}
		file := &discordgo.File{Name: "banner.png"}
		renderer := &fakeRenderer{msg: &notify.Rendered{Content: "hi <@42>", Embed: embed, Files: []*discordgo.File{file}}}
		sender := &fakeSender{}
		d := &delivery{channels: fakeChannels{channelID: "100"}, renderer: renderer, sender: sender}

		sent, err := d.deliver(ctx, "1", domain.EventJoin, joiner)
		require.NoError(t, err)
		assert.True(t, sent)

		assert.Equal(t, "100", sender.channelID)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "hi <@42>", sender.sent[0].Content)
		assert.Equal(t, []*discordgo.MessageEmbed{embed}, sender.sent[0].Embeds)
		assert.Equal(t, []*discordgo.File{file}, sender.sent[0].Files)
	})

	t.Run("no channel is not sent", func(t *testing.T) {
		renderer := &fakeRenderer{msg: &notify.Rendered{Content: "hi"}}
		sender := &fakeSender{}
		d := &delivery{channels: fakeChannels{}, renderer: renderer, sender: sender}

		sent, err := d.deliver(ctx, "1", domain.EventJoin, joiner)
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Zero(t, renderer.calls)
		assert.Empty(t, sender.sent)
	})

	t.Run("unconfigured notification is not sent", func(t *testing.T) {
		sender := &fakeSender{}
		d := &delivery{channels: fakeChannels{channelID: "100"}, renderer: &fakeRenderer{}, sender: sender}

		sent, err := d.deliver(ctx, "1", domain.EventLeave, joiner)
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, sender.sent)
	})

	t.Run("empty render is not sent", func(t *testing.T) {
		sender := &fakeSender{}
		d := &delivery{channels: fakeChannels{channelID: "100"}, renderer: &fakeRenderer{msg: &notify.Rendered{}}, sender: sender}

		sent, err := d.deliver(ctx, "1", domain.EventJoin, joiner)
		require.NoError(t, err)
		assert.False(t, sent)
		assert.Empty(t, sender.sent)
	})

	t.Run("errors are returned", func(t *testing.T) {
		boom := errors.New("boom")
		msg := &notify.Rendered{Content: "hi"}

		tests := []struct {
			name string
			d    *delivery
		}{
			{"channel lookup", &delivery{channels: fakeChannels{err: boom}, renderer: &fakeRenderer{msg: msg}, sender: &fakeSender{}}},
			{"render", &delivery{channels: fakeChannels{channelID: "100"}, renderer: &fakeRenderer{err: boom}, sender: &fakeSender{}}},
			{"send", &delivery{channels: fakeChannels{channelID: "100"}, renderer: &fakeRenderer{msg: msg}, sender: &fakeSender{err: boom}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				sent, err := tt.d.deliver(ctx, "1", domain.EventJoin, joiner)
				assert.ErrorIs(t, err, boom)
				assert.False(t, sent)
			})
		}
	})
}
