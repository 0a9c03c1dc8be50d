package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/welcome-bot/internal/domain"
)

// handleChannel handles /configure-welcome-channel and /configure-leave-channel
func (b *Bot) handleChannel(s *discordgo.Session, i *discordgo.InteractionCreate, event domain.EventType) {
	data := i.ApplicationCommandData()
	channelID := newCommandOptions(data.Options, data.Resolved).id("channel")

	ctx, cancel := context.WithTimeout(context.Background(), b.commandTimeout())
	defer cancel()

	if channelID == "" {
		if err := b.repo.DeleteChannel(ctx, i.GuildID, event); err != nil {
			slog.Error("Failed to delete notification channel", "guildID", i.GuildID, "event", event, "error", err)
			respondWithMessage(s, i, "Failed to update the notification channel. Please try again.")
			return
		}
		respondWithMessage(s, i, fmt.Sprintf("%s notifications are disabled.", eventTitle(event)))
		return
	}

	setting := &domain.ChannelSetting{
		GuildID:   i.GuildID,
		Event:     event,
		ChannelID: channelID,
	}
	if err := b.repo.UpsertChannel(ctx, setting); err != nil {
		slog.Error("Failed to save notification channel", "guildID", i.GuildID, "event", event, "error", err)
		respondWithMessage(s, i, "Failed to update the notification channel. Please try again.")
		return
	}

	respondWithMessage(s, i, fmt.Sprintf("%s notifications will be sent to <#%s>", eventTitle(event), channelID))
}

// handleJoinRole handles /add-default-member-role and /remove-default-member-role
func (b *Bot) handleJoinRole(s *discordgo.Session, i *discordgo.InteractionCreate, add bool) {
	data := i.ApplicationCommandData()
	roleID := newCommandOptions(data.Options, data.Resolved).id("role")
	if roleID == "" {
		respondWithMessage(s, i, "Please choose a role.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.commandTimeout())
	defer cancel()

	if add {
		added, err := b.repo.AddJoinRole(ctx, i.GuildID, roleID)
		if err != nil {
			slog.Error("Failed to add join role", "guildID", i.GuildID, "roleID", roleID, "error", err)
			respondWithMessage(s, i, "Failed to add the role. Please try again.")
			return
		}
		if !added {
			respondWithMessage(s, i, fmt.Sprintf("<@&%s> is already given to new members.", roleID))
			return
		}
		respondWithMessage(s, i, fmt.Sprintf("New members will receive <@&%s>.", roleID))
		return
	}

	removed, err := b.repo.RemoveJoinRole(ctx, i.GuildID, roleID)
	if err != nil {
		slog.Error("Failed to remove join role", "guildID", i.GuildID, "roleID", roleID, "error", err)
		respondWithMessage(s, i, "Failed to remove the role. Please try again.")
		return
	}
	if !removed {
		respondWithMessage(s, i, fmt.Sprintf("<@&%s> is not given to new members.", roleID))
		return
	}
	respondWithMessage(s, i, fmt.Sprintf("New members will no longer receive <@&%s>.", roleID))
}

// handleTestMember sends a notification for the invoking member as if they had
// joined or left
func (b *Bot) handleTestMember(s *discordgo.Session, i *discordgo.InteractionCreate, event domain.EventType) {
	if i.Member == nil || i.Member.User == nil || !b.config.IsOwner(i.Member.User.ID) {
		respondWithMessage(s, i, "This command is only available to bot owners.")
		return
	}

	if err := deferResponse(s, i); err != nil {
		slog.Error("Failed to defer interaction", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.commandTimeout())
	defer cancel()

	sent, err := b.delivery.deliver(ctx, i.GuildID, event, memberActor(i.Member))
	switch {
	case err != nil:
		editResponse(s, i, fmt.Sprintf("Failed to send the %s notification: %v", event, err))
	case !sent:
		editResponse(s, i, fmt.Sprintf("The %s notification or its channel is not configured.", event))
	default:
		editResponse(s, i, fmt.Sprintf("Sent the %s notification.", event))
	}
}

func eventTitle(event domain.EventType) string {
	if event == domain.EventJoin {
		return "Join"
	}
	return "Leave"
}
