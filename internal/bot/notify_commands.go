package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/flor3z/welcome-bot/internal/notify"
)

const helpText = "**Member notification placeholders**\n" +
	"`{name}` display name of the member\n" +
	"`{mention}` mention of the member (join only)\n" +
	"`{user_avatar}` avatar url of the member, usable as an image url\n" +
	"`{member_count}` number of members in the server\n" +
	"`{online_member_count}` number of online members\n\n" +
	"Write `\\n` for a line break. Running a field command without a value clears that field.\n" +
	"Use `/configure-welcome-channel` and `/configure-leave-channel` to choose where notifications go."

// handleNotifyMember handles the /notify-member command
func (b *Bot) handleNotifyMember(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}

	group := data.Options[0]
	if group.Type == discordgo.ApplicationCommandOptionSubCommand && group.Name == subcommandHelp {
		respondWithMessage(s, i, helpText)
		return
	}
	if group.Type != discordgo.ApplicationCommandOptionSubCommandGroup || len(group.Options) == 0 {
		return
	}

	event, err := domain.ParseEventType(group.Name)
	if err != nil {
		respondWithMessage(s, i, err.Error())
		return
	}
	sub := group.Options[0]

	if err := deferResponse(s, i); err != nil {
		slog.Error("Failed to defer interaction", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.commandTimeout())
	defer cancel()

	if sub.Name == subcommandResetField {
		b.resetNotification(ctx, s, i, event)
		return
	}

	req, err := buildRequest(sub.Name, newCommandOptions(sub.Options, data.Resolved))
	if err != nil {
		slog.Warn("Invalid notify-member arguments", "field", sub.Name, "error", err)
		editResponse(s, i, "Could not read the command arguments. Please try again.")
		return
	}

	result, err := b.notifier.Configure(ctx, i.GuildID, event, req, interactionActor(i))
	if err != nil {
		slog.Error("Failed to configure notification", "guildID", i.GuildID, "event", event, "field", sub.Name, "error", err)
		editResponse(s, i, configureErrorMessage(err))
		return
	}

	editResponse(s, i, configureSuccessMessage(event, sub.Name, result))
	if result.Preview != nil {
		b.sendPreview(s, i, result.Preview)
	}
}

func (b *Bot) resetNotification(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, event domain.EventType) {
	existed, err := b.notifier.Reset(ctx, i.GuildID, event)
	if err != nil {
		slog.Error("Failed to reset notification", "guildID", i.GuildID, "event", event, "error", err)
		editResponse(s, i, configureErrorMessage(err))
		return
	}
	if !existed {
		editResponse(s, i, fmt.Sprintf("No %s notification is configured.", event))
		return
	}
	editResponse(s, i, fmt.Sprintf("The %s notification was deleted.", event))
}

// sendPreview shows the rendered notification to the invoking administrator only
func (b *Bot) sendPreview(s *discordgo.Session, i *discordgo.InteractionCreate, preview *notify.Rendered) {
	content := preview.Content
	if content == "" && preview.Embed == nil {
		content = "*(the notification is empty and will not be sent)*"
	}

	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content:         content,
		Embeds:          preview.Embeds(),
		Files:           preview.Files,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		slog.Error("Failed to send notification preview", "guildID", i.GuildID, "error", err)
	}
}

func configureSuccessMessage(event domain.EventType, field string, result *notify.Result) string {
	var sb strings.Builder
	if field == fieldFull {
		sb.WriteString(fmt.Sprintf("Updated the %s notification.", event))
	} else {
		sb.WriteString(fmt.Sprintf("Updated the %s of the %s notification.", field, event))
	}
	if result.PreviewErr != nil {
		sb.WriteString("\nThe change was saved, but a preview could not be rendered.")
	} else {
		sb.WriteString(" Preview:")
	}
	return sb.String()
}

func configureErrorMessage(err error) string {
	switch {
	case errors.Is(err, notify.ErrMediaUnavailable):
		return "Could not download the attached file. Please upload it again."
	case errors.Is(err, notify.ErrFileSystem):
		return "Could not save the attached file. Nothing was changed."
	case errors.Is(err, notify.ErrStoreFailure):
		return "Could not save the notification. Nothing was changed."
	default:
		return "Something went wrong. Please try again."
	}
}

// interactionActor uses the invoking member as sample data for previews
func interactionActor(i *discordgo.InteractionCreate) notify.Actor {
	if i.Member != nil {
		return memberActor(i.Member)
	}
	if i.User != nil {
		return userActor(i.User, "")
	}
	return notify.Actor{}
}

func memberActor(m *discordgo.Member) notify.Actor {
	if m.User == nil {
		return notify.Actor{Name: m.Nick}
	}
	return userActor(m.User, m.Nick)
}

func userActor(u *discordgo.User, nick string) notify.Actor {
	name := nick
	if name == "" {
		name = u.GlobalName
	}
	if name == "" {
		name = u.Username
	}
	return notify.Actor{
		Name:      name,
		Mention:   u.Mention(),
		AvatarURL: u.AvatarURL(""),
	}
}
