package bot

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Command names
const (
	cmdNotifyMember      = "notify-member"
	cmdWelcomeChannel    = "configure-welcome-channel"
	cmdLeaveChannel      = "configure-leave-channel"
	cmdAddMemberRole     = "add-default-member-role"
	cmdRemoveMemberRole  = "remove-default-member-role"
	cmdTestMemberAdd     = "test-member-add"
	cmdTestMemberRemove  = "test-member-remove"
	subcommandHelp       = "help"
	subcommandResetField = "reset"
)

var adminPermission int64 = discordgo.PermissionAdministrator

var guildOnly = false

func textOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
	}
}

func attachmentOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionAttachment,
		Name:        name,
		Description: description,
	}
}

// fieldSubcommands builds the per-field subcommands of a /notify-member event group
func fieldSubcommands(event string) []*discordgo.ApplicationCommandOption {
	full := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        fieldFull,
		Description: fmt.Sprintf("Replace the whole %s notification", event),
	}
	for _, f := range textFields {
		full.Options = append(full.Options, textOption(f, "Text for the "+f))
	}
	for _, f := range mediaFields {
		full.Options = append(full.Options,
			attachmentOption(f, "Image file for the "+f),
			textOption(f+"-url", "Image url for the "+f),
		)
	}

	subs := []*discordgo.ApplicationCommandOption{full}
	for _, f := range textFields {
		subs = append(subs, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        f,
			Description: fmt.Sprintf("Set the %s of the %s notification, or clear it when empty", f, event),
			Options:     []*discordgo.ApplicationCommandOption{textOption("text", "Text, supports placeholders and \\n")},
		})
	}
	for _, f := range mediaFields {
		subs = append(subs, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        f,
			Description: fmt.Sprintf("Set the %s of the %s notification, or clear it when empty", f, event),
			Options: []*discordgo.ApplicationCommandOption{
				attachmentOption("file", "Image file, takes precedence over url"),
				textOption("url", "Image url, supports {user_avatar}"),
			},
		})
	}
	subs = append(subs, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        subcommandResetField,
		Description: fmt.Sprintf("Delete the %s notification", event),
	})
	return subs
}

func channelCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              description,
		DefaultMemberPermissions: &adminPermission,
		DMPermission:             &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Channel to send to, leave empty to disable",
				ChannelTypes: []discordgo.ChannelType{
					discordgo.ChannelTypeGuildText,
					discordgo.ChannelTypeGuildNews,
				},
			},
		},
	}
}

func roleCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     name,
		Description:              description,
		DefaultMemberPermissions: &adminPermission,
		DMPermission:             &guildOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "role",
				Description: "The role",
				Required:    true,
			},
		},
	}
}

// Slash command definitions
func getCommandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     cmdNotifyMember,
			Description:              "Configure the messages sent when members join or leave",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &guildOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        "join",
					Description: "Configure the join notification",
					Options:     fieldSubcommands("join"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
					Name:        "leave",
					Description: "Configure the leave notification",
					Options:     fieldSubcommands("leave"),
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandHelp,
					Description: "Show the available placeholders",
				},
			},
		},
		channelCommand(cmdWelcomeChannel, "Set the channel for join notifications"),
		channelCommand(cmdLeaveChannel, "Set the channel for leave notifications"),
		roleCommand(cmdAddMemberRole, "Give a role to every member that joins"),
		roleCommand(cmdRemoveMemberRole, "Stop giving a role to members that join"),
		{
			Name:                     cmdTestMemberAdd,
			Description:              "Send the join notification for yourself (bot owners only)",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &guildOnly,
		},
		{
			Name:                     cmdTestMemberRemove,
			Description:              "Send the leave notification for yourself (bot owners only)",
			DefaultMemberPermissions: &adminPermission,
			DMPermission:             &guildOnly,
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	slog.Info("Registering slash commands")

	registered, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID,
		"", // Empty string = global command
		getCommandDefinitions(),
	)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.commands = registered
	slog.Info("Slash commands registered", "count", len(registered))
	return nil
}

// Helper functions

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}

func respondWithMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if err := s.InteractionRespond(i.Interaction, ephemeral(content)); err != nil {
		slog.Error("Failed to respond to interaction", "error", err)
	}
}

func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	}); err != nil {
		slog.Error("Failed to edit interaction response", "error", err)
	}
}
