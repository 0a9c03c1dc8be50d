package bot

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/welcome-bot/internal/domain"
)

func (b *Bot) handleMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.commandTimeout())
	defer cancel()

	if _, err := b.delivery.deliver(ctx, m.GuildID, domain.EventJoin, memberActor(m.Member)); err != nil {
		slog.Error("Failed to send join notification", "guildID", m.GuildID, "userID", m.User.ID, "error", err)
	}
	b.addJoinRoles(ctx, s, m.GuildID, m.User.ID)
}

func (b *Bot) handleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.commandTimeout())
	defer cancel()

	if _, err := b.delivery.deliver(ctx, m.GuildID, domain.EventLeave, memberActor(m.Member)); err != nil {
		slog.Error("Failed to send leave notification", "guildID", m.GuildID, "userID", m.User.ID, "error", err)
	}
}

// addJoinRoles gives a new member the guild's default roles
func (b *Bot) addJoinRoles(ctx context.Context, s *discordgo.Session, guildID, userID string) {
	roles, err := b.repo.GetJoinRoles(ctx, guildID)
	if err != nil {
		slog.Error("Failed to get join roles", "guildID", guildID, "error", err)
		return
	}

	for _, roleID := range roles {
		if err := s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
			slog.Warn("Failed to add join role", "guildID", guildID, "userID", userID, "roleID", roleID, "error", err)
		}
	}
}
