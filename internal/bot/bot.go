package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/welcome-bot/internal/config"
	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/flor3z/welcome-bot/internal/fetch"
	"github.com/flor3z/welcome-bot/internal/media"
	"github.com/flor3z/welcome-bot/internal/notify"
	"github.com/flor3z/welcome-bot/internal/storage"
	"github.com/flor3z/welcome-bot/internal/sweeper"
)

// Bot represents the Discord bot instance
type Bot struct {
	config   *config.Config
	session  *discordgo.Session
	repo     *storage.Repository
	files    *media.Store
	notifier *notify.Service
	delivery *delivery
	sweeper  *sweeper.Sweeper
	commands []*discordgo.ApplicationCommand
}

// New creates a new Bot instance
func New(cfg *config.Config) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Member events need the privileged server members intent
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	// Initialize storage
	repo, err := storage.NewRepository(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	files, err := media.New(cfg.DataDirectory)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to initialize user content directory: %w", err)
	}

	b := &Bot{
		config:  cfg,
		session: session,
		repo:    repo,
		files:   files,
	}
	b.notifier = notify.NewService(repo, files, fetch.NewClient(cfg.DownloadTimeout()), b)
	b.delivery = &delivery{channels: repo, renderer: b.notifier, sender: session}

	// Register event handlers
	b.registerHandlers()

	return b, nil
}

// Start opens the Discord connection and starts background tasks
func (b *Bot) Start(ctx context.Context) error {
	// Open Discord connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	slog.Info("Connected to Discord", "user", b.session.State.User.Username)

	// Register slash commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	// Start the orphaned file sweeper
	if b.config.SweepInterval() > 0 {
		b.sweeper = sweeper.New(b.repo, b.files, b.config.SweepInterval(), b.config.SweepGrace())
		b.sweeper.Start(ctx)
	}

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	// Stop the sweeper
	if b.sweeper != nil {
		b.sweeper.Stop()
	}

	// Close Discord session first so no handler uses storage after it closes
	var err error
	if b.session != nil {
		err = b.session.Close()
	}

	// Close storage
	if b.repo != nil {
		b.repo.Close()
	}

	return err
}

// GuildCounts returns the approximate member and online counts of a guild
func (b *Bot) GuildCounts(ctx context.Context, guildID string) (int, int, error) {
	guild, err := b.session.GuildWithCounts(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get guild counts: %w", err)
	}
	return guild.ApproximateMemberCount, guild.ApproximatePresenceCount, nil
}

func (b *Bot) commandTimeout() time.Duration {
	return b.config.CommandTimeout()
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handleMemberAdd)
	b.session.AddHandler(b.handleMemberRemove)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("Bot is ready", "guilds", len(r.Guilds))
	})
}

// handleInteraction processes slash command interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	slog.Debug("Received command", "command", data.Name, "guild", i.GuildID)

	if i.GuildID == "" {
		respondWithMessage(s, i, "This command can only be used in a server.")
		return
	}

	switch data.Name {
	case cmdNotifyMember:
		b.handleNotifyMember(s, i)
	case cmdWelcomeChannel:
		b.handleChannel(s, i, domain.EventJoin)
	case cmdLeaveChannel:
		b.handleChannel(s, i, domain.EventLeave)
	case cmdAddMemberRole:
		b.handleJoinRole(s, i, true)
	case cmdRemoveMemberRole:
		b.handleJoinRole(s, i, false)
	case cmdTestMemberAdd:
		b.handleTestMember(s, i, domain.EventJoin)
	case cmdTestMemberRemove:
		b.handleTestMember(s, i, domain.EventLeave)
	default:
		slog.Warn("Unknown command", "command", data.Name)
	}
}
