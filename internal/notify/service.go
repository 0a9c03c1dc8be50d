package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/flor3z/welcome-bot/internal/media"
	"github.com/flor3z/welcome-bot/internal/metrics"
)

// Store persists one notification format per guild and event type.
// FindNotification returns nil without error when none is stored.
type Store interface {
	FindNotification(ctx context.Context, guildID string, event domain.EventType) (*domain.NotificationConfig, error)
	UpsertNotification(ctx context.Context, cfg *domain.NotificationConfig) error
	DeleteNotification(ctx context.Context, guildID string, event domain.EventType) error
}

// GuildCounter looks up approximate member and online counts
type GuildCounter interface {
	GuildCounts(ctx context.Context, guildID string) (members, online int, err error)
}

// Actor identifies the member a notification is rendered for
type Actor struct {
	Name      string
	Mention   string
	AvatarURL string
}

// Result is the outcome of a successful configuration. Preview is nil and
// PreviewErr set when the change was saved but could not be previewed.
type Result struct {
	Config     domain.NotificationConfig
	Orphans    []string
	Preview    *Rendered
	PreviewErr error
}

// Service configures and renders member notifications
type Service struct {
	store    Store
	files    *media.Store
	resolver *Resolver
	renderer *Renderer
	counter  GuildCounter
}

// NewService wires the notification components. counter may be nil.
func NewService(store Store, files *media.Store, downloader Downloader, counter GuildCounter) *Service {
	return &Service{
		store:    store,
		files:    files,
		resolver: NewResolver(files, downloader),
		renderer: NewRenderer(files),
		counter:  counter,
	}
}

// Configure applies req to the stored format of (guildID, event) and renders a
// preview for actor. Once the record is saved the change is committed even if
// cleanup or the preview fail.
func (s *Service) Configure(ctx context.Context, guildID string, event domain.EventType, req *Request, actor Actor) (*Result, error) {
	log := slog.With("guildID", guildID, "event", event)

	existing, err := s.load(ctx, guildID, event)
	if err != nil {
		metrics.ConfigureTotal.WithLabelValues(event.String(), "store_failure").Inc()
		return nil, err
	}

	resolved, tx, err := s.resolver.ResolveRequest(ctx, guildID, req)
	if err != nil {
		log.Warn("Failed to resolve notification media", "error", err)
		metrics.ConfigureTotal.WithLabelValues(event.String(), outcome(err)).Inc()
		return nil, err
	}

	updated, orphans := Merge(existing, resolved)

	if err := s.store.UpsertNotification(ctx, &updated); err != nil {
		s.resolver.Rollback(tx)
		metrics.ConfigureTotal.WithLabelValues(event.String(), "store_failure").Inc()
		return nil, fmt.Errorf("%w: failed to save notification: %w", ErrStoreFailure, err)
	}
	log.Info("Saved member notification", "added", len(tx.Added), "orphaned", len(orphans))

	s.removeFiles(guildID, orphans)

	result := &Result{Config: updated, Orphans: orphans}
	result.Preview, result.PreviewErr = s.Render(ctx, guildID, event, actor)
	if result.PreviewErr == nil && result.Preview == nil {
		result.PreviewErr = fmt.Errorf("%w: notification not found after save", ErrPreviewFailure)
	}
	if result.PreviewErr != nil {
		log.Warn("Failed to render notification preview", "error", result.PreviewErr)
		metrics.ConfigureTotal.WithLabelValues(event.String(), "preview_failure").Inc()
		result.Preview = nil
		return result, nil
	}

	metrics.ConfigureTotal.WithLabelValues(event.String(), "success").Inc()
	return result, nil
}

// Render renders the stored format of (guildID, event) for actor. It returns
// nil without error when no format is configured.
func (s *Service) Render(ctx context.Context, guildID string, event domain.EventType, actor Actor) (*Rendered, error) {
	cfg, err := s.store.FindNotification(ctx, guildID, event)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPreviewFailure, err)
	}
	if cfg == nil {
		return nil, nil
	}
	return s.renderer.Render(*cfg, s.renderContext(ctx, guildID, actor)), nil
}

// Reset deletes the format of (guildID, event) and its files. It reports
// whether a format existed.
func (s *Service) Reset(ctx context.Context, guildID string, event domain.EventType) (bool, error) {
	existing, err := s.store.FindNotification(ctx, guildID, event)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if existing == nil {
		return false, nil
	}

	if err := s.store.DeleteNotification(ctx, guildID, event); err != nil {
		return false, fmt.Errorf("%w: failed to delete notification: %w", ErrStoreFailure, err)
	}
	s.removeFiles(guildID, existing.Files())
	slog.Info("Reset member notification", "guildID", guildID, "event", event)
	return true, nil
}

func (s *Service) load(ctx context.Context, guildID string, event domain.EventType) (domain.NotificationConfig, error) {
	existing, err := s.store.FindNotification(ctx, guildID, event)
	if err != nil {
		return domain.NotificationConfig{}, fmt.Errorf("%w: failed to load notification: %w", ErrStoreFailure, err)
	}
	if existing == nil {
		return domain.DefaultNotification(guildID, event), nil
	}
	return *existing, nil
}

// removeFiles deletes files no longer referenced. Failures leave the file on
// disk for the sweeper.
func (s *Service) removeFiles(guildID string, names []string) {
	for _, name := range names {
		if err := s.files.Remove(guildID, name); err != nil {
			slog.Warn("Failed to remove user content file", "guildID", guildID, "file", name, "error", err)
			continue
		}
		metrics.FilesRemovedTotal.WithLabelValues("orphaned").Inc()
	}
}

func (s *Service) renderContext(ctx context.Context, guildID string, actor Actor) RenderContext {
	rc := RenderContext{
		Name:      actor.Name,
		Mention:   actor.Mention,
		AvatarURL: actor.AvatarURL,
	}
	if s.counter == nil {
		return rc
	}

	members, online, err := s.counter.GuildCounts(ctx, guildID)
	if err != nil {
		slog.Debug("Guild counts unavailable", "guildID", guildID, "error", err)
		return rc
	}
	rc.MemberCount = &members
	rc.OnlineCount = &online
	return rc
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrMediaUnavailable):
		return "media_unavailable"
	case errors.Is(err, ErrFileSystem):
		return "filesystem"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	default:
		return "error"
	}
}
