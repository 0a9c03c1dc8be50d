package sweeper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/flor3z/welcome-bot/internal/media"
	"github.com/flor3z/welcome-bot/internal/metrics"
)

// FileIndex reports which files a guild's notification formats still reference
type FileIndex interface {
	GetNotificationFiles(ctx context.Context, guildID string) ([]string, error)
}

// Sweeper periodically removes user content files that no notification
// references, such as files left behind when cleanup after an update failed
type Sweeper struct {
	index    FileIndex
	files    *media.Store
	interval time.Duration
	grace    time.Duration
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Sweeper. Files younger than grace are never removed so that
// downloads of in-flight configuration commands are left alone.
func New(index FileIndex, files *media.Store, interval, grace time.Duration) *Sweeper {
	return &Sweeper{
		index:    index,
		files:    files,
		interval: interval,
		grace:    grace,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start runs the sweep loop in a new goroutine until ctx is cancelled or Stop
// is called
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("Starting sweeper", "interval", s.interval, "grace", s.grace)

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Initial sweep
	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sweeper stopped (context cancelled)")
			return
		case <-s.stopChan:
			slog.Info("Sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Stop signals the sweeper to stop and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

// Sweep checks every guild directory once and returns the number of files removed
func (s *Sweeper) Sweep(ctx context.Context) int {
	guilds, err := s.files.Guilds()
	if err != nil {
		slog.Error("Failed to list guild directories", "error", err)
		return 0
	}

	removed := 0
	for _, guildID := range guilds {
		select {
		case <-ctx.Done():
			return removed
		default:
			removed += s.sweepGuild(ctx, guildID)
		}
	}

	if removed > 0 {
		slog.Info("Removed orphaned files", "count", removed)
	}
	return removed
}

// sweepGuild removes unreferenced files of a single guild
func (s *Sweeper) sweepGuild(ctx context.Context, guildID string) int {
	referenced, err := s.index.GetNotificationFiles(ctx, guildID)
	if err != nil {
		slog.Error("Failed to get referenced files", "guildID", guildID, "error", err)
		return 0
	}

	keep := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		keep[name] = true
	}

	stored, err := s.files.List(guildID)
	if err != nil {
		slog.Error("Failed to list files", "guildID", guildID, "error", err)
		return 0
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, f := range stored {
		if keep[f.Name] || f.ModTime.After(cutoff) {
			continue
		}
		if err := s.files.Remove(guildID, f.Name); err != nil {
			slog.Warn("Failed to remove orphaned file", "guildID", guildID, "file", f.Name, "error", err)
			continue
		}
		slog.Debug("Removed orphaned file", "guildID", guildID, "file", f.Name)
		metrics.FilesRemovedTotal.WithLabelValues("sweep").Inc()
		removed++
	}
	return removed
}
