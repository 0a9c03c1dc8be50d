package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/flor3z/welcome-bot/internal/media"
	"github.com/flor3z/welcome-bot/internal/metrics"
)

// Downloader fetches remote content
type Downloader interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Transaction tracks files written while resolving one request so they can be
// removed if a later step fails
type Transaction struct {
	GuildID string
	Added   []string
}

// Resolver turns media sources into stored references, downloading uploads
// into the guild's user content directory
type Resolver struct {
	files      *media.Store
	downloader Downloader
}

// NewResolver creates a resolver writing into files
func NewResolver(files *media.Store, downloader Downloader) *Resolver {
	return &Resolver{files: files, downloader: downloader}
}

// Resolve returns a url reference unchanged and downloads uploads into a new
// local file. On failure every file in tx, including a partially written one,
// is removed before the error is returned.
func (r *Resolver) Resolve(ctx context.Context, src MediaSource, tx *Transaction) (domain.MediaRef, error) {
	if !src.IsUpload() {
		return domain.URLMedia(src.URL), nil
	}

	name, err := r.download(ctx, tx.GuildID, src.Upload)
	if err != nil {
		metrics.MediaDownloadsTotal.WithLabelValues("failure").Inc()
		if name != "" {
			tx.Added = append(tx.Added, name)
		}
		r.Rollback(tx)
		return domain.MediaRef{}, err
	}

	metrics.MediaDownloadsTotal.WithLabelValues("success").Inc()
	tx.Added = append(tx.Added, name)
	return domain.LocalMedia(name), nil
}

// download writes the upload to a new file. A non-empty name is returned with
// an error when the file was created before the failure.
func (r *Resolver) download(ctx context.Context, guildID string, upload Upload) (string, error) {
	slog.Debug("Downloading attachment", "guildID", guildID, "filename", upload.Filename)

	// The guild directory and target file exist before any network I/O
	name, f, err := r.files.Create(guildID, upload.Filename)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystem, err)
	}

	body, err := r.downloader.Download(ctx, upload.URL)
	if err != nil {
		f.Close()
		return name, fmt.Errorf("%w: %w", ErrMediaUnavailable, err)
	}
	defer body.Close()

	src := &readTracker{r: body}
	n, err := io.Copy(f, src)
	if err != nil {
		f.Close()
		if src.err != nil {
			return name, fmt.Errorf("%w: failed to read attachment body: %w", ErrMediaUnavailable, err)
		}
		return name, fmt.Errorf("%w: failed to write %s: %w", ErrFileSystem, name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return name, fmt.Errorf("%w: failed to flush %s: %w", ErrFileSystem, name, err)
	}
	if err := f.Close(); err != nil {
		return name, fmt.Errorf("%w: failed to close %s: %w", ErrFileSystem, name, err)
	}

	metrics.MediaBytesTotal.Add(float64(n))
	slog.Info("Saved attachment", "guildID", guildID, "file", name, "bytes", n)
	return name, nil
}

// Rollback removes every file added in tx. Failures are logged, not returned.
func (r *Resolver) Rollback(tx *Transaction) {
	for _, name := range tx.Added {
		if err := r.files.Remove(tx.GuildID, name); err != nil {
			slog.Error("Newly created file cannot be removed", "guildID", tx.GuildID, "file", name, "error", err)
			continue
		}
		metrics.FilesRemovedTotal.WithLabelValues("rollback").Inc()
	}
	tx.Added = nil
}

// ResolveRequest resolves every media field of req in field order. Any failure
// aborts with all files of this request removed.
func (r *Resolver) ResolveRequest(ctx context.Context, guildID string, req *Request) (ResolvedRequest, *Transaction, error) {
	tx := &Transaction{GuildID: guildID}
	out := ResolvedRequest{
		Content:     req.Content,
		Title:       req.Title,
		Description: req.Description,
		Author:      req.Author,
		Footer:      req.Footer,
	}

	fields := []struct {
		in  Field[MediaSource]
		out *Field[domain.MediaRef]
	}{
		{req.Thumbnail, &out.Thumbnail},
		{req.Image, &out.Image},
		{req.AuthorIcon, &out.AuthorIcon},
		{req.FooterIcon, &out.FooterIcon},
	}

	for _, field := range fields {
		switch {
		case field.in.IsClear():
			*field.out = Clear[domain.MediaRef]()
		case field.in.IsSet():
			src, _ := field.in.Value()
			ref, err := r.Resolve(ctx, src, tx)
			if err != nil {
				return ResolvedRequest{}, tx, err
			}
			*field.out = Set(ref)
		}
	}

	return out, tx, nil
}

// readTracker remembers read errors so they can be told apart from write errors
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
