package notify

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/flor3z/welcome-bot/internal/fetch"
	"github.com/flor3z/welcome-bot/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type key struct {
	guildID string
	event   domain.EventType
}

type memStore struct {
	mu        sync.Mutex
	records   map[key]domain.NotificationConfig
	upserts   int
	upsertErr error
	findErr   error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[key]domain.NotificationConfig)}
}

func (m *memStore) FindNotification(_ context.Context, guildID string, event domain.EventType) (*domain.NotificationConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	cfg, ok := m.records[key{guildID, event}]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (m *memStore) UpsertNotification(_ context.Context, cfg *domain.NotificationConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.records[key{cfg.GuildID, cfg.Event}] = *cfg
	return nil
}

func (m *memStore) DeleteNotification(_ context.Context, guildID string, event domain.EventType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key{guildID, event})
	return nil
}

type fixedCounter struct {
	members, online int
	err             error
}

func (c fixedCounter) GuildCounts(context.Context, string) (int, int, error) {
	return c.members, c.online, c.err
}

var admin = Actor{Name: "admin", Mention: "<@1>", AvatarURL: "https://cdn/admin.png"}

func newTestService(t *testing.T, counter GuildCounter) (*Service, *memStore, *media.Store, string) {
	t.Helper()
	cdn := newCDN(t)
	files, err := media.New(t.TempDir())
	require.NoError(t, err)
	store := newMemStore()
	return NewService(store, files, fetch.NewClient(5*time.Second), counter), store, files, cdn.URL
}

func strPtr(s string) *string { return &s }

func TestConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("creates record and renders preview", func(t *testing.T) {
		svc, store, _, _ := newTestService(t, fixedCounter{members: 50, online: 5})

		req := NewRequest().
			WithDescription(strPtr("Welcome {name}!")).
			WithFooter(strPtr("Members: {member_count}"))
		res, err := svc.Configure(ctx, "g", domain.EventJoin, req, admin)
		require.NoError(t, err)
		require.NoError(t, res.PreviewErr)
		require.NotNil(t, res.Preview)

		assert.Equal(t, []string{"Welcome admin!", "Members: 50"}, res.Preview.Texts())
		assert.Equal(t, 1, store.upserts)
		assert.Equal(t, "Welcome {name}!", store.records[key{"g", domain.EventJoin}].Description)
	})

	t.Run("configure then clear", func(t *testing.T) {
		svc, store, _, _ := newTestService(t, nil)

		_, err := svc.Configure(ctx, "g", domain.EventJoin, NewRequest().WithDescription(strPtr("Welcome {name}!")), admin)
		require.NoError(t, err)

		_, err = svc.Configure(ctx, "g", domain.EventJoin, NewRequest().WithDescription(nil), admin)
		require.NoError(t, err)
		assert.Equal(t, "", store.records[key{"g", domain.EventJoin}].Description)
	})

	t.Run("upload replaces url and old file is removed later", func(t *testing.T) {
		svc, store, files, cdn := newTestService(t, nil)
		store.records[key{"g", domain.EventJoin}] = domain.NotificationConfig{
			GuildID:   "g",
			Event:     domain.EventJoin,
			Thumbnail: domain.URLMedia("http://x/img.png"),
		}

		res, err := svc.Configure(ctx, "g", domain.EventJoin,
			NewRequest().WithThumbnail(&Upload{URL: cdn + "/a.png", Filename: "a.png"}, nil), admin)
		require.NoError(t, err)
		assert.Empty(t, res.Orphans)

		first := store.records[key{"g", domain.EventJoin}].Thumbnail
		require.True(t, first.IsFile())
		require.NotNil(t, res.Preview)
		assert.Len(t, res.Preview.Files, 1)

		res, err = svc.Configure(ctx, "g", domain.EventJoin,
			NewRequest().WithThumbnail(&Upload{URL: cdn + "/b.png", Filename: "b.png"}, nil), admin)
		require.NoError(t, err)
		assert.Equal(t, []string{first.Value()}, res.Orphans)

		_, err = os.Stat(files.Path("g", first.Value()))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("media failure persists nothing", func(t *testing.T) {
		svc, store, files, cdn := newTestService(t, nil)

		req := NewRequest().
			WithContent(strPtr("hello")).
			WithThumbnail(&Upload{URL: cdn + "/ok.png", Filename: "ok.png"}, nil).
			WithFooterIcon(&Upload{URL: cdn + "/missing.png", Filename: "no.png"}, nil)
		_, err := svc.Configure(ctx, "g", domain.EventJoin, req, admin)
		require.ErrorIs(t, err, ErrMediaUnavailable)

		assert.Equal(t, 0, store.upserts)
		assert.Empty(t, store.records)
		assert.Empty(t, guildFiles(t, files, "g"))
	})

	t.Run("store failure rolls back downloads", func(t *testing.T) {
		svc, store, files, cdn := newTestService(t, nil)
		store.upsertErr = errors.New("database is locked")

		_, err := svc.Configure(ctx, "g", domain.EventLeave,
			NewRequest().WithImage(&Upload{URL: cdn + "/x.png", Filename: "x.png"}, nil), admin)
		require.ErrorIs(t, err, ErrStoreFailure)
		assert.Empty(t, guildFiles(t, files, "g"))
	})

	t.Run("load failure aborts before any download", func(t *testing.T) {
		svc, store, files, cdn := newTestService(t, nil)
		store.findErr = errors.New("connection refused")

		_, err := svc.Configure(ctx, "g", domain.EventJoin,
			NewRequest().WithImage(&Upload{URL: cdn + "/x.png", Filename: "x.png"}, nil), admin)
		require.ErrorIs(t, err, ErrStoreFailure)
		assert.Equal(t, 0, store.upserts)
		assert.Empty(t, guildFiles(t, files, "g"))
	})

	t.Run("counts lookup failure still previews", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, fixedCounter{err: errors.New("forbidden")})

		res, err := svc.Configure(ctx, "g", domain.EventJoin, NewRequest().WithContent(strPtr("{member_count} members")), admin)
		require.NoError(t, err)
		require.NotNil(t, res.Preview)
		assert.Equal(t, "{member_count} members", res.Preview.Content)
	})
}

// flakyStore fails every find after the first
type flakyStore struct {
	*memStore
	finds int
}

func (f *flakyStore) FindNotification(ctx context.Context, guildID string, event domain.EventType) (*domain.NotificationConfig, error) {
	f.finds++
	if f.finds > 1 {
		return nil, errors.New("read timeout")
	}
	return f.memStore.FindNotification(ctx, guildID, event)
}

func TestConfigurePreviewFailureIsDegradedSuccess(t *testing.T) {
	files, err := media.New(t.TempDir())
	require.NoError(t, err)
	store := &flakyStore{memStore: newMemStore()}
	svc := NewService(store, files, fetch.NewClient(time.Second), nil)

	res, err := svc.Configure(context.Background(), "g", domain.EventJoin, NewRequest().WithContent(strPtr("hi")), admin)
	require.NoError(t, err)
	assert.Nil(t, res.Preview)
	assert.ErrorIs(t, res.PreviewErr, ErrPreviewFailure)
	assert.Equal(t, "hi", store.records[key{"g", domain.EventJoin}].Content)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	svc, store, files, cdn := newTestService(t, nil)

	existed, err := svc.Reset(ctx, "g", domain.EventJoin)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = svc.Configure(ctx, "g", domain.EventJoin,
		NewRequest().WithContent(strPtr("hi")).WithImage(&Upload{URL: cdn + "/i.png", Filename: "i.png"}, nil), admin)
	require.NoError(t, err)
	require.Len(t, guildFiles(t, files, "g"), 1)

	existed, err = svc.Reset(ctx, "g", domain.EventJoin)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Empty(t, store.records)
	assert.Empty(t, guildFiles(t, files, "g"))

	rendered, err := svc.Render(ctx, "g", domain.EventJoin, admin)
	require.NoError(t, err)
	assert.Nil(t, rendered)
}
