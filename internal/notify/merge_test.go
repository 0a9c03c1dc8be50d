package notify

import (
	"testing"

	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func populated() domain.NotificationConfig {
	return domain.NotificationConfig{
		GuildID:     "1",
		Event:       domain.EventJoin,
		Content:     "hi {mention}",
		Title:       "title",
		Description: "Welcome {name}!",
		Author:      "author",
		Footer:      "Member count: {member_count}",
		Thumbnail:   domain.LocalMedia("thumb.png"),
		Image:       domain.URLMedia("http://x/img.png"),
		AuthorIcon:  domain.LocalMedia("author.png"),
		FooterIcon:  domain.MediaRef{},
	}
}

// mediaSlots enumerates the media fields of a request and a record
var mediaSlots = []struct {
	name string
	req  func(*ResolvedRequest) *Field[domain.MediaRef]
	cfg  func(*domain.NotificationConfig) *domain.MediaRef
}{
	{"thumbnail", func(r *ResolvedRequest) *Field[domain.MediaRef] { return &r.Thumbnail }, func(c *domain.NotificationConfig) *domain.MediaRef { return &c.Thumbnail }},
	{"image", func(r *ResolvedRequest) *Field[domain.MediaRef] { return &r.Image }, func(c *domain.NotificationConfig) *domain.MediaRef { return &c.Image }},
	{"author_icon", func(r *ResolvedRequest) *Field[domain.MediaRef] { return &r.AuthorIcon }, func(c *domain.NotificationConfig) *domain.MediaRef { return &c.AuthorIcon }},
	{"footer_icon", func(r *ResolvedRequest) *Field[domain.MediaRef] { return &r.FooterIcon }, func(c *domain.NotificationConfig) *domain.MediaRef { return &c.FooterIcon }},
}

func TestMergeUnsetKeepsEverything(t *testing.T) {
	for _, existing := range []domain.NotificationConfig{
		domain.DefaultNotification("1", domain.EventLeave),
		populated(),
	} {
		out, orphans := Merge(existing, ResolvedRequest{})
		assert.Equal(t, existing, out)
		assert.Empty(t, orphans)
	}
}

func TestMergeClearOnDefaultIsNoop(t *testing.T) {
	existing := domain.DefaultNotification("1", domain.EventJoin)
	req := ResolvedRequest{
		Content:     Clear[string](),
		Title:       Clear[string](),
		Description: Clear[string](),
		Author:      Clear[string](),
		Footer:      Clear[string](),
		Thumbnail:   Clear[domain.MediaRef](),
		Image:       Clear[domain.MediaRef](),
		AuthorIcon:  Clear[domain.MediaRef](),
		FooterIcon:  Clear[domain.MediaRef](),
	}

	out, orphans := Merge(existing, req)
	assert.Equal(t, existing, out)
	assert.Empty(t, orphans)
}

func TestMergeOrphans(t *testing.T) {
	for _, slot := range mediaSlots {
		t.Run(slot.name, func(t *testing.T) {
			existing := domain.DefaultNotification("1", domain.EventJoin)
			*slot.cfg(&existing) = domain.LocalMedia("old.png")

			t.Run("clear orphans the file", func(t *testing.T) {
				var req ResolvedRequest
				*slot.req(&req) = Clear[domain.MediaRef]()

				out, orphans := Merge(existing, req)
				assert.Equal(t, []string{"old.png"}, orphans)
				assert.True(t, slot.cfg(&out).IsZero())
			})

			t.Run("set to url orphans the file", func(t *testing.T) {
				var req ResolvedRequest
				*slot.req(&req) = Set(domain.URLMedia("http://x/new.png"))

				out, orphans := Merge(existing, req)
				assert.Equal(t, []string{"old.png"}, orphans)
				assert.Equal(t, domain.URLMedia("http://x/new.png"), *slot.cfg(&out))
			})

			t.Run("set to another file orphans the file", func(t *testing.T) {
				var req ResolvedRequest
				*slot.req(&req) = Set(domain.LocalMedia("new.png"))

				_, orphans := Merge(existing, req)
				assert.Equal(t, []string{"old.png"}, orphans)
			})

			t.Run("set to the same file keeps it", func(t *testing.T) {
				var req ResolvedRequest
				*slot.req(&req) = Set(domain.LocalMedia("old.png"))

				out, orphans := Merge(existing, req)
				assert.Empty(t, orphans)
				assert.Equal(t, domain.LocalMedia("old.png"), *slot.cfg(&out))
			})

			t.Run("unset keeps it", func(t *testing.T) {
				out, orphans := Merge(existing, ResolvedRequest{})
				assert.Empty(t, orphans)
				assert.Equal(t, existing, out)
			})
		})
	}
}

func TestMergeUploadReplacesURL(t *testing.T) {
	existing := domain.DefaultNotification("1", domain.EventJoin)
	existing.Thumbnail = domain.URLMedia("http://x/img.png")

	out, orphans := Merge(existing, ResolvedRequest{Thumbnail: Set(domain.LocalMedia("f00.png"))})
	assert.True(t, out.Thumbnail.IsFile())
	assert.Equal(t, "f00.png", out.Thumbnail.Value())
	assert.Empty(t, orphans)
}

func TestMergeMultipleOrphans(t *testing.T) {
	existing := populated()
	req := ResolvedRequest{
		Thumbnail:  Clear[domain.MediaRef](),
		AuthorIcon: Set(domain.URLMedia("{user_avatar}")),
	}

	out, orphans := Merge(existing, req)
	assert.Equal(t, []string{"thumb.png", "author.png"}, orphans)
	assert.Equal(t, domain.URLMedia("{user_avatar}"), out.AuthorIcon)
	assert.Equal(t, existing.Image, out.Image)
}

func TestMergeText(t *testing.T) {
	t.Run("configure then clear", func(t *testing.T) {
		existing := domain.DefaultNotification("1", domain.EventJoin)
		out, _ := Merge(existing, ResolvedRequest{Description: Set("Welcome {name}!")})
		assert.Equal(t, "Welcome {name}!", out.Description)

		out, _ = Merge(out, ResolvedRequest{Description: Clear[string]()})
		assert.Equal(t, "", out.Description)
	})

	t.Run("escaped newline", func(t *testing.T) {
		out, _ := Merge(domain.DefaultNotification("1", domain.EventJoin), ResolvedRequest{
			Content: Set(`line1\nline2`),
			Footer:  Set(`a\nb\nc`),
		})
		assert.Equal(t, "line1\nline2", out.Content)
		assert.Equal(t, "a\nb\nc", out.Footer)
	})

	t.Run("unset text keeps value", func(t *testing.T) {
		existing := populated()
		out, _ := Merge(existing, ResolvedRequest{Title: Set("new")})
		assert.Equal(t, "new", out.Title)
		assert.Equal(t, existing.Content, out.Content)
		assert.Equal(t, existing.Description, out.Description)
	})
}
