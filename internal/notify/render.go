package notify

import (
	"bytes"
	"log/slog"
	"mime"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/welcome-bot/internal/domain"
	"github.com/flor3z/welcome-bot/internal/media"
)

const (
	colorJoin  = 0x4169E1 // royal blue
	colorLeave = 0x708090 // slate
)

// RenderContext carries the member a notification is rendered for. Counts are
// nil when the live guild lookup failed.
type RenderContext struct {
	Name        string
	Mention     string
	AvatarURL   string
	MemberCount *int
	OnlineCount *int
}

// Vars returns the placeholder values available for an event type
func (rc RenderContext) Vars(event domain.EventType) map[string]string {
	vars := map[string]string{
		"name":        rc.Name,
		"user_avatar": rc.AvatarURL,
	}
	if event == domain.EventJoin {
		vars["mention"] = rc.Mention
	}
	if rc.MemberCount != nil {
		vars["member_count"] = strconv.Itoa(*rc.MemberCount)
	}
	if rc.OnlineCount != nil {
		vars["online_member_count"] = strconv.Itoa(*rc.OnlineCount)
	}
	return vars
}

// Rendered is a notification ready to be sent
type Rendered struct {
	Content string
	Embed   *discordgo.MessageEmbed
	Files   []*discordgo.File
}

// Texts returns the non-empty text parts in display order:
// content, title, description, author, footer
func (m *Rendered) Texts() []string {
	parts := []string{m.Content}
	if e := m.Embed; e != nil {
		parts = append(parts, e.Title, e.Description)
		if e.Author != nil {
			parts = append(parts, e.Author.Name)
		}
		if e.Footer != nil {
			parts = append(parts, e.Footer.Text)
		}
	}

	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			texts = append(texts, p)
		}
	}
	return texts
}

// Embeds returns the embed as a slice for message payloads
func (m *Rendered) Embeds() []*discordgo.MessageEmbed {
	if m.Embed == nil {
		return nil
	}
	return []*discordgo.MessageEmbed{m.Embed}
}

// Renderer expands stored notification formats
type Renderer struct {
	files *media.Store
}

// NewRenderer creates a renderer loading local media from files
func NewRenderer(files *media.Store) *Renderer {
	return &Renderer{files: files}
}

// Render expands placeholders in cfg and attaches its local media. A local file
// that cannot be read drops only the field that references it.
func (r *Renderer) Render(cfg domain.NotificationConfig, rc RenderContext) *Rendered {
	vars := rc.Vars(cfg.Event)
	out := &Rendered{Content: expand(cfg.Content, vars)}

	if !cfg.HasEmbed() {
		return out
	}

	embed := &discordgo.MessageEmbed{
		Title:       expand(cfg.Title, vars),
		Description: expand(cfg.Description, vars),
		Color:       colorJoin,
	}
	if cfg.Event == domain.EventLeave {
		embed.Color = colorLeave
	}

	// Discord rejects an author or footer icon without text
	if author := expand(cfg.Author, vars); author != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    author,
			IconURL: r.mediaURL(cfg.GuildID, cfg.AuthorIcon, vars, out),
		}
	}
	if footer := expand(cfg.Footer, vars); footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    footer,
			IconURL: r.mediaURL(cfg.GuildID, cfg.FooterIcon, vars, out),
		}
	}

	if u := r.mediaURL(cfg.GuildID, cfg.Thumbnail, vars, out); u != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: u}
	}
	if u := r.mediaURL(cfg.GuildID, cfg.Image, vars, out); u != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: u}
	}

	// Discord rejects an embed that carries only a color
	if embed.Title == "" && embed.Description == "" && embed.Author == nil &&
		embed.Footer == nil && embed.Thumbnail == nil && embed.Image == nil {
		return out
	}

	out.Embed = embed
	return out
}

// mediaURL returns the url to use for a media field. Urls are expanded; local
// files are attached to out and referenced by attachment name.
func (r *Renderer) mediaURL(guildID string, m domain.MediaRef, vars map[string]string, out *Rendered) string {
	if m.IsZero() {
		return ""
	}
	if !m.IsFile() {
		return expand(m.Value(), vars)
	}

	data, err := r.files.Read(guildID, m.Value())
	if err != nil {
		slog.Warn("Omitting notification media", "guildID", guildID, "file", m.Value(), "error", err)
		return ""
	}

	out.Files = append(out.Files, &discordgo.File{
		Name:        m.Value(),
		ContentType: mime.TypeByExtension(filepath.Ext(m.Value())),
		Reader:      bytes.NewReader(data),
	})
	return "attachment://" + m.Value()
}

// expand replaces {placeholder} tokens found in vars. Anything else, including
// unknown names and unbalanced braces, is copied verbatim.
func expand(s string, vars map[string]string) string {
	if !strings.Contains(s, "{") {
		return s
	}

	var sb strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			sb.WriteString(s)
			break
		}
		sb.WriteString(s[:open])

		end := strings.IndexByte(s[open+1:], '}')
		if end < 0 {
			sb.WriteString(s[open:])
			break
		}

		key := s[open+1 : open+1+end]
		if v, ok := vars[key]; ok {
			sb.WriteString(v)
			s = s[open+1+end+1:]
			continue
		}

		sb.WriteByte('{')
		s = s[open+1:]
	}
	return sb.String()
}
