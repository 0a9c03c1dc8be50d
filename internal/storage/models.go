package storage

import "github.com/flor3z/welcome-bot/internal/domain"

// notificationColumns is the column order used by every notification query
const notificationColumns = `guild_id, event, content, title, description, author, footer,
	thumbnail_is_file, thumbnail_url, image_is_file, image_url,
	author_icon_is_file, author_icon_url, footer_icon_is_file, footer_icon_url`

// mediaColumns is the (is_file, url) column pair storing a MediaRef
type mediaColumns struct {
	IsFile bool
	URL    string
}

func toMediaColumns(m domain.MediaRef) mediaColumns {
	return mediaColumns{IsFile: m.IsFile(), URL: m.Value()}
}

func (c mediaColumns) ref() domain.MediaRef {
	if c.URL == "" {
		return domain.MediaRef{}
	}
	if c.IsFile {
		return domain.LocalMedia(c.URL)
	}
	return domain.URLMedia(c.URL)
}

// notificationRow mirrors a member_notification_messages row
type notificationRow struct {
	GuildID     string
	Event       string
	Content     string
	Title       string
	Description string
	Author      string
	Footer      string
	Thumbnail   mediaColumns
	Image       mediaColumns
	AuthorIcon  mediaColumns
	FooterIcon  mediaColumns
}

func newNotificationRow(n *domain.NotificationConfig) notificationRow {
	return notificationRow{
		GuildID:     n.GuildID,
		Event:       n.Event.String(),
		Content:     n.Content,
		Title:       n.Title,
		Description: n.Description,
		Author:      n.Author,
		Footer:      n.Footer,
		Thumbnail:   toMediaColumns(n.Thumbnail),
		Image:       toMediaColumns(n.Image),
		AuthorIcon:  toMediaColumns(n.AuthorIcon),
		FooterIcon:  toMediaColumns(n.FooterIcon),
	}
}

func (r *notificationRow) args() []any {
	return []any{
		r.GuildID, r.Event, r.Content, r.Title, r.Description, r.Author, r.Footer,
		r.Thumbnail.IsFile, r.Thumbnail.URL, r.Image.IsFile, r.Image.URL,
		r.AuthorIcon.IsFile, r.AuthorIcon.URL, r.FooterIcon.IsFile, r.FooterIcon.URL,
	}
}

func (r *notificationRow) dest() []any {
	return []any{
		&r.GuildID, &r.Event, &r.Content, &r.Title, &r.Description, &r.Author, &r.Footer,
		&r.Thumbnail.IsFile, &r.Thumbnail.URL, &r.Image.IsFile, &r.Image.URL,
		&r.AuthorIcon.IsFile, &r.AuthorIcon.URL, &r.FooterIcon.IsFile, &r.FooterIcon.URL,
	}
}

func (r *notificationRow) config() *domain.NotificationConfig {
	return &domain.NotificationConfig{
		GuildID:     r.GuildID,
		Event:       domain.EventType(r.Event),
		Content:     r.Content,
		Title:       r.Title,
		Description: r.Description,
		Author:      r.Author,
		Footer:      r.Footer,
		Thumbnail:   r.Thumbnail.ref(),
		Image:       r.Image.ref(),
		AuthorIcon:  r.AuthorIcon.ref(),
		FooterIcon:  r.FooterIcon.ref(),
	}
}
