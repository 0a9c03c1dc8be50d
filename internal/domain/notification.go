package domain

import "fmt"

// EventType selects which member lifecycle event a notification applies to
type EventType string

const (
	EventJoin  EventType = "join"
	EventLeave EventType = "leave"
)

// ParseEventType converts a command value into an EventType
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventJoin, EventLeave:
		return EventType(s), nil
	default:
		return "", fmt.Errorf("unknown event type: %q", s)
	}
}

func (e EventType) String() string {
	return string(e)
}

// MediaRef points at an image either hosted remotely or stored in the guild's
// user content directory. The zero value means no image.
type MediaRef struct {
	value  string
	isFile bool
}

// URLMedia references remotely hosted media
func URLMedia(url string) MediaRef {
	return MediaRef{value: url}
}

// LocalMedia references a file in the guild's user content directory
func LocalMedia(filename string) MediaRef {
	return MediaRef{value: filename, isFile: true}
}

// IsFile reports whether the reference owns a local file
func (m MediaRef) IsFile() bool {
	return m.isFile && m.value != ""
}

// IsZero reports whether no media is referenced
func (m MediaRef) IsZero() bool {
	return m.value == ""
}

// Value returns the url or the local filename
func (m MediaRef) Value() string {
	return m.value
}

func (m MediaRef) String() string {
	switch {
	case m.IsZero():
		return "none"
	case m.isFile:
		return "file:" + m.value
	default:
		return m.value
	}
}

// NotificationConfig is the stored format of a join or leave message.
// At most one exists per (GuildID, Event); absence disables the notification.
type NotificationConfig struct {
	GuildID string
	Event   EventType

	Content     string
	Title       string
	Description string
	Author      string
	Footer      string

	Thumbnail  MediaRef
	Image      MediaRef
	AuthorIcon MediaRef
	FooterIcon MediaRef
}

// DefaultNotification returns the empty record used when none is stored yet
func DefaultNotification(guildID string, event EventType) NotificationConfig {
	return NotificationConfig{GuildID: guildID, Event: event}
}

// Files returns the local filenames referenced by the record
func (n NotificationConfig) Files() []string {
	var files []string
	for _, m := range []MediaRef{n.Thumbnail, n.Image, n.AuthorIcon, n.FooterIcon} {
		if m.IsFile() {
			files = append(files, m.Value())
		}
	}
	return files
}

// HasEmbed reports whether any embed-level field is set
func (n NotificationConfig) HasEmbed() bool {
	return n.Title != "" || n.Description != "" || n.Author != "" || n.Footer != "" ||
		!n.Thumbnail.IsZero() || !n.Image.IsZero() || !n.AuthorIcon.IsZero() || !n.FooterIcon.IsZero()
}

// ChannelSetting is where notifications of one event type are delivered in a guild
type ChannelSetting struct {
	GuildID   string
	Event     EventType
	ChannelID string
}
