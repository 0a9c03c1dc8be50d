package notify

import (
	"strings"

	"github.com/flor3z/welcome-bot/internal/domain"
)

// Merge applies req to existing and returns the updated record with the local
// files it no longer references
func Merge(existing domain.NotificationConfig, req ResolvedRequest) (domain.NotificationConfig, []string) {
	out := existing

	out.Content = mergeText(existing.Content, req.Content)
	out.Title = mergeText(existing.Title, req.Title)
	out.Description = mergeText(existing.Description, req.Description)
	out.Author = mergeText(existing.Author, req.Author)
	out.Footer = mergeText(existing.Footer, req.Footer)

	var orphans []string
	out.Thumbnail = mergeMedia(existing.Thumbnail, req.Thumbnail, &orphans)
	out.Image = mergeMedia(existing.Image, req.Image, &orphans)
	out.AuthorIcon = mergeMedia(existing.AuthorIcon, req.AuthorIcon, &orphans)
	out.FooterIcon = mergeMedia(existing.FooterIcon, req.FooterIcon, &orphans)

	return out, orphans
}

// unescapeNewlines turns a literal backslash-n into a line break; slash command
// options cannot carry real newlines
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func mergeText(existing string, f Field[string]) string {
	return f.Map(unescapeNewlines).Apply(existing)
}

func mergeMedia(existing domain.MediaRef, f Field[domain.MediaRef], orphans *[]string) domain.MediaRef {
	next := f.Apply(existing)
	if existing.IsFile() && next != existing {
		*orphans = append(*orphans, existing.Value())
	}
	return next
}
