package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/welcome-bot/internal/notify"
)

// commandOptions indexes the arguments of a single subcommand by name
type commandOptions struct {
	byName      map[string]*discordgo.ApplicationCommandInteractionDataOption
	attachments map[string]*discordgo.MessageAttachment
}

func newCommandOptions(opts []*discordgo.ApplicationCommandInteractionDataOption, resolved *discordgo.ApplicationCommandInteractionDataResolved) commandOptions {
	co := commandOptions{
		byName: make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts)),
	}
	for _, opt := range opts {
		co.byName[opt.Name] = opt
	}
	if resolved != nil {
		co.attachments = resolved.Attachments
	}
	return co
}

// str returns a string option, or nil when it was not given
func (o commandOptions) str(name string) *string {
	opt, ok := o.byName[name]
	if !ok {
		return nil
	}
	v, ok := opt.Value.(string)
	if !ok {
		return nil
	}
	return &v
}

// id returns the snowflake of a channel, role or user option
func (o commandOptions) id(name string) string {
	if v := o.str(name); v != nil {
		return *v
	}
	return ""
}

// upload returns the attachment given for an attachment option
func (o commandOptions) upload(name string) (*notify.Upload, error) {
	id := o.str(name)
	if id == nil {
		return nil, nil
	}
	att, ok := o.attachments[*id]
	if !ok || att.URL == "" {
		return nil, fmt.Errorf("attachment %s for option %s was not resolved", *id, name)
	}
	return &notify.Upload{URL: att.URL, Filename: att.Filename}, nil
}

// Notification fields a /notify-member subcommand can name
const (
	fieldFull        = "full"
	fieldContent     = "content"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldThumbnail   = "thumbnail"
	fieldImage       = "image"
	fieldAuthor      = "author"
	fieldAuthorIcon  = "author-icon"
	fieldFooter      = "footer"
	fieldFooterIcon  = "footer-icon"
)

var textFields = []string{fieldContent, fieldTitle, fieldDescription, fieldAuthor, fieldFooter}

var mediaFields = []string{fieldThumbnail, fieldImage, fieldAuthorIcon, fieldFooterIcon}

// buildRequest converts the arguments of a field subcommand into a partial
// update. The named field is cleared when its argument is absent; "full" names
// every field.
func buildRequest(field string, opts commandOptions) (*notify.Request, error) {
	req := notify.NewRequest()

	if field == fieldFull {
		for _, f := range textFields {
			setText(req, f, opts.str(f))
		}
		for _, f := range mediaFields {
			file, err := opts.upload(f)
			if err != nil {
				return nil, err
			}
			setMedia(req, f, file, opts.str(f+"-url"))
		}
		return req, nil
	}

	for _, f := range textFields {
		if f == field {
			setText(req, f, opts.str("text"))
			return req, nil
		}
	}
	for _, f := range mediaFields {
		if f == field {
			file, err := opts.upload("file")
			if err != nil {
				return nil, err
			}
			setMedia(req, f, file, opts.str("url"))
			return req, nil
		}
	}

	return nil, fmt.Errorf("unknown notification field: %s", field)
}

func setText(req *notify.Request, field string, v *string) {
	switch field {
	case fieldContent:
		req.WithContent(v)
	case fieldTitle:
		req.WithTitle(v)
	case fieldDescription:
		req.WithDescription(v)
	case fieldAuthor:
		req.WithAuthor(v)
	case fieldFooter:
		req.WithFooter(v)
	}
}

func setMedia(req *notify.Request, field string, file *notify.Upload, url *string) {
	switch field {
	case fieldThumbnail:
		req.WithThumbnail(file, url)
	case fieldImage:
		req.WithImage(file, url)
	case fieldAuthorIcon:
		req.WithAuthorIcon(file, url)
	case fieldFooterIcon:
		req.WithFooterIcon(file, url)
	}
}
