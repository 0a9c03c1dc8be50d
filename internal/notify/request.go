package notify

import "github.com/flor3z/welcome-bot/internal/domain"

// Upload is a file attached to a command invocation
type Upload struct {
	URL      string
	Filename string
}

// MediaSource is user input for an image field: an uploaded file or a url
type MediaSource struct {
	URL    string
	Upload Upload
}

// IsUpload reports whether the source must be downloaded
func (m MediaSource) IsUpload() bool {
	return m.Upload.URL != ""
}

// Request is a partial update of a notification format, built by a command
// handler. Fields the command does not name stay unset.
type Request struct {
	Content     Field[string]
	Title       Field[string]
	Description Field[string]
	Author      Field[string]
	Footer      Field[string]

	Thumbnail  Field[MediaSource]
	Image      Field[MediaSource]
	AuthorIcon Field[MediaSource]
	FooterIcon Field[MediaSource]
}

// NewRequest returns an empty request
func NewRequest() *Request {
	return &Request{}
}

func (r *Request) WithContent(v *string) *Request {
	r.Content = FromOptional(v)
	return r
}

func (r *Request) WithTitle(v *string) *Request {
	r.Title = FromOptional(v)
	return r
}

func (r *Request) WithDescription(v *string) *Request {
	r.Description = FromOptional(v)
	return r
}

func (r *Request) WithAuthor(v *string) *Request {
	r.Author = FromOptional(v)
	return r
}

func (r *Request) WithFooter(v *string) *Request {
	r.Footer = FromOptional(v)
	return r
}

func (r *Request) WithThumbnail(file *Upload, url *string) *Request {
	r.Thumbnail = mediaField(file, url)
	return r
}

func (r *Request) WithImage(file *Upload, url *string) *Request {
	r.Image = mediaField(file, url)
	return r
}

func (r *Request) WithAuthorIcon(file *Upload, url *string) *Request {
	r.AuthorIcon = mediaField(file, url)
	return r
}

func (r *Request) WithFooterIcon(file *Upload, url *string) *Request {
	r.FooterIcon = mediaField(file, url)
	return r
}

// mediaField prefers the uploaded file when both inputs are supplied
func mediaField(file *Upload, url *string) Field[MediaSource] {
	switch {
	case file != nil && file.URL != "":
		return Set(MediaSource{Upload: *file})
	case url != nil:
		return Set(MediaSource{URL: *url})
	default:
		return Clear[MediaSource]()
	}
}

// ResolvedRequest is a Request whose media sources have been turned into
// stored references
type ResolvedRequest struct {
	Content     Field[string]
	Title       Field[string]
	Description Field[string]
	Author      Field[string]
	Footer      Field[string]

	Thumbnail  Field[domain.MediaRef]
	Image      Field[domain.MediaRef]
	AuthorIcon Field[domain.MediaRef]
	FooterIcon Field[domain.MediaRef]
}
