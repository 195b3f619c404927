package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/beast717/ishtri.site-sub000/internal/domain"
)

// templateData is what every match email template sees.
type templateData struct {
	SearchName string
	Title      string
	Price      string
	ListingURL string
	ImageURL   string
}

const baseTemplate = `<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #222;">
    <h2>{{.Headline}}</h2>
    <p>A new listing matches your saved search <strong>{{.Data.SearchName}}</strong>:</p>
    <p>
      <a href="{{.Data.ListingURL}}"><strong>{{.Data.Title}}</strong></a>
      {{if .Data.Price}}&mdash; {{.Data.Price}}{{end}}
    </p>
    {{if .Data.ImageURL}}<p><img src="{{.Data.ImageURL}}" alt="" width="320"></p>{{end}}
    <p><a href="{{.Data.ListingURL}}">View the listing</a></p>
  </body>
</html>`

// headlines per category; anything unlisted falls back to the default.
var headlines = map[domain.Category]string{
	domain.CategoryVehicle:  "New car for you",
	domain.CategoryProperty: "New home for you",
	domain.CategoryJob:      "New job opening for you",
}

const defaultHeadline = "New match for your saved search"

// Renderer produces the subject and HTML body for a match email.
type Renderer struct {
	tmpl    *template.Template
	baseURL string
}

// NewRenderer parses the mail template. baseURL is the public site root the
// listing links point at, without a trailing slash.
func NewRenderer(baseURL string) (*Renderer, error) {
	tmpl, err := template.New("match_email").Parse(baseTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse mail template: %w", err)
	}
	return &Renderer{tmpl: tmpl, baseURL: baseURL}, nil
}

// Render builds the email for one match result.
func (r *Renderer) Render(res domain.MatchResult) (subject, htmlBody string, err error) {
	l := res.Listing

	data := templateData{
		SearchName: res.SearchName,
		Title:      l.Title,
		ListingURL: fmt.Sprintf("%s/listing/%d", r.baseURL, l.ID),
	}
	if l.Price != nil {
		data.Price = fmt.Sprintf("%d kr", *l.Price)
	}
	if l.FirstImage != "" {
		data.ImageURL = l.FirstImage
	}

	headline, ok := headlines[l.Category]
	if !ok {
		headline = defaultHeadline
	}

	var buf bytes.Buffer
	err = r.tmpl.Execute(&buf, struct {
		Headline string
		Data     templateData
	}{Headline: headline, Data: data})
	if err != nil {
		return "", "", fmt.Errorf("render mail template: %w", err)
	}

	subject = fmt.Sprintf("%s: %s", headline, res.SearchName)
	return subject, buf.String(), nil
}
