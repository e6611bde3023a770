package verification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

// Message is a rendered verification email.
type Message struct {
	Subject   string
	PlainText string
	HTML      string
}

type RendererConfig struct {
	AppName string
	// LinkBaseURL, when set, adds "<base>?email=..&code=.." to both bodies.
	LinkBaseURL string
}

// Renderer builds verification messages from the embedded templates.
type Renderer struct {
	cfg     RendererConfig
	subject *texttemplate.Template
	plain   *texttemplate.Template
	html    *htmltemplate.Template
}

type templateData struct {
	AppName  string
	Address  string
	Code     string
	Validity string
	Link     string
}

func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.AppName == "" {
		cfg.AppName = "Ventixe"
	}
	subject, err := texttemplate.ParseFS(templateFS, "templates/subject.txt")
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	plain, err := texttemplate.ParseFS(templateFS, "templates/body.txt")
	if err != nil {
		return nil, fmt.Errorf("parse plain-text template: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/body.html")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	if cfg.LinkBaseURL != "" {
		if _, err := url.Parse(cfg.LinkBaseURL); err != nil {
			return nil, fmt.Errorf("parse link base url: %w", err)
		}
	}
	return &Renderer{cfg: cfg, subject: subject, plain: plain, html: html}, nil
}

// Render fills the templates for one code. ttl must be the same duration the
// code is stored with, so the text never disagrees with enforcement.
func (r *Renderer) Render(address, code string, ttl time.Duration) (Message, error) {
	data := templateData{
		AppName:  r.cfg.AppName,
		Address:  address,
		Code:     code,
		Validity: ValidityText(ttl),
		Link:     r.link(address, code),
	}

	var subject, plain, html bytes.Buffer
	if err := r.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := r.plain.Execute(&plain, data); err != nil {
		return Message{}, fmt.Errorf("render plain-text body: %w", err)
	}
	if err := r.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}
	return Message{
		Subject:   strings.TrimSpace(subject.String()),
		PlainText: plain.String(),
		HTML:      html.String(),
	}, nil
}

func (r *Renderer) link(address, code string) string {
	if r.cfg.LinkBaseURL == "" {
		return ""
	}
	u, err := url.Parse(r.cfg.LinkBaseURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("email", address)
	q.Set("code", code)
	u.RawQuery = q.Encode()
	return u.String()
}

// ValidityText renders ttl as "5 minutes", "1 hour" or "90 seconds".
func ValidityText(ttl time.Duration) string {
	switch {
	case ttl >= time.Hour && ttl%time.Hour == 0:
		return plural(int64(ttl/time.Hour), "hour")
	case ttl >= time.Minute && ttl%time.Minute == 0:
		return plural(int64(ttl/time.Minute), "minute")
	default:
		return plural(int64(ttl.Round(time.Second)/time.Second), "second")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
