package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"eventscout/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

// templateRenderer renders alert emails from embedded template files.
type templateRenderer struct{}

// NewTemplateRenderer returns an EmailRenderer backed by the embedded
// templates folder.
func NewTemplateRenderer() domain.EmailRenderer {
	return &templateRenderer{}
}

func (r *templateRenderer) RenderEventAlert(data *domain.EventAlertEmailData) (string, string, error) {
	html, err := r.renderFile("event_alert.html", data, true)
	if err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}
	text, err := r.renderFile("event_alert.txt", data, false)
	if err != nil {
		return "", "", fmt.Errorf("render text: %w", err)
	}
	return html, text, nil
}

func (r *templateRenderer) renderFile(name string, data interface{}, html bool) (string, error) {
	raw, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if html {
		t, err := template.New(name).Parse(string(raw))
		if err != nil {
			return "", err
		}
		if err := t.Execute(&buf, data); err != nil {
			return "", err
		}
	} else {
		t, err := texttemplate.New(name).Parse(string(raw))
		if err != nil {
			return "", err
		}
		if err := t.Execute(&buf, data); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
