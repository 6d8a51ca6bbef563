package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

type baseEmailData struct {
	Title    string
	Heading  string
	CTALabel string
	CTAURL   string
}

type issueStatusEmailData struct {
	baseEmailData
	IssueStatusEmail
}

type issueReceivedEmailData struct {
	baseEmailData
	IssueReceivedEmail
}

// renderedEmail holds both bodies of a multipart/alternative message.
type renderedEmail struct {
	HTML string
	Text string
}

func renderEmail(name string, data any) (renderedEmail, error) {
	html, err := renderHTML(name+".html", data)
	if err != nil {
		return renderedEmail{}, err
	}
	text, err := renderText(name+".txt", data)
	if err != nil {
		return renderedEmail{}, err
	}
	return renderedEmail{HTML: html, Text: text}, nil
}

func renderHTML(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := htmltemplate.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderText(name string, data any) (string, error) {
	tmpl, err := texttemplate.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
