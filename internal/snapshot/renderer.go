// Package snapshot renders a published project as a standalone HTML
// document, fetchable and crawlable without any application runtime.
package snapshot

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/sandpen/sandpen-backend/internal/bundle"
)

// Options locates the public artifact URLs injected into the social
// preview metadata.
type Options struct {
	// PublicBase is the base URL blob artifacts are served from.
	PublicBase string
}

var docTmpl = template.Must(template.New("snapshot").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:type" content="website">
<meta property="og:image" content="{{.ImageURL}}">
<meta property="og:url" content="{{.PageURL}}">
<meta name="twitter:card" content="summary_large_image">
{{if .Styles}}<style>{{.Styles}}</style>
{{end}}</head>
<body>
<div id="sandpen-root">{{.Markup}}</div>
{{if .Script}}<script>{{.Script}}</script>
{{end}}</body>
</html>
`))

type docData struct {
	Title       string
	Description string
	ImageURL    string
	PageURL     string
	Styles      template.CSS
	Markup      template.HTML
	Script      template.JS
}

// Render produces the snapshot document for a bundle. It is a pure
// function of its inputs: empty files simply omit their sections, and
// the script is wrapped so it runs standalone with the projectId in
// scope but without any host instrumentation.
func Render(b *bundle.Bundle, opts Options) (string, error) {
	title := b.Name
	if title == "" {
		title = "Untitled"
	}

	data := docData{
		Title:       title,
		Description: fmt.Sprintf("%s — built in the Sandpen playground", title),
		ImageURL:    fmt.Sprintf("%s/%s.png", opts.PublicBase, b.ProjectID),
		PageURL:     fmt.Sprintf("%s/%s.html", opts.PublicBase, b.ProjectID),
		Styles:      template.CSS(b.Content.Styles),
		Markup:      template.HTML(b.Content.Markup),
	}

	if b.Content.Script != "" {
		data.Script = template.JS(standaloneScript(b.ProjectID, b.Content.Script))
	}

	var sb strings.Builder
	if err := docTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render snapshot: %w", err)
	}
	return sb.String(), nil
}

// standaloneScript wraps user code in an immediately-invoked function
// with projectId bound as a closure constant.
func standaloneScript(projectID, script string) string {
	return fmt.Sprintf("(function(){\nvar projectId = %q;\n%s\n}).call(window);",
		projectID, script)
}
