package utils

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	ContentTypeHTML     = "html"
	ContentTypeMarkdown = "markdown"
)

var (
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	contentPolicy = newContentPolicy()
)

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	// Rich-text editors emit class-based alignment and code-block markers
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("p", "pre", "span", "code", "li", "ol")
	return p
}

// SanitizePostContent renders markdown bodies to HTML and strips anything the
// UGC policy does not allow (scripts, event handlers, javascript: links).
func SanitizePostContent(content, contentType string) (string, error) {
	source := []byte(content)

	if contentType == ContentTypeMarkdown {
		var buf bytes.Buffer
		if err := mdRenderer.Convert(source, &buf); err != nil {
			return "", err
		}
		source = buf.Bytes()
	}

	return string(contentPolicy.SanitizeBytes(source)), nil
}
