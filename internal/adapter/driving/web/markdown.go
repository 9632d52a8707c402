package web

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// richText turns free-text property values into sanitized HTML. Raw HTML in
// the source is dropped by goldmark before bluemonday sees the output.
type richText struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newRichText() *richText {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoReferrerOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &richText{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: policy,
	}
}

func (rt *richText) render(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := rt.md.Convert([]byte(src), &buf); err != nil {
		return rt.policy.Sanitize(src)
	}
	return rt.policy.Sanitize(buf.String())
}

var defaultRichText = newRichText()

// RenderMarkdown renders a property value as sanitized HTML.
func RenderMarkdown(src string) string {
	return defaultRichText.render(src)
}
