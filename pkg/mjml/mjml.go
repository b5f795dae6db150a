// Package mjml renders structural email components to final HTML markup.
//
// Components here are trusted code, not tenant data: the tree is assembled by
// our own template builders, so no sanitization pass runs between the tree and
// the MJML compiler.
package mjml

import (
	"context"
	"fmt"
	"strings"

	mjmlgo "github.com/Boostport/mjml-go"
)

// Component is a node of a structural email template.
type Component interface {
	// MJML returns the MJML source for this node. Must be a pure function
	// of the node's fields.
	MJML() string
}

// Document is the root of a structural email template.
type Document struct {
	Title    string
	Sections []Component
}

// Section groups components into one horizontal band.
type Section struct {
	BackgroundColor string
	Children        []Component
}

// Text is a paragraph block.
type Text struct {
	Content  string
	FontSize string
	Color    string
	Align    string
}

// Button is a call-to-action link.
type Button struct {
	Label           string
	Href            string
	BackgroundColor string
}

// Divider is a horizontal rule.
type Divider struct{}

func (d Document) MJML() string {
	var b strings.Builder
	b.WriteString("<mjml><mj-head>")
	if d.Title != "" {
		fmt.Fprintf(&b, "<mj-title>%s</mj-title>", escape(d.Title))
	}
	b.WriteString("</mj-head><mj-body>")
	for _, s := range d.Sections {
		b.WriteString(s.MJML())
	}
	b.WriteString("</mj-body></mjml>")
	return b.String()
}

func (s Section) MJML() string {
	var b strings.Builder
	if s.BackgroundColor != "" {
		fmt.Fprintf(&b, `<mj-section background-color="%s"><mj-column>`, s.BackgroundColor)
	} else {
		b.WriteString("<mj-section><mj-column>")
	}
	for _, c := range s.Children {
		b.WriteString(c.MJML())
	}
	b.WriteString("</mj-column></mj-section>")
	return b.String()
}

func (t Text) MJML() string {
	var attrs strings.Builder
	if t.FontSize != "" {
		fmt.Fprintf(&attrs, ` font-size="%s"`, t.FontSize)
	}
	if t.Color != "" {
		fmt.Fprintf(&attrs, ` color="%s"`, t.Color)
	}
	if t.Align != "" {
		fmt.Fprintf(&attrs, ` align="%s"`, t.Align)
	}
	return fmt.Sprintf("<mj-text%s>%s</mj-text>", attrs.String(), t.Content)
}

func (b Button) MJML() string {
	bg := b.BackgroundColor
	if bg == "" {
		bg = "#346df1"
	}
	return fmt.Sprintf(`<mj-button background-color="%s" href="%s">%s</mj-button>`, bg, b.Href, escape(b.Label))
}

func (Divider) MJML() string {
	return "<mj-divider border-width=\"1px\" border-color=\"#e0e0e0\" />"
}

// ToHTML compiles a document to final HTML markup.
func ToHTML(ctx context.Context, doc Document) (string, error) {
	html, err := mjmlgo.ToHTML(ctx, doc.MJML())
	if err != nil {
		return "", fmt.Errorf("failed to compile MJML to HTML: %w", err)
	}
	return html, nil
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
