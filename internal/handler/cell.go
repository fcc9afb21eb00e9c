package handler

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/fraudshield/admin-dashboard/internal/ui/badge"
)

// Cell renderers for row actions. Every value is escaped here because
// table cells are emitted verbatim.

// LinkButton renders a link styled as a small button.
func LinkButton(href, label string, v badge.Variant) template.HTML {
	return template.HTML(fmt.Sprintf(`<a class="btn btn-sm btn-%s" href="%s">%s</a>`,
		v, template.HTMLEscapeString(href), template.HTMLEscapeString(label)))
}

// PostButton renders a one-button form that POSTs to action and comes
// back to returnURL.
func PostButton(action, returnURL, label string, v badge.Variant, disabled bool) template.HTML {
	dis := ""
	if disabled {
		dis = " disabled"
	}
	return template.HTML(fmt.Sprintf(
		`<form class="inline" method="post" action="%s"><input type="hidden" name="return" value="%s"><button class="btn btn-sm btn-%s" type="submit"%s>%s</button></form>`,
		template.HTMLEscapeString(action), template.HTMLEscapeString(returnURL),
		v, dis, template.HTMLEscapeString(label)))
}

// Actions joins several cell controls.
func Actions(controls ...template.HTML) template.HTML {
	parts := make([]string, len(controls))
	for i, c := range controls {
		parts[i] = string(c)
	}
	return template.HTML(`<div class="row-actions">` + strings.Join(parts, "") + `</div>`)
}

// Tags renders each tag as a secondary badge.
func Tags(tags []string) template.HTML {
	var b strings.Builder
	for _, t := range tags {
		b.WriteString(string(badge.HTML(badge.Secondary, t)))
	}
	return template.HTML(b.String())
}

// Text escapes s for a cell.
func Text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}
