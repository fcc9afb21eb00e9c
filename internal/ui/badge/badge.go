// Package badge maps domain values to the visual variants shared by
// every page.
package badge

import (
	"fmt"
	"html/template"
	"strings"
)

// Variant is a visual emphasis level.
type Variant string

const (
	Primary   Variant = "primary"
	Secondary Variant = "secondary"
	Success   Variant = "success"
	Warning   Variant = "warning"
	Danger    Variant = "danger"
)

// ForScore is the single risk-score colour rule: above 80 is danger,
// above 60 is warning, everything else success.
func ForScore(score int) Variant {
	switch {
	case score > 80:
		return Danger
	case score > 60:
		return Warning
	default:
		return Success
	}
}

// ForToast maps a toast type name onto a variant.
func ForToast(kind string) Variant {
	switch kind {
	case "success":
		return Success
	case "error":
		return Danger
	case "warning":
		return Warning
	default:
		return Secondary
	}
}

var statusVariants = map[string]Variant{
	"open":         Danger,
	"in_progress":  Warning,
	"resolved":     Success,
	"closed":       Secondary,
	"pending":      Warning,
	"verified":     Success,
	"failed":       Danger,
	"approved":     Success,
	"rejected":     Danger,
	"active":       Success,
	"testing":      Warning,
	"deprecated":   Secondary,
	"inactive":     Secondary,
	"draft":        Secondary,
	"archived":     Secondary,
	"suspended":    Danger,
	"connected":    Success,
	"disconnected": Secondary,
	"delivered":    Success,
	"in_transit":   Primary,
	"lost":         Danger,
	"won":          Success,
	"lost_dispute": Danger,
	"under_review": Warning,
	"high":         Danger,
	"medium":       Warning,
	"low":          Success,
	"critical":     Danger,
	"blocked":      Danger,
	"whitelisted":  Success,
	"flagged":      Danger,
	"published":    Success,
}

// ForStatus maps a status, priority or severity label to a variant.
// Unknown labels are secondary.
func ForStatus(status string) Variant {
	if v, ok := statusVariants[strings.ToLower(status)]; ok {
		return v
	}
	return Secondary
}

// ForMSS follows the TCP maximum segment size convention: tunnelled
// links shrink MSS below 1200, and 1380/1460 are the common clean values.
func ForMSS(mss int) Variant {
	switch {
	case mss < 1200:
		return Warning
	case mss == 1380 || mss == 1460:
		return Success
	default:
		return Secondary
	}
}

// HTML renders a badge span.
func HTML(v Variant, text string) template.HTML {
	return template.HTML(fmt.Sprintf(`<span class="badge badge-%s">%s</span>`,
		v, template.HTMLEscapeString(text)))
}

// Label turns snake_case identifiers into display text.
func Label(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Status renders a status badge with a display label.
func Status(status string) template.HTML {
	return HTML(ForStatus(status), Label(status))
}

// Score renders a risk-score badge.
func Score(score int) template.HTML {
	return HTML(ForScore(score), fmt.Sprintf("%d", score))
}
