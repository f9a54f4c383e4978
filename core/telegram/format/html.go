// Package format contains small helpers for composing Telegram HTML messages.
package format

import (
	"fmt"
	"html"
)

// EscapeHTML escapes text for safe interpolation into HTML parse mode messages.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Code wraps the escaped value in <code> tags so users can tap-copy it.
func Code(value string) string {
	return fmt.Sprintf("<code>%s</code>", html.EscapeString(value))
}

// Bold wraps the escaped value in <b> tags.
func Bold(value string) string {
	return fmt.Sprintf("<b>%s</b>", html.EscapeString(value))
}
