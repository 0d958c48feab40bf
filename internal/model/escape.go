package model

import "strings"

var (
	htmlEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	htmlUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// EscapeHTML escapes the characters a browser escapes when text is
// assigned as element content: &, < and >. Quotes are left alone.
func EscapeHTML(s string) string { return htmlEscaper.Replace(s) }

// UnescapeHTML reverses EscapeHTML.
func UnescapeHTML(s string) string { return htmlUnescaper.Replace(s) }
