package mailer

import "strings"

// entityReplacer escapes HTML-significant characters in user-supplied text so
// the message stays inert if it is ever rendered as markup downstream.
// Ampersand goes first so already-escaped output is not double-mangled.
var entityReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#x2F;",
)

// EscapeEntities returns s with HTML-significant characters replaced by their
// entity equivalents.
func EscapeEntities(s string) string {
	return entityReplacer.Replace(s)
}
