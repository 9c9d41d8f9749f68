package model

import "strings"

var unsafeChars = strings.NewReplacer(
	"'", "", `"`, "", ";", "", "$", "", "%", "",
	"#", "", "(", "", ")", "", "=", "", "<", "", ">", "",
)

// Sanitize strips characters that are unsafe to echo back into the UI and trims
// surrounding whitespace.
func Sanitize(s string) string {
	return strings.TrimSpace(unsafeChars.Replace(s))
}
