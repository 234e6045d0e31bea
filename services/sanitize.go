package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup from user supplied free text.
func cleanText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}
