// Package sanitize strips user-submitted HTML down to a fixed allow-list of
// formatting tags and attributes.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var allowedTags = []string{
	"a", "abbr", "acronym", "address", "b", "br", "div", "dl", "dt",
	"em", "h1", "h2", "h3", "h4", "h5", "h6", "hr", "i", "img",
	"li", "ol", "p", "pre", "q", "s", "small", "strike",
	"span", "sub", "sup", "table", "tbody", "td", "tfoot", "th",
	"thead", "tr", "tt", "u", "ul",
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	p.AllowAttrs("href", "target", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("mailto", "http", "https")
	return p
}

// HTML removes every tag and attribute outside the allow-list. Text inside a
// stripped tag is kept, except for script and style bodies which are dropped.
// It never fails.
func HTML(raw string) string {
	return policy.Sanitize(raw)
}
