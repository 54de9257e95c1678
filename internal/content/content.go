// Package content decodes the image markup that admins and the SMS bridge
// embed in message bodies.
package content

import (
	"regexp"
	"strings"
)

const AttachmentLabel = "Image attachment"

// Tried in order; the first pattern that matches anywhere wins.
var imagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`!\[Image\]\((https://[^\s)]+)\)`),
	regexp.MustCompile(`\[Image: (https://[^\s\]]+)\]`),
	regexp.MustCompile(`\[Image \d+: (https://[^\s\]]+)\]`),
}

// ExtractImageReference finds the first image reference in content and returns
// content with that reference replaced by AttachmentLabel.
func ExtractImageReference(content string) (string, string, bool) {
	for _, pattern := range imagePatterns {
		loc := pattern.FindStringSubmatchIndex(content)
		if loc == nil {
			continue
		}
		url := content[loc[2]:loc[3]]
		display := content[:loc[0]] + AttachmentLabel + content[loc[1]:]
		return display, url, true
	}
	return content, "", false
}

func ImageMarkup(url string) string {
	return "[Image: " + url + "]"
}

type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

type Part struct {
	Kind PartKind `json:"kind"`
	Text string   `json:"text,omitempty"`
	URL  string   `json:"url,omitempty"`
}

type Body struct {
	Parts []Part `json:"parts"`
}

func (b Body) Images() []string {
	var urls []string
	for _, p := range b.Parts {
		if p.Kind == PartImage {
			urls = append(urls, p.URL)
		}
	}
	return urls
}

// Parse splits content into text and image parts, in the order they appear.
// Every image reference is decoded, not only the first.
func Parse(content string) Body {
	var body Body
	rest := content
	for rest != "" {
		start, end, url := firstReference(rest)
		if start < 0 {
			body.appendText(rest)
			break
		}
		body.appendText(rest[:start])
		body.Parts = append(body.Parts, Part{Kind: PartImage, URL: url})
		rest = rest[end:]
	}
	return body
}

// firstReference returns the earliest reference in s across all patterns, so
// mixed markup styles keep their relative order.
func firstReference(s string) (int, int, string) {
	start, end, url := -1, -1, ""
	for _, pattern := range imagePatterns {
		loc := pattern.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		if start < 0 || loc[0] < start {
			start, end, url = loc[0], loc[1], s[loc[2]:loc[3]]
		}
	}
	return start, end, url
}

func (b *Body) appendText(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	b.Parts = append(b.Parts, Part{Kind: PartText, Text: s})
}
