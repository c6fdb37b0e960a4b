// Package collector gathers one submission from the user: a written
// reflection, an image, or a social post URL.
package collector

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/f3rmion/moodlog/internal/journal"
)

// ImageTopic is the topic sent for image submissions.
const ImageTopic = "Image analysis"

// SocialTopicPrefix prefixes the URL in the topic of social submissions.
const SocialTopicPrefix = "Instagram post: "

// ErrNothingToSubmit is returned by Request when the active mode has no content.
var ErrNothingToSubmit = errors.New("nothing to submit")

// Collector holds the draft of each input mode. Only the active mode is
// submitted; the others keep their drafts while the user switches tabs.
type Collector struct {
	mode  journal.InputMode
	text  string
	image *journal.Attachment
	url   string
}

// New returns an empty collector in text mode.
func New() *Collector {
	return &Collector{mode: journal.ModeText}
}

// Mode returns the active input mode.
func (c *Collector) Mode() journal.InputMode { return c.mode }

// SetMode switches the active input mode.
func (c *Collector) SetMode(m journal.InputMode) {
	switch m {
	case journal.ModeText, journal.ModeImage, journal.ModeSocial:
		c.mode = m
	}
}

// Text returns the reflection draft.
func (c *Collector) Text() string { return c.text }

// SetText replaces the reflection draft.
func (c *Collector) SetText(s string) { c.text = s }

// Image returns the selected image, or nil.
func (c *Collector) Image() *journal.Attachment { return c.image }

// SelectImage inspects path and makes it the selected image. An invalid
// file leaves the previous selection in place.
func (c *Collector) SelectImage(path string) (*journal.Attachment, error) {
	att, err := InspectImage(path)
	if err != nil {
		return nil, err
	}
	c.image = att
	return att, nil
}

// ClearImage drops the selected image.
func (c *Collector) ClearImage() { c.image = nil }

// URL returns the social URL draft.
func (c *Collector) URL() string { return c.url }

// SetURL replaces the social URL draft.
func (c *Collector) SetURL(u string) { c.url = u }

// URLValid reports whether the URL draft looks like an Instagram post.
// It is advisory and does not gate submission.
func (c *Collector) URLValid() bool { return ValidateSocialURL(c.url) }

// WordCount counts whitespace-separated words of the reflection.
func (c *Collector) WordCount() int {
	return len(strings.Fields(c.text))
}

// CharCount counts the characters of the reflection.
func (c *Collector) CharCount() int {
	return utf8.RuneCountInString(c.text)
}

// CanSubmit reports whether the active mode has content.
func (c *Collector) CanSubmit() bool {
	switch c.mode {
	case journal.ModeText:
		return strings.TrimSpace(c.text) != ""
	case journal.ModeImage:
		return c.image != nil
	case journal.ModeSocial:
		return strings.TrimSpace(c.url) != ""
	}
	return false
}

// Topic derives the backend topic for the active mode.
func (c *Collector) Topic() string {
	var topic string
	switch c.mode {
	case journal.ModeText:
		topic = strings.TrimSpace(c.text)
	case journal.ModeImage:
		topic = ImageTopic
	case journal.ModeSocial:
		topic = SocialTopicPrefix + strings.TrimSpace(c.url)
	}
	return truncate(topic, journal.MaxTopicLength)
}

// Request builds the analysis request for the active mode.
func (c *Collector) Request(articleCount int, platforms []journal.Platform) (journal.AnalysisRequest, error) {
	if !c.CanSubmit() {
		return journal.AnalysisRequest{}, ErrNothingToSubmit
	}

	req := journal.AnalysisRequest{
		Topic:        c.Topic(),
		ArticleCount: articleCount,
		Platforms:    platforms,
	}
	switch c.mode {
	case journal.ModeImage:
		att := *c.image
		req.Attachment = &att
	case journal.ModeSocial:
		req.Attachment = &journal.Attachment{Mode: journal.ModeSocial, URL: strings.TrimSpace(c.url)}
	}
	return req, nil
}

// Excerpt is a short preview of the submission for history cards.
func (c *Collector) Excerpt() string {
	switch c.mode {
	case journal.ModeImage:
		if c.image != nil {
			return c.image.ImageName
		}
	case journal.ModeSocial:
		return strings.TrimSpace(c.url)
	}
	return Excerpt(c.text, 120)
}

// Reset clears every draft and returns to text mode.
func (c *Collector) Reset() {
	*c = Collector{mode: journal.ModeText}
}

// Excerpt collapses whitespace in s and cuts it to n runes.
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(truncate(s, n-3)) + "..."
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
