package main

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/pkg/errors"
)

// ContentFilter post-processes a raw completion
type ContentFilter interface {
	CanHandle(text string) bool
	Handle(text string) (string, error)
}

var (
	reasoningSpan = regexp.MustCompile(`(?s)<think>.*?</think>`)
	htmlLeadTag   = regexp.MustCompile(`(?i)^<(?:!doctype|html|body|main|article|section|div|h[1-6]|p|ul|ol)\b`)
	markdownFence = regexp.MustCompile("(?s)^```(?:markdown|md)?[ \\t]*\\n(.*?)\\n?```$")
	innerFence    = regexp.MustCompile("(?m)^```")
)

// NewContentFilters returns the default chain (order matters)
func NewContentFilters() []ContentFilter {
	return []ContentFilter{
		&ReasoningFilter{},
		&FenceFilter{},
		&HTMLFilter{converter: md.NewConverter("", true, nil)},
	}
}

// ApplyFilters runs text through every filter that accepts it and trims the result.
func ApplyFilters(filters []ContentFilter, text string) (string, error) {
	for _, f := range filters {
		if !f.CanHandle(text) {
			continue
		}
		out, err := f.Handle(text)
		if err != nil {
			return "", err
		}
		text = out
	}
	return strings.TrimSpace(text), nil
}

// StripReasoning removes every <think>...</think> span and trims the rest.
func StripReasoning(text string) string {
	return strings.TrimSpace(reasoningSpan.ReplaceAllString(text, ""))
}

// ReasoningFilter drops inline reasoning emitted by some models
type ReasoningFilter struct{}

func (f *ReasoningFilter) CanHandle(text string) bool {
	return strings.Contains(text, "<think>")
}

func (f *ReasoningFilter) Handle(text string) (string, error) {
	return StripReasoning(text), nil
}

// FenceFilter unwraps a completion returned inside one markdown code fence.
// Text that opens with one block and closes with another is left alone.
type FenceFilter struct{}

func (f *FenceFilter) CanHandle(text string) bool {
	_, ok := fencedBody(text)
	return ok
}

func (f *FenceFilter) Handle(text string) (string, error) {
	if body, ok := fencedBody(text); ok {
		return body, nil
	}
	return text, nil
}

func fencedBody(text string) (string, bool) {
	m := markdownFence.FindStringSubmatch(strings.TrimSpace(text))
	if len(m) < 2 || innerFence.MatchString(m[1]) {
		return "", false
	}
	return m[1], true
}

// HTMLFilter converts completions that ignored the markdown instruction
type HTMLFilter struct {
	converter *md.Converter
}

func (f *HTMLFilter) CanHandle(text string) bool {
	return htmlLeadTag.MatchString(strings.TrimSpace(text))
}

func (f *HTMLFilter) Handle(text string) (string, error) {
	markdown, err := f.converter.ConvertString(text)
	if err != nil {
		return "", errors.Wrap(err, "converting HTML to markdown")
	}
	return markdown, nil
}
