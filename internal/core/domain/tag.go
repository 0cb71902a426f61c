package domain

import (
	"errors"
	"strings"

	"github.com/kirillkom/deductive-coding/internal/core/fingerprint"
)

type TagStatus string

const (
	TagStatusIdle       TagStatus = "idle"
	TagStatusProcessing TagStatus = "processing"
	TagStatusCompleted  TagStatus = "completed"
	TagStatusNoResults  TagStatus = "no-results"
	TagStatusError      TagStatus = "error"
)

// Tag is a named concept searched for in the document text.
// Quotes are non-empty only when Status is TagStatusCompleted.
type Tag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      TagStatus `json:"status"`
	Quotes      []string  `json:"quotes"`
	Fingerprint string    `json:"fingerprint,omitempty"`
}

// NewTag builds an idle, fingerprinted tag from trimmed input.
func NewTag(id, name, description string) (Tag, error) {
	name, description, err := normalizeTagContent(name, description)
	if err != nil {
		return Tag{}, WrapError(ErrInvalidInput, "new tag", err)
	}
	if strings.TrimSpace(id) == "" {
		return Tag{}, WrapError(ErrInvalidInput, "new tag", errors.New("tag id is required"))
	}
	return Tag{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      TagStatusIdle,
		Quotes:      []string{},
		Fingerprint: fingerprint.Fingerprint(name, description),
	}, nil
}

// Edit returns a copy of the tag with new content. When the content
// fingerprint changes the previous analysis is stale: status goes back to
// idle and quotes are cleared. Same-content edits keep status and quotes.
func (t Tag) Edit(name, description string) (Tag, error) {
	name, description, err := normalizeTagContent(name, description)
	if err != nil {
		return Tag{}, WrapError(ErrInvalidInput, "edit tag", err)
	}

	next := t.Clone()
	next.Name = name
	next.Description = description
	next.Fingerprint = fingerprint.Fingerprint(name, description)
	if next.Fingerprint != t.Fingerprint {
		next.Status = TagStatusIdle
		next.Quotes = []string{}
	}
	return next, nil
}

// CurrentFingerprint is the digest of the tag's present content.
func (t Tag) CurrentFingerprint() string {
	return fingerprint.Fingerprint(t.Name, t.Description)
}

// WithFingerprint backfills a missing fingerprint. The second return value
// reports whether anything changed.
func (t Tag) WithFingerprint() (Tag, bool) {
	if t.Fingerprint != "" {
		return t, false
	}
	next := t.Clone()
	next.Fingerprint = t.CurrentFingerprint()
	return next, true
}

// NeedsAnalysis reports whether the tag must be (re-)analyzed.
func (t Tag) NeedsAnalysis() bool {
	if t.Fingerprint == "" || t.Fingerprint != t.CurrentFingerprint() {
		return true
	}
	switch t.Status {
	case TagStatusIdle, TagStatusError:
		return true
	case TagStatusCompleted, TagStatusNoResults:
		return len(t.Quotes) == 0
	default:
		return false
	}
}

// HasResult reports whether the tag holds a finished analysis, with or without quotes.
func (t Tag) HasResult() bool {
	return t.Status == TagStatusCompleted || t.Status == TagStatusNoResults
}

func (t Tag) Clone() Tag {
	out := t
	out.Quotes = make([]string, len(t.Quotes))
	copy(out.Quotes, t.Quotes)
	return out
}

func CloneTags(tags []Tag) []Tag {
	if tags == nil {
		return nil
	}
	out := make([]Tag, len(tags))
	for i, tag := range tags {
		out[i] = tag.Clone()
	}
	return out
}

func normalizeTagContent(name, description string) (string, string, error) {
	name = fingerprint.Trim(name)
	description = fingerprint.Trim(description)
	if name == "" {
		return "", "", errors.New("tag name is required")
	}
	if description == "" {
		return "", "", errors.New("tag description is required")
	}
	return name, description, nil
}
