package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

// tagFile is the YAML document the run command reads and, with -save,
// writes back so the next run only analyzes what changed.
type tagFile struct {
	Tags []tagEntry `yaml:"tags"`
}

type tagEntry struct {
	ID          string   `yaml:"id,omitempty"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status,omitempty"`
	Fingerprint string   `yaml:"fingerprint,omitempty"`
	Quotes      []string `yaml:"quotes,omitempty"`
}

func loadTags(path string) ([]domain.Tag, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag file: %w", err)
	}
	return decodeTags(bytes.NewReader(raw))
}

func decodeTags(r io.Reader) ([]domain.Tag, error) {
	var file tagFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode tag file", err)
	}
	if len(file.Tags) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decode tag file", errors.New("no tags defined"))
	}

	seen := make(map[string]struct{}, len(file.Tags))
	tags := make([]domain.Tag, 0, len(file.Tags))
	for i, entry := range file.Tags {
		tag, err := entry.toTag()
		if err != nil {
			return nil, fmt.Errorf("tag #%d: %w", i+1, err)
		}
		if _, dup := seen[tag.ID]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "decode tag file", fmt.Errorf("duplicate tag id %q", tag.ID))
		}
		seen[tag.ID] = struct{}{}
		tags = append(tags, tag)
	}
	return tags, nil
}

// toTag builds a fresh idle tag, or restores the state a previous run saved.
func (e tagEntry) toTag() (domain.Tag, error) {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	tag, err := domain.NewTag(id, e.Name, e.Description)
	if err != nil {
		return domain.Tag{}, err
	}
	if e.Status == "" {
		return tag, nil
	}

	status := domain.TagStatus(e.Status)
	switch status {
	case domain.TagStatusIdle, domain.TagStatusCompleted, domain.TagStatusNoResults, domain.TagStatusError:
	case domain.TagStatusProcessing:
		// interrupted run
		status = domain.TagStatusIdle
	default:
		return domain.Tag{}, domain.WrapError(domain.ErrInvalidInput, "decode tag", fmt.Errorf("unknown status %q", e.Status))
	}
	if e.Fingerprint != "" && e.Fingerprint != tag.Fingerprint {
		// edited by hand since the last run
		return tag, nil
	}
	if len(e.Quotes) > 0 && status != domain.TagStatusCompleted {
		return domain.Tag{}, domain.WrapError(domain.ErrInvalidInput, "decode tag", fmt.Errorf("quotes stored with status %q", status))
	}

	tag.Status = status
	tag.Fingerprint = e.Fingerprint
	tag.Quotes = append([]string{}, e.Quotes...)
	return tag, nil
}

func saveTags(path string, tags []domain.Tag) error {
	var buf bytes.Buffer
	if err := encodeTags(&buf, tags); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write tag file: %w", err)
	}
	return nil
}

func encodeTags(w io.Writer, tags []domain.Tag) error {
	file := tagFile{Tags: make([]tagEntry, 0, len(tags))}
	for _, tag := range tags {
		file.Tags = append(file.Tags, tagEntry{
			ID:          tag.ID,
			Name:        tag.Name,
			Description: tag.Description,
			Status:      string(tag.Status),
			Fingerprint: tag.Fingerprint,
			Quotes:      tag.Quotes,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode tag file: %w", err)
	}
	return enc.Close()
}
