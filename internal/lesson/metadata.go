// Package lesson holds the lesson artifact model: metadata, sequence
// numbering, filename derivation, and writing lesson files to disk.
package lesson

import (
	"encoding/json"
	"fmt"
)

// Ext is the source extension of generated lessons.
const Ext = ".py"

// Metadata describes the artifact targeted by one generation attempt.
// Build a new value instead of mutating an existing one.
type Metadata struct {
	Number        int      `json:"number"`
	Title         string   `json:"title"`
	Filename      string   `json:"filename"`
	Prerequisites []string `json:"prerequisites"`
	Narrative     string   `json:"narrative"`
}

// NewMetadata creates metadata for lesson number with the given topic and filename.
func NewMetadata(number int, title, filename string) Metadata {
	return Metadata{
		Number:        number,
		Title:         title,
		Filename:      filename,
		Prerequisites: []string{},
	}
}

// Marshal encodes m as JSON.
func (m Metadata) Marshal() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode lesson metadata: %w", err)
	}
	return string(data), nil
}

// ParseMetadata decodes metadata produced by Marshal.
func ParseMetadata(s string) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return Metadata{}, fmt.Errorf("failed to decode lesson metadata: %w", err)
	}
	if m.Number <= 0 {
		return Metadata{}, fmt.Errorf("invalid lesson metadata: number must be positive, got %d", m.Number)
	}
	if m.Prerequisites == nil {
		m.Prerequisites = []string{}
	}
	return m, nil
}
