package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/gapfill/internal/model"
	"github.com/ppiankov/gapfill/internal/util"
)

// ErrEmptyDialogue is returned for input without any turns
var ErrEmptyDialogue = errors.New("dialogue has no turns")

// Format is the encoding of a tagged dialogue file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the encoding from the file extension (JSON by default)
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadDialogue reads and parses a tagged dialogue file
func LoadDialogue(path string) (*model.Dialogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dialogue: %w", err)
	}

	d, err := ParseDialogue(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDialogue decodes a tagged dialogue and normalizes its text.
// Unknown fields are rejected so typos in tagger output surface early.
func ParseDialogue(data []byte, format Format) (*model.Dialogue, error) {
	var d model.Dialogue

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to parse YAML dialogue: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to parse JSON dialogue: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dialogue format %q", format)
	}

	if len(d.Turns) == 0 {
		return nil, ErrEmptyDialogue
	}

	normalize(&d)
	return &d, nil
}

func normalize(d *model.Dialogue) {
	d.Title = util.NormalizeText(d.Title)
	for i := range d.Turns {
		t := &d.Turns[i]
		t.Speaker = util.NormalizeText(t.Speaker)
		t.Text = util.NormalizeText(t.Text)
		for j := range t.Tokens {
			t.Tokens[j].Text = util.NormalizeText(t.Tokens[j].Text)
			t.Tokens[j].Lemma = util.NormalizeText(t.Tokens[j].Lemma)
			t.Tokens[j].POS = strings.ToUpper(strings.TrimSpace(t.Tokens[j].POS))
		}
		for j := range t.NounChunks {
			t.NounChunks[j].Text = util.NormalizeText(t.NounChunks[j].Text)
		}
		for j := range t.Phrases {
			t.Phrases[j].Text = util.NormalizeText(t.Phrases[j].Text)
			t.Phrases[j].Lemma = util.NormalizeText(t.Phrases[j].Lemma)
		}
	}
}
