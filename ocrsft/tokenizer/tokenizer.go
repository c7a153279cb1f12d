// Package tokenizer adapts concrete tokenizer libraries to the operations the
// sample encoder needs.
package tokenizer

import (
	"fmt"
	"strings"
)

// Tokenizer converts text to token ids and back. Implementations must be safe
// for concurrent use once constructed.
type Tokenizer interface {
	// EncodeFixed tokenizes with special tokens and truncates or right-pads
	// the result to exactly maxLen positions.
	EncodeFixed(text string, maxLen int) (ids []int, mask []int, err error)
	// EncodePlain tokenizes without special tokens, padding, or truncation.
	EncodePlain(text string) ([]int, error)
	Decode(ids []int, skipSpecial bool) string
	PadID() int
	TokenID(token string) (int, bool)
}

// Config holds basic tokenizer settings
type Config struct {
	Kind      string // "hf", "tiktoken" or "vocab"
	Path      string // tokenizer.json, its directory, or a vocab JSON file
	Encoding  string // tiktoken encoding name
	MaxLength int
	PadID     int
	PadToken  string // resolved to PadID when set
	BosID     int    // prepended by the tiktoken backend when >= 0
}

// ErrUnsupported indicates the tokenizer could not be initialized
var ErrUnsupported = fmt.Errorf("unsupported tokenizer configuration")

// New selects a tokenizer backend by name.
func New(cfg Config) (Tokenizer, error) {
	var (
		t   Tokenizer
		err error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "hf", "huggingface", "":
		t, err = NewHF(cfg.Path, cfg.MaxLength, cfg.PadID)
	case "tiktoken", "bpe":
		t, err = NewTiktoken(cfg.Encoding, cfg.PadID, cfg.BosID)
	case "vocab":
		t, err = LoadVocab(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrUnsupported, cfg.Kind)
	}
	if err != nil {
		return nil, err
	}

	if cfg.PadToken != "" {
		id, ok := t.TokenID(cfg.PadToken)
		if !ok {
			return nil, fmt.Errorf("%w: pad token %q not in vocabulary", ErrUnsupported, cfg.PadToken)
		}
		t = withPad{Tokenizer: t, pad: id}
	}
	return t, nil
}

// withPad overrides the pad id of a backend.
type withPad struct {
	Tokenizer
	pad int
}

func (w withPad) PadID() int { return w.pad }

func (w withPad) EncodeFixed(text string, maxLen int) ([]int, []int, error) {
	ids, mask, err := w.Tokenizer.EncodeFixed(text, maxLen)
	if err != nil {
		return nil, nil, err
	}
	for i := range ids {
		if mask[i] == 0 {
			ids[i] = w.pad
		}
	}
	return ids, mask, nil
}

// fitLength truncates or right-pads ids and mask to exactly maxLen entries.
// A missing mask entry counts as a real token.
func fitLength(ids, mask []int, maxLen, padID int) ([]int, []int) {
	if maxLen < 0 {
		maxLen = 0
	}
	rowIDs := make([]int, maxLen)
	rowMask := make([]int, maxLen)
	n := min(len(ids), maxLen)
	for j := 0; j < n; j++ {
		rowIDs[j] = ids[j]
		if j < len(mask) {
			rowMask[j] = mask[j]
		} else {
			rowMask[j] = 1
		}
	}
	for j := n; j < maxLen; j++ {
		rowIDs[j] = padID
	}
	return rowIDs, rowMask
}
