// Package encoding turns prompt/target pairs into fixed-length causal LM
// training samples with prompt and padding positions masked out of the loss.
package encoding

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/ocrsft/ocrsft/dataset"
	"github.com/ZanzyTHEbar/ocrsft/ocrsft/tokenizer"
)

const (
	// IgnoreIndex marks label positions the loss must skip
	IgnoreIndex = -100

	UserMarker      = "<|user|>"
	AssistantMarker = "<|assistant|>"

	DefaultMaxLength = 4096
)

var ErrIndexOutOfRange = errors.New("sample index out of range")

// FormatPrompt renders the prompt half of the template, up to and including
// the newline after the assistant marker.
func FormatPrompt(prompt string) string {
	return UserMarker + "\n" + prompt + "\n" + AssistantMarker + "\n"
}

// FormatExample renders the full training text.
func FormatExample(prompt, target string) string {
	return FormatPrompt(prompt) + target
}

// Dataset is an indexable, sized collection of encoded samples.
type Dataset interface {
	Len() int
	Get(index int) (*Sample, error)
}

// OCRDataset encodes pairs on demand. It holds no mutable state, so Get may
// be called concurrently as long as the tokenizer allows it.
type OCRDataset struct {
	pairs     []dataset.Pair
	tok       tokenizer.Tokenizer
	maxLength int
}

// Option configures an OCRDataset.
type Option func(*OCRDataset)

// WithMaxLength sets the fixed sample length.
func WithMaxLength(n int) Option {
	return func(d *OCRDataset) {
		if n > 0 {
			d.maxLength = n
		}
	}
}

func NewOCRDataset(pairs []dataset.Pair, tok tokenizer.Tokenizer, opts ...Option) *OCRDataset {
	d := &OCRDataset{pairs: pairs, tok: tok, maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *OCRDataset) Len() int { return len(d.pairs) }

func (d *OCRDataset) MaxLength() int { return d.maxLength }

// Pair returns the source pair behind index.
func (d *OCRDataset) Pair(index int) (dataset.Pair, error) {
	if index < 0 || index >= len(d.pairs) {
		return dataset.Pair{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(d.pairs))
	}
	return d.pairs[index], nil
}

// Get encodes the pair at index.
func (d *OCRDataset) Get(index int) (*Sample, error) {
	p, err := d.Pair(index)
	if err != nil {
		return nil, err
	}
	return Encode(d.tok, p.Prompt, p.Target, d.maxLength)
}

// Encode builds one sample. Labels copy the input ids, then every position
// before the prompt prefix length and every padding position is set to
// IgnoreIndex. A prefix at least maxLength tokens long ignores every label.
func Encode(tok tokenizer.Tokenizer, prompt, target string, maxLength int) (*Sample, error) {
	ids, mask, err := tok.EncodeFixed(FormatExample(prompt, target), maxLength)
	if err != nil {
		return nil, err
	}

	prefix, err := tok.EncodePlain(FormatPrompt(prompt))
	if err != nil {
		return nil, err
	}
	promptLen := min(len(prefix), len(ids))

	labels := make([]int, len(ids))
	copy(labels, ids)
	for i := 0; i < promptLen; i++ {
		labels[i] = IgnoreIndex
	}
	for i, m := range mask {
		if m == 0 {
			labels[i] = IgnoreIndex
		}
	}

	return &Sample{
		InputIDs:      ids,
		AttentionMask: mask,
		Labels:        labels,
		PromptLen:     len(prefix),
	}, nil
}
