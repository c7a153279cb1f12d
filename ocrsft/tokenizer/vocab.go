package tokenizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/armon/go-radix"
)

// ErrUnknownToken is returned when text contains a rune no vocabulary entry
// covers and no unk token is configured.
var ErrUnknownToken = errors.New("no vocabulary entry matches input")

// VocabSpec is the on-disk form of a Vocab tokenizer.
type VocabSpec struct {
	Vocab map[string]int `json:"vocab"`
	Unk   string         `json:"unk,omitempty"`
	Bos   string         `json:"bos,omitempty"`
	Eos   string         `json:"eos,omitempty"`
	Pad   string         `json:"pad,omitempty"`
}

// Vocab is a greedy longest-match tokenizer. Entries live in a patricia tree
// so each step is a single LongestPrefix lookup, and multi-character entries
// such as "<|assistant|>" always encode to one id.
type Vocab struct {
	tree    *radix.Tree
	byTok   map[string]int
	idToTok map[int]string
	special map[int]bool

	unkID, bosID, eosID, padID int
}

// LoadVocab reads a VocabSpec JSON file.
func LoadVocab(path string) (*Vocab, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: vocab tokenizer requires a path", ErrUnsupported)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	var spec VocabSpec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrUnsupported, path, err)
	}
	return NewVocab(spec)
}

// NewVocab builds a tokenizer from spec. Bos, Eos, Pad and Unk must be
// vocabulary entries when set; they are never produced by matching text.
func NewVocab(spec VocabSpec) (*Vocab, error) {
	if len(spec.Vocab) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", ErrUnsupported)
	}

	v := &Vocab{
		tree:    radix.New(),
		byTok:   maps.Clone(spec.Vocab),
		idToTok: make(map[int]string, len(spec.Vocab)),
		special: make(map[int]bool),
		unkID:   -1,
		bosID:   -1,
		eosID:   -1,
		padID:   0,
	}

	lookup := func(tok string) (int, error) {
		if tok == "" {
			return -1, nil
		}
		id, ok := spec.Vocab[tok]
		if !ok {
			return -1, fmt.Errorf("%w: special token %q not in vocabulary", ErrUnsupported, tok)
		}
		v.special[id] = true
		return id, nil
	}
	var err error
	if v.unkID, err = lookup(spec.Unk); err != nil {
		return nil, err
	}
	if v.bosID, err = lookup(spec.Bos); err != nil {
		return nil, err
	}
	if v.eosID, err = lookup(spec.Eos); err != nil {
		return nil, err
	}
	padID, err := lookup(spec.Pad)
	if err != nil {
		return nil, err
	}
	if padID >= 0 {
		v.padID = padID
	}

	for tok, id := range spec.Vocab {
		if other, dup := v.idToTok[id]; dup {
			return nil, fmt.Errorf("%w: id %d assigned to %q and %q", ErrUnsupported, id, other, tok)
		}
		v.idToTok[id] = tok
		if tok == "" || v.special[id] {
			continue
		}
		v.tree.Insert(tok, id)
	}
	return v, nil
}

func (v *Vocab) EncodePlain(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	for len(text) > 0 {
		match, id, ok := v.tree.LongestPrefix(text)
		if ok {
			ids = append(ids, id.(int))
			text = text[len(match):]
			continue
		}
		if v.unkID < 0 {
			r, _ := utf8.DecodeRuneInString(text)
			return nil, fmt.Errorf("%w: %q", ErrUnknownToken, r)
		}
		_, size := utf8.DecodeRuneInString(text)
		ids = append(ids, v.unkID)
		text = text[size:]
	}
	return ids, nil
}

func (v *Vocab) EncodeFixed(text string, maxLen int) ([]int, []int, error) {
	plain, err := v.EncodePlain(text)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]int, 0, len(plain)+2)
	if v.bosID >= 0 {
		ids = append(ids, v.bosID)
	}
	ids = append(ids, plain...)
	if v.eosID >= 0 {
		ids = append(ids, v.eosID)
	}
	out, mask := fitLength(ids, nil, maxLen, v.padID)
	return out, mask, nil
}

func (v *Vocab) Decode(ids []int, skipSpecial bool) string {
	var sb strings.Builder
	for _, id := range ids {
		if skipSpecial && v.special[id] {
			continue
		}
		sb.WriteString(v.idToTok[id])
	}
	return sb.String()
}

func (v *Vocab) PadID() int { return v.padID }

func (v *Vocab) TokenID(token string) (int, bool) {
	id, ok := v.byTok[token]
	return id, ok
}
