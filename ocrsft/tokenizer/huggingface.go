package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// padCandidates are tried in order when no pad id is configured.
var padCandidates = []string{"<pad>", "[PAD]", "<|pad|>", "<|endoftext|>", "</s>"}

// HF wraps a sugarme/tokenizer pipeline loaded from a HuggingFace tokenizer.json.
// fixed serves EncodeFixed with truncation; plain has neither truncation nor
// padding so prefix lengths are measured on the full text.
type HF struct {
	fixed *tk.Tokenizer
	plain *tk.Tokenizer
	padID int
}

// NewHF loads tokenizer.json from path (a file or a directory containing one).
// A negative padID is resolved from the file's added tokens, falling back to 0.
func NewHF(path string, maxSeq int, padID int) (*HF, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: hf tokenizer requires a path", ErrUnsupported)
	}
	file := path
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		file = filepath.Join(path, "tokenizer.json")
	}
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	fixed, err := loadHF(file)
	if err != nil {
		return nil, err
	}
	if maxSeq > 0 {
		// Truncation keeps room for the post-processor's special tokens
		fixed.WithTruncation(&tk.TruncationParams{MaxLength: maxSeq})
	}

	plain, err := loadHF(file)
	if err != nil {
		return nil, err
	}
	plain.WithTruncation(nil)

	if padID < 0 {
		padID = discoverPadID(file)
	}
	return &HF{fixed: fixed, plain: plain, padID: padID}, nil
}

// loadHF reads file and drops any padding block it carries; fitLength pads
// on the right with the resolved pad id instead.
func loadHF(file string) (*tk.Tokenizer, error) {
	t, err := pretrained.FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file, err)
	}
	t.WithPadding(nil)
	return t, nil
}

func (h *HF) EncodeFixed(text string, maxLen int) ([]int, []int, error) {
	enc, err := h.fixed.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), true)
	if err != nil {
		return nil, nil, err
	}
	ids, mask := fitLength(enc.GetIds(), enc.GetAttentionMask(), maxLen, h.padID)
	return ids, mask, nil
}

func (h *HF) EncodePlain(text string) ([]int, error) {
	enc, err := h.plain.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), false)
	if err != nil {
		return nil, err
	}
	return enc.GetIds(), nil
}

func (h *HF) Decode(ids []int, skipSpecial bool) string {
	return h.plain.Decode(ids, skipSpecial)
}

func (h *HF) PadID() int { return h.padID }

func (h *HF) TokenID(token string) (int, bool) {
	return h.plain.TokenToId(token)
}

// discoverPadID scans the added_tokens of tokenizer.json for a conventional
// pad token.
func discoverPadID(file string) int {
	b, err := os.ReadFile(file)
	if err != nil {
		return 0
	}
	var doc struct {
		AddedTokens []struct {
			ID      int    `json:"id"`
			Content string `json:"content"`
		} `json:"added_tokens"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return 0
	}
	byContent := make(map[string]int, len(doc.AddedTokens))
	for _, at := range doc.AddedTokens {
		byContent[at.Content] = at.ID
	}
	for _, c := range padCandidates {
		if id, ok := byContent[c]; ok {
			return id
		}
	}
	return 0
}
