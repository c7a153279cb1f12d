package tokenizer

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tiktoken adapts an OpenAI BPE encoding. These encodings carry no pad token,
// so the pad id is configured, and the only special token added is the
// optional BOS id.
type Tiktoken struct {
	bpe   *tiktoken.Tiktoken
	padID int
	bosID int
}

// NewTiktoken loads the named encoding, e.g. "cl100k_base".
func NewTiktoken(encName string, padID, bosID int) (*Tiktoken, error) {
	encName = strings.TrimSpace(encName)
	if encName == "" {
		encName = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encName)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q: %w", ErrUnsupported, encName, err)
	}
	if padID < 0 {
		padID = 0
	}
	return &Tiktoken{bpe: enc, padID: padID, bosID: bosID}, nil
}

func (t *Tiktoken) EncodeFixed(text string, maxLen int) ([]int, []int, error) {
	raw := t.bpe.EncodeOrdinary(text)
	ids := raw
	if t.bosID >= 0 {
		ids = make([]int, 0, len(raw)+1)
		ids = append(ids, t.bosID)
		ids = append(ids, raw...)
	}
	out, mask := fitLength(ids, nil, maxLen, t.padID)
	return out, mask, nil
}

func (t *Tiktoken) EncodePlain(text string) ([]int, error) {
	return t.bpe.EncodeOrdinary(text), nil
}

func (t *Tiktoken) Decode(ids []int, skipSpecial bool) string {
	raw := make([]int, 0, len(ids))
	for _, id := range ids {
		if skipSpecial && t.bosID >= 0 && id == t.bosID {
			continue
		}
		raw = append(raw, id)
	}
	return t.bpe.Decode(raw)
}

func (t *Tiktoken) PadID() int { return t.padID }

// TokenID reports the id of token when it encodes to exactly one BPE token.
func (t *Tiktoken) TokenID(token string) (int, bool) {
	ids := t.bpe.EncodeOrdinary(token)
	if len(ids) != 1 {
		return 0, false
	}
	return ids[0], true
}
