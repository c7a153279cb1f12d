package encoding

import "slices"

// Sample is one fixed-length training example.
type Sample struct {
	InputIDs      []int `json:"input_ids"`
	AttentionMask []int `json:"attention_mask"`
	Labels        []int `json:"labels"`

	// PromptLen is the measured token length of the prompt prefix. It may
	// exceed len(InputIDs).
	PromptLen int `json:"-"`
}

// MaskedLabels returns the labels with IgnoreIndex replaced by padID, which is
// what a decoder can print.
func (s *Sample) MaskedLabels(padID int) []int {
	out := make([]int, len(s.Labels))
	for i, l := range s.Labels {
		if l == IgnoreIndex {
			out[i] = padID
		} else {
			out[i] = l
		}
	}
	return out
}

// AssistantMasked reports whether every label up to and including the first
// occurrence of assistantID in the input is ignored. ok is false when the
// marker is absent, e.g. because it was truncated away.
func (s *Sample) AssistantMasked(assistantID int) (masked, ok bool) {
	pos := slices.Index(s.InputIDs, assistantID)
	if pos < 0 {
		return false, false
	}
	for _, l := range s.Labels[:pos+1] {
		if l != IgnoreIndex {
			return false, true
		}
	}
	return true, true
}

// Supervised counts the label positions that contribute to the loss.
func (s *Sample) Supervised() int {
	n := 0
	for _, l := range s.Labels {
		if l != IgnoreIndex {
			n++
		}
	}
	return n
}

// Real counts the attended positions.
func (s *Sample) Real() int {
	n := 0
	for _, m := range s.AttentionMask {
		if m != 0 {
			n++
		}
	}
	return n
}
