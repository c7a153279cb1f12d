package tokenizer

import (
	"encoding/json"
	"os/exec"
	"testing"
)

// TestHFParity compares the hf backend against the reference HuggingFace
// tokenizer (Python). If Python or transformers isn't available the test is
// skipped.
func TestHFParity(t *testing.T) {
	py, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not found; skipping parity test")
	}

	dir := t.TempDir()
	sents := []string{
		"<|user|>\nhelo wrld\n<|assistant|>\nhello world",
		"the quick brown fox jumps over the lazy dog",
	}

	// Save bert-base-uncased as tokenizer.json and dump its reference encodings
	script := `import json, sys
from transformers import AutoTokenizer
t=AutoTokenizer.from_pretrained("bert-base-uncased")
t.save_pretrained(sys.argv[1])
s=json.loads(sys.argv[2])
out=[]
for x in s:
    enc=t(x, padding='max_length', truncation=True, max_length=32)
    plain=t(x, add_special_tokens=False)
    out.append({'ids':enc['input_ids'],'mask':enc['attention_mask'],'plain':plain['input_ids'],'pad':t.pad_token_id})
print(json.dumps(out))`

	arg, err := json.Marshal(sents)
	if err != nil {
		t.Fatalf("marshal sentences: %v", err)
	}
	out, err := exec.Command(py, "-c", script, dir, string(arg)).Output()
	if err != nil {
		t.Skipf("python transformers not available or network issue: %v", err)
	}

	var pyRes []struct {
		Ids   []int `json:"ids"`
		Mask  []int `json:"mask"`
		Plain []int `json:"plain"`
		Pad   int   `json:"pad"`
	}
	if err := json.Unmarshal(out, &pyRes); err != nil {
		t.Fatalf("parse py enc: %v", err)
	}
	if len(pyRes) != len(sents) {
		t.Fatalf("mismatched counts")
	}

	hf, err := NewHF(dir, 32, pyRes[0].Pad)
	if err != nil {
		t.Fatalf("NewHF: %v", err)
	}

	for i, s := range sents {
		ids, mask, err := hf.EncodeFixed(s, 32)
		if err != nil {
			t.Fatalf("EncodeFixed failed: %v", err)
		}
		if len(pyRes[i].Ids) != len(ids) {
			t.Fatalf("len mismatch i=%d py=%d go=%d", i, len(pyRes[i].Ids), len(ids))
		}
		for j := range ids {
			if ids[j] != pyRes[i].Ids[j] {
				t.Fatalf("id mismatch i=%d j=%d py=%d go=%d", i, j, pyRes[i].Ids[j], ids[j])
			}
			if mask[j] != pyRes[i].Mask[j] {
				t.Fatalf("mask mismatch i=%d j=%d py=%d go=%d", i, j, pyRes[i].Mask[j], mask[j])
			}
		}

		plain, err := hf.EncodePlain(s)
		if err != nil {
			t.Fatalf("EncodePlain failed: %v", err)
		}
		if len(plain) != len(pyRes[i].Plain) {
			t.Fatalf("plain len mismatch i=%d py=%d go=%d", i, len(pyRes[i].Plain), len(plain))
		}
	}
}
