package embedding

import (
	"bufio"
	"fmt"
	"os"
)

// specialTokens names the framing tokens of a WordPiece vocabulary.
type specialTokens struct {
	pad, unk, cls, sep string
}

// BERT-style vocabularies use bracketed specials; MPNet and RoBERTa-derived
// sentence encoders use angle-bracketed ones.
var specialTokenSets = []specialTokens{
	{pad: "[PAD]", unk: "[UNK]", cls: "[CLS]", sep: "[SEP]"},
	{pad: "<pad>", unk: "<unk>", cls: "<s>", sep: "</s>"},
}

// vocab holds a WordPiece vocabulary where the 0-indexed line number is the
// token ID.
type vocab struct {
	tokenToID map[string]int64
	size      int

	unkToken string
	padID    int64
	unkID    int64
	clsID    int64
	sepID    int64
}

func loadVocab(path string) (*vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	tokenToID := make(map[string]int64, 32000)
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		tok := scanner.Text()
		if _, dup := tokenToID[tok]; !dup {
			tokenToID[tok] = int64(n)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read error: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("vocab: file is empty: %s", path)
	}
	return newVocab(tokenToID, n)
}

// newVocab resolves the special token IDs against the first matching set.
func newVocab(tokenToID map[string]int64, size int) (*vocab, error) {
	for _, set := range specialTokenSets {
		cls, okCLS := tokenToID[set.cls]
		sep, okSEP := tokenToID[set.sep]
		unk, okUNK := tokenToID[set.unk]
		if !okCLS || !okSEP || !okUNK {
			continue
		}
		return &vocab{
			tokenToID: tokenToID,
			size:      size,
			unkToken:  set.unk,
			padID:     tokenToID[set.pad],
			unkID:     unk,
			clsID:     cls,
			sepID:     sep,
		}, nil
	}
	return nil, fmt.Errorf("vocab: no recognised special tokens ([CLS]/[SEP]/[UNK] or <s>/</s>/<unk>)")
}

// lookup returns the token ID, or the unknown-token ID if absent.
func (v *vocab) lookup(token string) int64 {
	if id, ok := v.tokenToID[token]; ok {
		return id
	}
	return v.unkID
}

func (v *vocab) contains(token string) bool {
	_, ok := v.tokenToID[token]
	return ok
}
