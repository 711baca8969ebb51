package embedding

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const defaultMaxTokens = 128

// encoded is one tokenized text, unpadded: seqLen real tokens including the
// framing tokens.
type encoded struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	seqLen        int64
}

// tokenizer performs BERT-style WordPiece tokenization.
type tokenizer struct {
	vocab     *vocab
	maxTokens int
}

func newTokenizer(vocabPath string, maxTokens int) (*tokenizer, error) {
	v, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	if maxTokens < 3 {
		maxTokens = defaultMaxTokens
	}
	return &tokenizer{vocab: v, maxTokens: maxTokens}, nil
}

// encode converts text into [CLS] tokens... [SEP], truncated to maxTokens.
func (t *tokenizer) encode(text string) encoded {
	tokens := t.wordpiece(basicTokenize(text))
	if limit := t.maxTokens - 2; len(tokens) > limit {
		tokens = tokens[:limit]
	}

	n := len(tokens) + 2
	ids := make([]int64, n)
	mask := make([]int64, n)
	ids[0] = t.vocab.clsID
	for i, tok := range tokens {
		ids[i+1] = t.vocab.lookup(tok)
	}
	ids[n-1] = t.vocab.sepID
	for i := range mask {
		mask[i] = 1
	}
	return encoded{
		inputIDs:      ids,
		attentionMask: mask,
		tokenTypeIDs:  make([]int64, n),
		seqLen:        int64(n),
	}
}

// wordpiece applies greedy longest-match-first subword splitting.
func (t *tokenizer) wordpiece(tokens []string) []string {
	var result []string
	for _, token := range tokens {
		if token == "" {
			continue
		}
		result = append(result, t.wordpieceToken(token)...)
	}
	return result
}

func (t *tokenizer) wordpieceToken(token string) []string {
	runes := []rune(token)
	if len(runes) > 200 {
		return []string{t.vocab.unkToken}
	}

	var subTokens []string
	start := 0
	for start < len(runes) {
		end := len(runes)
		found := false
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if t.vocab.contains(sub) {
				subTokens = append(subTokens, sub)
				found = true
				break
			}
			end--
		}
		if !found {
			return []string{t.vocab.unkToken}
		}
		start = end
	}
	return subTokens
}

// basicTokenize cleans, lowercases, strips accents and splits on whitespace
// and punctuation, isolating CJK ideographs.
func basicTokenize(text string) []string {
	text = cleanText(text)
	text = isolateCJK(text)
	text = strings.ToLower(text)
	text = stripAccents(text)

	var tokens []string
	for _, word := range strings.Fields(text) {
		tokens = append(tokens, splitOnPunctuation(word)...)
	}
	return tokens
}

// cleanText drops control characters and maps whitespace to spaces.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		if isWhitespace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripAccents removes combining marks after NFD normalization.
func stripAccents(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFD.String(text) {
		if unicode.In(r, unicode.Mn) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isolateCJK(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if isCJK(r) {
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitOnPunctuation(word string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range word {
		if isPunctuation(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			tokens = append(tokens, string(r))
		} else {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

// isPunctuation treats all non-alphanumeric ASCII symbols as punctuation,
// plus the Unicode punctuation categories.
func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
