package llmgateway

import "github.com/pkoukk/tiktoken-go"

// Tiktoken is a TokenEstimator backed by OpenAI's cl100k_base encoding.
// Structure grounded on _examples/Tangerg-lynx/ai/tokenizer/tiktoken.go.
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCL100KBase loads the cl100k_base encoding. Returns an error
// rather than panicking, unlike the teacher's constructor, since gateway
// construction happens at application startup where errors are checked.
func NewTiktokenCL100KBase() (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &Tiktoken{encoding: enc}, nil
}

// Estimate encodes text and returns the resulting token count. Falls back
// to the word-count heuristic if encoding yields nothing for a non-empty
// string (defensive; tiktoken itself handles empty strings fine).
func (t *Tiktoken) Estimate(text string) int {
	if text == "" {
		return 0
	}
	tokens := t.encoding.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return WordCountEstimate(text)
	}
	return len(tokens)
}
