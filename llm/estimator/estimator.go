// Package estimator guesses prompt sizes without a tokenizer, close enough
// to warn before a conversation outgrows the context window.
package estimator

import (
	"context"
	"unicode"

	"github.com/ryanreadbooks/zaikit/llm/schema"
)

// runes per token for each script, checked in order
var runeClasses = []struct {
	match         func(rune) bool
	runesPerToken float64
}{
	{func(r rune) bool { return unicode.Is(unicode.Han, r) }, 1.2},
	{func(r rune) bool {
		return unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
	}, 1.5},
	{func(r rune) bool { return unicode.Is(unicode.Cyrillic, r) }, 3},
	{func(r rune) bool { return unicode.Is(unicode.Arabic, r) }, 2.5},
	{func(r rune) bool { return unicode.Is(unicode.Latin, r) }, 3.5},
	{unicode.IsDigit, 4},
	{func(r rune) bool { return unicode.In(r, unicode.So, unicode.Sk, unicode.Sm) }, 1},
	{unicode.IsPunct, 2},
	{unicode.IsSpace, 5},
}

const otherRunesPerToken = 2

// EstimateToken returns a rough token count for text; 0 only for "".
func EstimateToken(text string) int {
	if text == "" {
		return 0
	}

	var tokens float64
	for _, r := range text {
		per := float64(otherRunesPerToken)
		for _, c := range runeClasses {
			if c.match(r) {
				per = c.runesPerToken
				break
			}
		}
		tokens += 1 / per
	}
	return int(tokens) + 1
}

// Fits reports whether the request is estimated to stay within window
// tokens, together with the estimate itself. A window <= 0 always fits.
func Fits(req *schema.Request, window int) (int, bool) {
	n, _ := RoughEstimator{}.Estimate(context.Background(), req)
	return n, window <= 0 || n <= window
}

// RoughEstimator counts message texts and tool definitions.
type RoughEstimator struct{}

func (RoughEstimator) Estimate(_ context.Context, req *schema.Request) (int, error) {
	if req == nil {
		return 0, nil
	}

	var total int
	for _, msg := range req.Messages {
		total += EstimateToken(msg.Text())
	}
	for _, tool := range req.Tools {
		total += EstimateToken(tool.Text())
	}
	return total, nil
}
