package chat

import (
	goaway "github.com/TwiN/go-away"
)

// Filter masks profane tokens in message text before broadcast. It wraps a
// single reusable detector; construct one at startup and share it, the
// detector is stateless after construction.
type Filter struct {
	detector *goaway.ProfanityDetector
}

// NewFilter returns a filter backed by the default profanity dictionary.
func NewFilter() *Filter {
	return &Filter{
		detector: goaway.NewProfanityDetector(),
	}
}

// Clean returns text with every profane token replaced by asterisks. Clean
// input passes through unchanged.
func (f *Filter) Clean(text string) string {
	return f.detector.Censor(text)
}
