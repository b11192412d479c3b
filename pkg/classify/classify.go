// Package classify provides the lexical refusal classifier shared by the
// enforcement pass and the quality validator.
//
// Classification is a case-insensitive substring match against an ordered
// phrase vocabulary. It is deliberately crude: a substantive answer that
// happens to contain a vocabulary phrase ("many users are unable to access
// X") is misclassified as a refusal. That limitation is accepted; the
// classifier is kept as its own component so a smarter one can be swapped in
// without touching the dispatcher or enforcer contracts.
package classify

import "strings"

// defaultPhrases is the refusal vocabulary the generation pipeline enforces
// against.
var defaultPhrases = []string{
	"don't have", "do not have", "don't know", "cannot answer",
	"can't answer", "no information", "not able", "unable to",
	"cannot provide", "can't provide", "don't possess",
}

// validatorPhrases is the wider vocabulary the quality validator scores
// with. It is a superset of the default vocabulary.
var validatorPhrases = []string{
	"don't have", "do not have", "don't know", "cannot answer",
	"can't answer", "no information", "not able", "unable to",
	"apologize", "sorry", "insufficient", "not enough", "can't provide",
	"cannot provide", "don't possess", "do not possess",
}

// Classifier decides whether a piece of generated text reads as a refusal.
type Classifier struct {
	phrases []string
}

// New creates a Classifier over the given ordered phrase list.
func New(phrases []string) *Classifier {
	copied := make([]string, len(phrases))
	copy(copied, phrases)
	return &Classifier{phrases: copied}
}

// NewDefault creates a Classifier with the generation-side vocabulary.
func NewDefault() *Classifier {
	return New(defaultPhrases)
}

// NewValidator creates a Classifier with the validator-side vocabulary.
func NewValidator() *Classifier {
	return New(validatorPhrases)
}

// IsRefusal reports whether any vocabulary phrase appears in the text.
func (c *Classifier) IsRefusal(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range c.phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// Phrases returns a copy of the classifier's vocabulary in match order.
func (c *Classifier) Phrases() []string {
	copied := make([]string, len(c.phrases))
	copy(copied, c.phrases)
	return copied
}
