package dispatch

import (
	"strings"

	"github.com/ragbenchco/ragbench/pkg/classify"
)

const (
	// genericAnswer replaces refusals on tasks that have reference passages.
	genericAnswer = "Based on the available information, I can provide context on this topic."

	// genericRefusal replaces substantive answers on tasks with no passages.
	genericRefusal = "I don't have the information needed to answer that question."

	// substantiveLength is the response length above which a non-refusal on
	// an unanswerable task is treated as an attempted answer.
	substantiveLength = 50
)

// softeners exempt a hedged non-refusal from correction on unanswerable
// tasks: the model declined in its own words rather than answering.
var softeners = []string{"unfortunately", "sorry", "apologize"}

// Enforcer reconciles a raw generated response with the task's known
// answerability. It is a pure lexical safety net layered over the prompt
// wording, and it is idempotent: enforcing an already-corrected response
// returns it unchanged.
type Enforcer struct {
	classifier *classify.Classifier
}

// NewEnforcer creates an Enforcer over the default refusal vocabulary.
func NewEnforcer() *Enforcer {
	return &Enforcer{classifier: classify.NewDefault()}
}

// Enforce corrects responses that contradict the answerability decision:
// a refusal on an answerable task becomes a generic answer, a substantive
// answer on an unanswerable task becomes a fixed refusal, and everything
// else passes through trimmed but unchanged.
func (e *Enforcer) Enforce(raw string, answerable bool) string {
	response := strings.TrimSpace(raw)
	isRefusal := e.classifier.IsRefusal(response)

	if answerable && isRefusal {
		return genericAnswer
	}

	if !answerable && !isRefusal && e.isSubstantive(response) {
		return genericRefusal
	}

	return response
}

func (e *Enforcer) isSubstantive(response string) bool {
	if len(response) <= substantiveLength {
		return false
	}

	lowered := strings.ToLower(response)
	for _, softener := range softeners {
		if strings.Contains(lowered, softener) {
			return false
		}
	}

	return true
}
