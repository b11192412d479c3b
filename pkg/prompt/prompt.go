// Package prompt renders generation prompts for benchmark tasks.
//
// There are exactly two prompt variants, chosen by whether the task has
// reference passages: an answerable prompt that forces the model to answer
// from the passages, and an unanswerable prompt that forces a polite refusal.
// Prompt wording alone is not trusted to hold that line; the dispatcher runs
// a corrective pass over every response afterward.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ragbenchco/ragbench/pkg/task"
)

// ErrEmptyConversation indicates a task with zero conversation turns.
var ErrEmptyConversation = errors.New("conversation has no turns")

// domainGuidance maps domain keywords to a short instruction appended to
// answerable prompts. Keywords are matched as substrings of the lowercased
// collection name, in order; the first match wins.
var domainGuidance = []struct {
	keyword  string
	guidance string
}{
	{"fiqa", "Financial question - be precise with numbers and terms."},
	{"ibmcloud", "Technical question - be accurate with technical details."},
	{"clapnq", "General knowledge - provide clear, direct answers."},
	{"govt", "Government/policy - be authoritative and accurate."},
}

const genericGuidance = "Provide helpful information."

const unanswerableTemplate = `You are a helpful assistant. You do not have any information to answer the current question.

CONVERSATION HISTORY:
%s

CURRENT QUESTION: %s

CRITICAL INSTRUCTION: You do NOT have any reference information or documents to answer this question. You MUST politely decline.

Your response MUST be a polite refusal that acknowledges you don't have the information.

Examples of good refusals:
- "I don't have the information needed to answer that question."
- "I'm unable to answer that as I don't have access to the relevant information."
- "Unfortunately, I don't have the information to help with that question."

DO NOT attempt to answer the question. DO NOT provide general knowledge. ONLY politely decline.

YOUR REFUSAL:`

const answerableTemplate = `You are a helpful assistant answering questions based on provided information.

CONVERSATION HISTORY:
%s

REFERENCE INFORMATION:
%s

CURRENT QUESTION: %s

CONTEXT: %s

CRITICAL INSTRUCTIONS:
1. You MUST answer using the reference information above
2. The passages contain the answer - find and use it
3. Be direct and specific - synthesize from multiple passages if needed
4. Length: 2-4 sentences (concise but complete)
5. For follow-up questions, connect to previous discussion
6. DO NOT say "I don't have information" - you DO have the passages above
7. Answer confidently based on the provided references

ANSWER (be direct and specific):`

// Build renders the prompt for a task. The last conversation turn is the
// current question; everything before it is rendered as history.
func Build(conversation []task.Message, contexts []task.Passage, collection string) (string, error) {
	if len(conversation) == 0 {
		return "", ErrEmptyConversation
	}

	question := conversation[len(conversation)-1].Text
	history := formatHistory(conversation)

	if len(contexts) == 0 {
		return fmt.Sprintf(unanswerableTemplate, history, question), nil
	}

	return fmt.Sprintf(answerableTemplate,
		history,
		formatPassages(contexts),
		question,
		guidanceFor(collection),
	), nil
}

// formatHistory renders all turns except the last as role-prefixed lines.
func formatHistory(conversation []task.Message) string {
	history := conversation[:len(conversation)-1]
	if len(history) == 0 {
		return "No previous conversation."
	}

	parts := make([]string, 0, len(history))
	for _, msg := range history {
		role := "Assistant"
		if strings.EqualFold(msg.Speaker, "user") {
			role = "User"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", role, msg.Text))
	}

	return strings.Join(parts, "\n\n")
}

// formatPassages numbers every passage and includes its text verbatim.
func formatPassages(contexts []task.Passage) string {
	parts := make([]string, 0, len(contexts))
	for i, ctx := range contexts {
		parts = append(parts, fmt.Sprintf("[Passage %d]\n%s", i+1, strings.TrimSpace(ctx.Text)))
	}
	return strings.Join(parts, "\n\n")
}

func guidanceFor(collection string) string {
	lowered := strings.ToLower(collection)
	for _, d := range domainGuidance {
		if strings.Contains(lowered, d.keyword) {
			return d.guidance
		}
	}
	return genericGuidance
}
