package prompt_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ragbenchco/ragbench/pkg/prompt"
	"github.com/ragbenchco/ragbench/pkg/task"
)

var _ = Describe("Build", func() {
	It("rejects empty conversations", func() {
		_, err := prompt.Build(nil, nil, "general")
		Expect(err).To(MatchError(prompt.ErrEmptyConversation))
	})

	Context("with no contexts", func() {
		conversation := []task.Message{
			{Speaker: "user", Text: "What is the GDP of Atlantis?"},
		}

		It("builds the refusal prompt", func() {
			p, err := prompt.Build(conversation, nil, "general")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("You MUST politely decline"))
			Expect(p).To(ContainSubstring("CURRENT QUESTION: What is the GDP of Atlantis?"))
			Expect(p).To(ContainSubstring("DO NOT provide general knowledge"))
		})

		It("includes example refusal phrasings", func() {
			p, err := prompt.Build(conversation, nil, "general")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("I don't have the information needed to answer that question."))
		})

		It("never includes reference information", func() {
			p, err := prompt.Build(conversation, nil, "general")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).NotTo(ContainSubstring("REFERENCE INFORMATION"))
			Expect(p).NotTo(ContainSubstring("[Passage"))
		})
	})

	Context("with contexts", func() {
		conversation := []task.Message{
			{Speaker: "user", Text: "What is the capital of France?"},
		}
		contexts := []task.Passage{
			{DocumentID: "d1", Text: "Paris is the capital of France.", Score: 0.9},
		}

		It("includes every passage verbatim and numbered", func() {
			p, err := prompt.Build(conversation, contexts, "clapnq")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("[Passage 1]\nParis is the capital of France."))
			Expect(p).To(ContainSubstring("CURRENT QUESTION: What is the capital of France?"))
		})

		It("instructs the model never to claim lack of information", func() {
			p, err := prompt.Build(conversation, contexts, "clapnq")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring(`DO NOT say "I don't have information"`))
		})

		It("selects domain guidance by collection keyword", func() {
			p, err := prompt.Build(conversation, contexts, "fiqa_benchmark_dev")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("be precise with numbers"))
		})

		It("prefers the first keyword when a collection matches several", func() {
			p, err := prompt.Build(conversation, contexts, "govt_fiqa_mixed")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("be precise with numbers"))
			Expect(p).NotTo(ContainSubstring("be authoritative"))
		})

		It("matches collection keywords case-insensitively", func() {
			p, err := prompt.Build(conversation, contexts, "GOVT")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("be authoritative and accurate"))
		})

		It("falls back to generic guidance", func() {
			p, err := prompt.Build(conversation, contexts, "something-else")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("Provide helpful information."))
		})
	})

	Context("history rendering", func() {
		It("renders earlier turns as role-prefixed lines", func() {
			conversation := []task.Message{
				{Speaker: "user", Text: "first question"},
				{Speaker: "agent", Text: "first answer"},
				{Speaker: "user", Text: "follow up"},
			}

			p, err := prompt.Build(conversation, nil, "general")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("User: first question"))
			Expect(p).To(ContainSubstring("Assistant: first answer"))
			Expect(p).NotTo(ContainSubstring("User: follow up"))
			Expect(p).To(ContainSubstring("CURRENT QUESTION: follow up"))
		})

		It("notes when there is no previous conversation", func() {
			conversation := []task.Message{{Speaker: "user", Text: "only question"}}

			p, err := prompt.Build(conversation, nil, "general")
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(ContainSubstring("No previous conversation."))
		})
	})
})
