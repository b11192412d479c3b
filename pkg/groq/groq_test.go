package groq_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ragbenchco/ragbench/pkg/groq"
)

var _ = Describe("Client", func() {
	It("requires an API key", func() {
		_, err := groq.New(groq.Config{})
		Expect(err).To(HaveOccurred())

		_, err = groq.New(groq.Config{APIKey: "   "})
		Expect(err).To(HaveOccurred())
	})

	It("sends an OpenAI-format request and returns the first choice", func() {
		var gotAuth string
		var gotBody map[string]any

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "cmpl-1",
				"object": "chat.completion",
				"model": "meta-llama/llama-4-scout-17b-16e-instruct",
				"choices": [
					{"index": 0, "message": {"role": "assistant", "content": "  Paris is the capital of France.  "}, "finish_reason": "stop"}
				],
				"usage": {"prompt_tokens": 10, "completion_tokens": 8, "total_tokens": 18}
			}`))
		}))
		defer server.Close()

		client, err := groq.New(groq.Config{APIKey: "gsk_test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		text, err := client.Complete(context.Background(), "What is the capital of France?", 0.3)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Paris is the capital of France."))

		Expect(gotAuth).To(Equal("Bearer gsk_test"))
		Expect(gotBody["model"]).To(Equal(groq.DefaultModel))
		Expect(gotBody["temperature"]).To(BeNumerically("==", 0.3))
		Expect(gotBody["max_tokens"]).To(BeNumerically("==", groq.DefaultMaxTokens))

		messages, ok := gotBody["messages"].([]any)
		Expect(ok).To(BeTrue())
		Expect(messages).To(HaveLen(1))
	})

	It("surfaces non-2xx responses as APIError with the body text", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"message": "Rate limit reached, TPD exceeded"}}`))
		}))
		defer server.Close()

		client, err := groq.New(groq.Config{APIKey: "gsk_test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = client.Complete(context.Background(), "q", 0.1)
		Expect(err).To(HaveOccurred())

		var apiErr *groq.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusTooManyRequests))
		Expect(apiErr.Error()).To(ContainSubstring("TPD"))
		Expect(apiErr.Error()).To(ContainSubstring("429"))
	})

	It("errors on completions with no choices", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id": "cmpl-2", "choices": []}`))
		}))
		defer server.Close()

		client, err := groq.New(groq.Config{APIKey: "gsk_test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = client.Complete(context.Background(), "q", 0.1)
		Expect(err).To(MatchError(groq.ErrNoChoices))
	})

	It("respects context cancellation", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		client, err := groq.New(groq.Config{APIKey: "gsk_test", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = client.Complete(ctx, "q", 0.1)
		Expect(err).To(HaveOccurred())
	})
})
