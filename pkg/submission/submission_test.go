package submission_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ragbenchco/ragbench/pkg/submission"
	"github.com/ragbenchco/ragbench/pkg/task"
)

func sampleTask() *task.Task {
	return &task.Task{
		ConversationID: "conv-1",
		TaskID:         "task-1",
		Collection:     "clapnq",
		RawInput:       json.RawMessage(`[{"speaker":"user","text":"What is RAG?"}]`),
		Conversation:   []task.Message{{Speaker: "user", Text: "What is RAG?"}},
		Contexts: []task.Passage{
			{DocumentID: "doc-1", Text: "Retrieval augmented generation.", Score: 0.9},
		},
	}
}

var _ = Describe("FromTask", func() {
	It("copies task identity into the result", func() {
		result := submission.FromTask(sampleTask(), "An answer.")

		Expect(result.ConversationID).To(Equal("conv-1"))
		Expect(result.TaskID).To(Equal("task-1"))
		Expect(result.Collection).To(Equal("clapnq"))
		Expect(result.Predictions).To(HaveLen(1))
		Expect(result.Predictions[0].Text).To(Equal("An answer."))
	})

	It("preserves the raw input verbatim", func() {
		result := submission.FromTask(sampleTask(), "x")
		Expect(string(result.Input)).To(Equal(`[{"speaker":"user","text":"What is RAG?"}]`))
	})

	It("truncates contexts to the first ten in retrieval order", func() {
		t := sampleTask()
		t.Contexts = nil
		for i := 0; i < 15; i++ {
			t.Contexts = append(t.Contexts, task.Passage{
				DocumentID: fmt.Sprintf("doc-%d", i),
				Text:       "passage",
				Score:      1.0,
			})
		}

		result := submission.FromTask(t, "x")

		Expect(result.Contexts).To(HaveLen(submission.MaxContexts))
		Expect(result.Contexts[0].DocumentID).To(Equal("doc-0"))
		Expect(result.Contexts[9].DocumentID).To(Equal("doc-9"))
	})

	It("serializes missing contexts as an empty list", func() {
		t := sampleTask()
		t.Contexts = nil

		line, err := json.Marshal(submission.FromTask(t, "x"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(line)).To(ContainSubstring(`"contexts":[]`))
	})

	It("serializes a missing input as an empty list", func() {
		t := sampleTask()
		t.RawInput = nil

		line, err := json.Marshal(submission.FromTask(t, "x"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(line)).To(ContainSubstring(`"input":[]`))
	})

	It("uses the uppercase Collection key on the wire", func() {
		line, err := json.Marshal(submission.FromTask(sampleTask(), "x"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(line)).To(ContainSubstring(`"Collection":"clapnq"`))
	})
})

var _ = Describe("Writer", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "predictions.jsonl")
	})

	It("appends one JSON line per result", func() {
		writer, err := submission.NewWriter(path)
		Expect(err).ToNot(HaveOccurred())
		defer writer.Close()

		Expect(writer.Write(submission.FromTask(sampleTask(), "first"))).To(Succeed())
		Expect(writer.Write(submission.FromTask(sampleTask(), "second"))).To(Succeed())

		raw, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring(`"first"`))
		Expect(lines[1]).To(ContainSubstring(`"second"`))
	})

	It("keeps prior lines when reopened for append", func() {
		writer, err := submission.NewWriter(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(writer.Write(submission.FromTask(sampleTask(), "first"))).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		writer, err = submission.NewWriter(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(writer.Write(submission.FromTask(sampleTask(), "second"))).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		results, err := submission.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(results).To(HaveLen(2))
	})
})

var _ = Describe("ReadFile", func() {
	It("round-trips written results", func() {
		path := filepath.Join(GinkgoT().TempDir(), "predictions.jsonl")

		writer, err := submission.NewWriter(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(writer.Write(submission.FromTask(sampleTask(), "round trip"))).To(Succeed())
		Expect(writer.Close()).To(Succeed())

		results, err := submission.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].TaskID).To(Equal("task-1"))
		Expect(results[0].Predictions[0].Text).To(Equal("round trip"))
	})

	It("errors on a malformed line", func() {
		path := filepath.Join(GinkgoT().TempDir(), "predictions.jsonl")
		Expect(os.WriteFile(path, []byte("{not json}\n"), 0o644)).To(Succeed())

		_, err := submission.ReadFile(path)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("line 1"))
	})

	It("errors when the file does not exist", func() {
		_, err := submission.ReadFile(filepath.Join(GinkgoT().TempDir(), "missing.jsonl"))
		Expect(err).To(HaveOccurred())
	})
})
