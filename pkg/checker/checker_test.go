package checker_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ragbenchco/ragbench/pkg/checker"
)

func validLine(taskID string) string {
	return fmt.Sprintf(`{"conversation_id":"conv-1","task_id":%q,"Collection":"clapnq",`+
		`"input":[{"speaker":"user","text":"hi"}],`+
		`"contexts":[{"document_id":"d1","text":"passage","score":0.5}],`+
		`"predictions":[{"text":"an answer"}]}`, taskID)
}

func writeSubmission(lines ...string) string {
	path := filepath.Join(GinkgoT().TempDir(), "submission.jsonl")
	content := strings.Join(lines, "\n") + "\n"
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

var _ = Describe("CheckFile", func() {
	It("passes a well-formed submission", func() {
		report, err := checker.CheckFile(writeSubmission(validLine("t1"), validLine("t2")))
		Expect(err).ToNot(HaveOccurred())

		Expect(report.Ok()).To(BeTrue())
		Expect(report.Records).To(Equal(2))
		Expect(report.Warnings).To(BeEmpty())
		Expect(report.Summary()).To(ContainSubstring("passed"))
	})

	It("errors when the file is missing", func() {
		_, err := checker.CheckFile(filepath.Join(GinkgoT().TempDir(), "missing.jsonl"))
		Expect(err).To(HaveOccurred())
	})

	It("fails an empty file", func() {
		report, err := checker.CheckFile(writeSubmission(""))
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Ok()).To(BeFalse())
		Expect(report.Issues).To(ContainElement(ContainSubstring("no records")))
	})

	It("flags invalid JSON lines", func() {
		report, err := checker.CheckFile(writeSubmission(validLine("t1"), "{broken"))
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Ok()).To(BeFalse())
		Expect(report.Issues).To(ContainElement("line 2: invalid JSON"))
	})

	It("flags missing required fields", func() {
		report, err := checker.CheckFile(writeSubmission(`{"task_id":"t1"}`))
		Expect(err).ToNot(HaveOccurred())

		Expect(report.Ok()).To(BeFalse())
		Expect(report.Issues).To(ContainElement(ContainSubstring(`missing required field "conversation_id"`)))
		Expect(report.Issues).To(ContainElement(ContainSubstring(`missing required field "predictions"`)))
	})

	It("flags an empty task_id", func() {
		report, err := checker.CheckFile(writeSubmission(validLine("")))
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Issues).To(ContainElement(ContainSubstring("task_id must be a non-empty string")))
	})

	It("flags a non-list input", func() {
		line := strings.Replace(validLine("t1"), `"input":[{"speaker":"user","text":"hi"}]`, `"input":"hello"`, 1)
		report, err := checker.CheckFile(writeSubmission(line))
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Issues).To(ContainElement(ContainSubstring("input must be a list")))
	})

	It("warns about an empty input", func() {
		line := strings.Replace(validLine("t1"), `"input":[{"speaker":"user","text":"hi"}]`, `"input":[]`, 1)
		report, err := checker.CheckFile(writeSubmission(line))
		Expect(err).ToNot(HaveOccurred())

		Expect(report.Ok()).To(BeTrue())
		Expect(report.Warnings).To(ContainElement("line 1: input is empty"))
	})

	It("flags contexts missing fields", func() {
		line := strings.Replace(validLine("t1"),
			`"contexts":[{"document_id":"d1","text":"passage","score":0.5}]`,
			`"contexts":[{"text":"passage"}]`, 1)

		report, err := checker.CheckFile(writeSubmission(line))
		Expect(err).ToNot(HaveOccurred())

		Expect(report.Issues).To(ContainElement(ContainSubstring("context 0 missing document_id")))
		Expect(report.Issues).To(ContainElement(ContainSubstring("context 0 missing score")))
	})

	It("flags a non-numeric context score", func() {
		line := strings.Replace(validLine("t1"), `"score":0.5`, `"score":"high"`, 1)
		report, err := checker.CheckFile(writeSubmission(line))
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Issues).To(ContainElement(ContainSubstring("score must be numeric")))
	})

	It("warns when a record carries more than ten contexts", func() {
		contexts := make([]string, 11)
		for i := range contexts {
			contexts[i] = fmt.Sprintf(`{"document_id":"d%d","text":"p","score":1}`, i)
		}
		line := strings.Replace(validLine("t1"),
			`"contexts":[{"document_id":"d1","text":"passage","score":0.5}]`,
			`"contexts":[`+strings.Join(contexts, ",")+`]`, 1)

		report, err := checker.CheckFile(writeSubmission(line))
		Expect(err).ToNot(HaveOccurred())

		Expect(report.Ok()).To(BeTrue())
		Expect(report.Warnings).To(ContainElement(ContainSubstring("11 contexts")))
	})

	It("flags empty predictions", func() {
		line := strings.Replace(validLine("t1"), `"predictions":[{"text":"an answer"}]`, `"predictions":[]`, 1)
		report, err := checker.CheckFile(writeSubmission(line))
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Issues).To(ContainElement(ContainSubstring("predictions is empty")))
	})

	It("flags a blank first prediction", func() {
		line := strings.Replace(validLine("t1"), `"predictions":[{"text":"an answer"}]`, `"predictions":[{"text":"  "}]`, 1)
		report, err := checker.CheckFile(writeSubmission(line))
		Expect(err).ToNot(HaveOccurred())
		Expect(report.Issues).To(ContainElement(ContainSubstring("first prediction text is empty")))
	})

	It("lists issues in the summary", func() {
		report, err := checker.CheckFile(writeSubmission(`{"task_id":"t1"}`))
		Expect(err).ToNot(HaveOccurred())

		summary := report.Summary()
		Expect(summary).To(ContainSubstring("failed"))
		Expect(summary).To(ContainSubstring("issue: line 1"))
	})
})
