package logger_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ragbenchco/ragbench/pkg/logger"
)

var _ = Describe("NewLoggerWithWriters", func() {
	It("writes info logs to the given writer", func() {
		var buf bytes.Buffer

		log := logger.NewLoggerWithWriters(false, &buf)
		log.Info("task completed")

		Expect(buf.String()).To(ContainSubstring("task completed"))
	})

	It("suppresses debug logs unless debug is enabled", func() {
		var buf bytes.Buffer

		log := logger.NewLoggerWithWriters(false, &buf)
		log.Debug("hidden")
		Expect(buf.String()).ToNot(ContainSubstring("hidden"))
	})

	It("emits debug logs when debug is enabled", func() {
		var buf bytes.Buffer

		log := logger.NewLoggerWithWriters(true, &buf)
		log.Debug("visible")
		Expect(buf.String()).To(ContainSubstring("visible"))
	})

	It("duplicates output across multiple writers", func() {
		var first, second bytes.Buffer

		log := logger.NewLoggerWithWriters(false, &first, &second)
		log.Info("fan out")

		Expect(first.String()).To(ContainSubstring("fan out"))
		Expect(second.String()).To(ContainSubstring("fan out"))
	})
})
