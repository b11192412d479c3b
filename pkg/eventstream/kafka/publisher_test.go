package kafka_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ragbenchco/ragbench/pkg/eventstream"
	"github.com/ragbenchco/ragbench/pkg/eventstream/kafka"
)

var _ = Describe("Publisher", func() {
	It("requires at least one broker", func() {
		_, err := kafka.NewPublisher(nil, "ragbench.tasks")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("brokers"))
	})

	It("requires a topic", func() {
		_, err := kafka.NewPublisher([]string{"localhost:9092"}, "")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("topic"))
	})

	It("constructs with brokers and a topic", func() {
		p, err := kafka.NewPublisher([]string{"localhost:9092"}, "ragbench.tasks")
		Expect(err).ToNot(HaveOccurred())
		Expect(p).NotTo(BeNil())
		Expect(p.Close()).To(Succeed())
	})

	It("rejects nil events before touching the wire", func() {
		p, err := kafka.NewPublisher([]string{"localhost:9092"}, "ragbench.tasks")
		Expect(err).ToNot(HaveOccurred())
		defer p.Close()

		Expect(p.PublishTaskCompleted(context.Background(), nil)).To(MatchError(eventstream.ErrNilEvent))
	})
})
