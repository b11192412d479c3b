package keypool_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ragbenchco/ragbench/pkg/keypool"
)

var _ = Describe("Pool", func() {
	It("rejects empty pools", func() {
		_, err := keypool.New(0)
		Expect(err).To(MatchError(keypool.ErrEmptyPool))

		_, err = keypool.New(-1)
		Expect(err).To(MatchError(keypool.ErrEmptyPool))
	})

	It("starts with every key active", func() {
		p, err := keypool.New(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Size()).To(Equal(3))
		Expect(p.ActiveCount()).To(Equal(3))
		Expect(p.ExhaustedCount()).To(BeZero())

		idx, ok := p.NextAvailable()
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(0))
	})

	It("stays on the current key until advanced", func() {
		p, err := keypool.New(3)
		Expect(err).NotTo(HaveOccurred())

		for range 5 {
			idx, ok := p.NextAvailable()
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(0))
		}
	})

	It("advances circularly", func() {
		p, err := keypool.New(3)
		Expect(err).NotTo(HaveOccurred())

		p.Advance()
		idx, ok := p.NextAvailable()
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(1))

		p.Advance()
		p.Advance()
		idx, ok = p.NextAvailable()
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(0))
	})

	It("skips exhausted keys", func() {
		p, err := keypool.New(3)
		Expect(err).NotTo(HaveOccurred())

		p.MarkExhausted(0)
		idx, ok := p.NextAvailable()
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(1))
		Expect(p.ActiveCount()).To(Equal(2))
	})

	It("returns none available once all keys are exhausted", func() {
		p, err := keypool.New(3)
		Expect(err).NotTo(HaveOccurred())

		for i := range 3 {
			p.MarkExhausted(i)
		}

		Expect(p.ActiveCount()).To(BeZero())
		Expect(p.ExhaustedCount()).To(Equal(3))

		// Exhaustion is terminal: every subsequent call fails too.
		for range 3 {
			_, ok := p.NextAvailable()
			Expect(ok).To(BeFalse())
		}
	})

	It("ignores double exhaustion and out-of-range indices", func() {
		p, err := keypool.New(2)
		Expect(err).NotTo(HaveOccurred())

		p.MarkExhausted(0)
		p.MarkExhausted(0)
		p.MarkExhausted(-1)
		p.MarkExhausted(7)

		Expect(p.ActiveCount()).To(Equal(1))
	})
})
