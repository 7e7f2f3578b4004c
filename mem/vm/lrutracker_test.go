package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LRUTracker", func() {
	var t *LRUTracker

	BeforeEach(func() {
		t = NewLRUTracker(8)
	})

	It("should have no victim before any frame is touched", func() {
		_, err := t.SelectVictim()

		Expect(err).To(MatchError(ErrNoEvictableFrame))
	})

	It("should select the least recently used frame", func() {
		t.Touch(1, 1)
		t.Touch(2, 2)
		t.Touch(3, 3)
		t.Touch(1, 4)

		victim, err := t.SelectVictim()

		Expect(err).NotTo(HaveOccurred())
		Expect(victim).To(Equal(2))
	})

	It("should break ties with the lowest frame", func() {
		t.Touch(5, 7)
		t.Touch(3, 7)
		t.Touch(4, 7)

		victim, err := t.SelectVictim()

		Expect(err).NotTo(HaveOccurred())
		Expect(victim).To(Equal(3))
	})

	It("should keep the victim until it is touched again", func() {
		t.Touch(1, 1)
		t.Touch(2, 2)

		victim, _ := t.SelectVictim()
		Expect(victim).To(Equal(1))

		victim, _ = t.SelectVictim()
		Expect(victim).To(Equal(1))

		t.Touch(1, 3)
		victim, _ = t.SelectVictim()
		Expect(victim).To(Equal(2))
	})

	It("should forget a frame", func() {
		t.Touch(1, 1)
		t.Touch(2, 2)

		t.Forget(1)

		victim, _ := t.SelectVictim()
		Expect(victim).To(Equal(2))
		Expect(t.NumTracked()).To(Equal(1))

		_, tracked := t.LastUsed(1)
		Expect(tracked).To(BeFalse())
	})

	It("should report the last use", func() {
		t.Touch(6, 42)

		time, tracked := t.LastUsed(6)
		Expect(tracked).To(BeTrue())
		Expect(time).To(Equal(uint64(42)))
	})

	It("should panic when touching the reserved frame", func() {
		Expect(func() { t.Touch(ReservedFrame, 1) }).To(Panic())
	})

	It("should panic when touching a frame out of range", func() {
		Expect(func() { t.Touch(8, 1) }).To(Panic())
	})
})
