package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PageTable", func() {
	var pt PageTable

	BeforeEach(func() {
		pt = NewPageTable(32, 8)
	})

	It("should start with all pages invalid", func() {
		Expect(pt.NumPages()).To(Equal(uint64(32)))

		for page := uint64(0); page < 32; page++ {
			entry, err := pt.Lookup(page)

			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Valid).To(BeFalse())
			Expect(entry.Frame).To(Equal(NoFrame))
		}
	})

	It("should map a page", func() {
		Expect(pt.Map(5, 3)).To(Succeed())

		entry, err := pt.Lookup(5)
		Expect(err).NotTo(HaveOccurred())
		Expect(entry).To(Equal(PageTableEntry{Valid: true, Frame: 3}))

		page, found := pt.PageOf(3)
		Expect(found).To(BeTrue())
		Expect(page).To(Equal(uint64(5)))
	})

	It("should invalidate a page", func() {
		Expect(pt.Map(5, 3)).To(Succeed())

		Expect(pt.Invalidate(5)).To(Succeed())

		entry, _ := pt.Lookup(5)
		Expect(entry.Valid).To(BeFalse())
		Expect(entry.Frame).To(Equal(NoFrame))

		_, found := pt.PageOf(3)
		Expect(found).To(BeFalse())
	})

	It("should move the reverse mapping when a page is remapped", func() {
		Expect(pt.Map(5, 3)).To(Succeed())
		Expect(pt.Map(5, 4)).To(Succeed())

		_, found := pt.PageOf(3)
		Expect(found).To(BeFalse())

		page, found := pt.PageOf(4)
		Expect(found).To(BeTrue())
		Expect(page).To(Equal(uint64(5)))
	})

	It("should panic if a frame is mapped to two pages", func() {
		Expect(pt.Map(5, 3)).To(Succeed())

		Expect(func() { _ = pt.Map(6, 3) }).To(Panic())
	})

	It("should reject pages out of range", func() {
		_, err := pt.Lookup(32)
		Expect(err).To(MatchError(ErrInvalidPageNumber))

		Expect(pt.Map(32, 1)).To(MatchError(ErrInvalidPageNumber))
		Expect(pt.Invalidate(32)).To(MatchError(ErrInvalidPageNumber))
	})

	It("should reject frames out of range", func() {
		Expect(pt.Map(1, 8)).NotTo(Succeed())
	})
})
