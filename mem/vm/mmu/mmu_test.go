package mmu

import (
	"errors"
	"io"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/mem/vm"
	"go.uber.org/mock/gomock"
)

func pageAddr(page uint64) uint64 {
	return page << 7
}

func translateAll(mmu *Comp, las ...uint64) []uint64 {
	pas := make([]uint64, 0, len(las))
	for _, la := range las {
		pa, err := mmu.Translate(la)
		Expect(err).NotTo(HaveOccurred())

		pas = append(pas, pa)
	}

	return pas
}

var _ = Describe("MMU", func() {
	var (
		mockCtrl *gomock.Controller
		mmu      *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		var err error
		mmu, err = MakeBuilder().Build("MMU")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("translate", func() {
		It("should assign free frames in ascending order", func() {
			pas := translateAll(mmu, 0x0000, 0x0080, 0x0100)

			Expect(pas).To(Equal([]uint64{0x0080, 0x0100, 0x0180}))
			Expect(mmu.NumFaults()).To(Equal(uint64(3)))
			Expect(mmu.Clock()).To(Equal(uint64(3)))
		})

		It("should keep the offset", func() {
			pas := translateAll(mmu, 0x0005, 0x00ff)

			Expect(pas).To(Equal([]uint64{0x0085, 0x017f}))
		})

		It("should not fault on a resident page", func() {
			translateAll(mmu, 0x0000, 0x0080)

			pa, err := mmu.Translate(0x0010)

			Expect(err).NotTo(HaveOccurred())
			Expect(pa).To(Equal(uint64(0x0090)))
			Expect(mmu.Stats()).To(Equal(Stats{
				Accesses: 3,
				Hits:     1,
				Faults:   2,
			}))
		})

		It("should update the recency on hits", func() {
			translateAll(mmu, pageAddr(0), pageAddr(1), pageAddr(0))

			t1, _ := mmu.LastUsed(1)
			t2, _ := mmu.LastUsed(2)
			Expect(t1).To(Equal(uint64(3)))
			Expect(t2).To(Equal(uint64(2)))
		})

		It("should evict the least recently used frame", func() {
			for page := uint64(0); page < 7; page++ {
				translateAll(mmu, pageAddr(page))
			}
			translateAll(mmu, pageAddr(0))

			pa, err := mmu.Translate(pageAddr(7))

			Expect(err).NotTo(HaveOccurred())
			Expect(pa).To(Equal(uint64(0x0100)))
			Expect(mmu.NumFaults()).To(Equal(uint64(8)))
			Expect(mmu.Stats().Evictions).To(Equal(uint64(1)))

			entry, err := mmu.PageTable().Lookup(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Valid).To(BeFalse())

			entry, _ = mmu.PageTable().Lookup(7)
			Expect(entry).To(Equal(vm.PageTableEntry{Valid: true, Frame: 2}))
		})

		It("should fault again on an evicted page", func() {
			for page := uint64(0); page < 8; page++ {
				translateAll(mmu, pageAddr(page))
			}

			pa, err := mmu.Translate(pageAddr(0))

			Expect(err).NotTo(HaveOccurred())
			Expect(pa).To(Equal(uint64(0x0100)))
			Expect(mmu.NumFaults()).To(Equal(uint64(9)))
		})

		It("should reject an address beyond the virtual memory", func() {
			_, err := mmu.Translate(0x1000)

			Expect(err).To(MatchError(vm.ErrInvalidPageNumber))
			Expect(mmu.Clock()).To(Equal(uint64(0)))
			Expect(mmu.NumFaults()).To(Equal(uint64(0)))
		})

		It("should fail if no frame can be evicted", func() {
			var err error
			mmu, err = MakeBuilder().
				WithPhysicalMemorySize(128).
				Build("MMU")
			Expect(err).NotTo(HaveOccurred())

			_, err = mmu.Translate(0)

			Expect(err).To(MatchError(vm.ErrNoEvictableFrame))
		})
	})

	Context("invariants", func() {
		var las []uint64

		BeforeEach(func() {
			r := rand.New(rand.NewSource(1))
			las = make([]uint64, 2000)
			for i := range las {
				las[i] = uint64(r.Intn(4096))
			}
		})

		It("should never use the reserved frame", func() {
			for _, la := range las {
				pa, err := mmu.Translate(la)
				Expect(err).NotTo(HaveOccurred())
				Expect(pa >> 7).NotTo(Equal(uint64(vm.ReservedFrame)))
			}
		})

		It("should map each frame to at most one page", func() {
			for _, la := range las {
				_, err := mmu.Translate(la)
				Expect(err).NotTo(HaveOccurred())

				owners := map[int]uint64{}
				for page := uint64(0); page < 32; page++ {
					entry, _ := mmu.PageTable().Lookup(page)
					if !entry.Valid {
						continue
					}

					Expect(owners).NotTo(HaveKey(entry.Frame))
					owners[entry.Frame] = page
				}
				Expect(len(owners)).To(BeNumerically("<=", 7))
			}
		})

		It("should count a fault exactly when the page is not resident", func() {
			for _, la := range las {
				entry, _ := mmu.PageTable().Lookup(la >> 7)
				before := mmu.NumFaults()

				_, err := mmu.Translate(la)
				Expect(err).NotTo(HaveOccurred())

				if entry.Valid {
					Expect(mmu.NumFaults()).To(Equal(before))
				} else {
					Expect(mmu.NumFaults()).To(Equal(before + 1))
				}
			}
		})

		It("should be deterministic", func() {
			other, err := MakeBuilder().Build("Other")
			Expect(err).NotTo(HaveOccurred())

			Expect(translateAll(mmu, las...)).
				To(Equal(translateAll(other, las...)))
			Expect(mmu.Stats()).To(Equal(other.Stats()))
		})
	})

	Context("unmap", func() {
		It("should return the frame to the free pool", func() {
			translateAll(mmu, pageAddr(0), pageAddr(1), pageAddr(2))

			Expect(mmu.Unmap(1)).To(Succeed())

			entry, _ := mmu.PageTable().Lookup(1)
			Expect(entry.Valid).To(BeFalse())

			pa, err := mmu.Translate(pageAddr(9))
			Expect(err).NotTo(HaveOccurred())
			Expect(pa).To(Equal(uint64(0x0100)))
			Expect(mmu.Stats().Evictions).To(Equal(uint64(0)))
		})

		It("should ignore a page that is not resident", func() {
			Expect(mmu.Unmap(3)).To(Succeed())
		})

		It("should reject a page out of range", func() {
			Expect(mmu.Unmap(32)).To(MatchError(vm.ErrInvalidPageNumber))
		})
	})

	Context("hooks", func() {
		var hook *MockHook

		BeforeEach(func() {
			hook = NewMockHook(mockCtrl)
			mmu.AcceptHook(hook)
		})

		It("should report a fault and a translation", func() {
			gomock.InOrder(
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: mmu,
					Pos:    HookPosPageFault,
					Item:   uint64(1),
				}),
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: mmu,
					Pos:    HookPosTranslate,
					Item: Translation{
						Seq:          1,
						LogicalAddr:  0x0085,
						Page:         1,
						Offset:       5,
						Frame:        1,
						PhysicalAddr: 0x0085,
						Fault:        true,
					},
				}),
			)

			translateAll(mmu, 0x0085)
		})

		It("should report evictions", func() {
			var evictions []Eviction
			hook.EXPECT().Func(gomock.Any()).
				Do(func(ctx hooking.HookCtx) {
					if ctx.Pos == HookPosEvict {
						evictions = append(evictions, ctx.Item.(Eviction))
					}
				}).
				AnyTimes()

			for page := uint64(0); page < 9; page++ {
				translateAll(mmu, pageAddr(page))
			}

			Expect(evictions).To(Equal([]Eviction{
				{Seq: 8, Frame: 1, Page: 0},
				{Seq: 9, Frame: 2, Page: 1},
			}))
		})
	})

	Context("run", func() {
		var (
			src  *MockAddressSource
			sink *MockAddressSink
		)

		BeforeEach(func() {
			src = NewMockAddressSource(mockCtrl)
			sink = NewMockAddressSink(mockCtrl)
		})

		It("should translate until the end of the source", func() {
			gomock.InOrder(
				src.EXPECT().ReadAddress().Return(uint64(0x0000), nil),
				sink.EXPECT().WriteAddress(uint64(0x0080)).Return(nil),
				src.EXPECT().ReadAddress().Return(uint64(0x0080), nil),
				sink.EXPECT().WriteAddress(uint64(0x0100)).Return(nil),
				src.EXPECT().ReadAddress().Return(uint64(0), io.EOF),
			)

			stats, err := mmu.Run(src, sink)

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Faults).To(Equal(uint64(2)))
		})

		It("should stop at an invalid page", func() {
			gomock.InOrder(
				src.EXPECT().ReadAddress().Return(uint64(0x0000), nil),
				sink.EXPECT().WriteAddress(uint64(0x0080)).Return(nil),
				src.EXPECT().ReadAddress().Return(uint64(0x2000), nil),
			)

			stats, err := mmu.Run(src, sink)

			Expect(err).To(MatchError(vm.ErrInvalidPageNumber))
			Expect(stats.Accesses).To(Equal(uint64(1)))
		})

		It("should stop when the sink fails", func() {
			sinkErr := errors.New("disk full")
			src.EXPECT().ReadAddress().Return(uint64(0x0000), nil)
			sink.EXPECT().WriteAddress(uint64(0x0080)).Return(sinkErr)

			_, err := mmu.Run(src, sink)

			Expect(err).To(MatchError(ErrWriteFailure))
			Expect(err).To(MatchError(sinkErr))
		})

		It("should stop when the source fails", func() {
			srcErr := errors.New("bad record")
			src.EXPECT().ReadAddress().Return(uint64(0), srcErr)

			_, err := mmu.Run(src, sink)

			Expect(err).To(MatchError(srcErr))
		})
	})

	Context("builder", func() {
		It("should derive the layout from the sizes", func() {
			mmu, err := MakeBuilder().
				WithBytesPerPage(4096).
				WithVirtualMemorySize(1 << 20).
				WithPhysicalMemorySize(1 << 16).
				Build("MMU")

			Expect(err).NotTo(HaveOccurred())
			Expect(mmu.AddressSplitter().NumPages()).To(Equal(uint64(256)))
			Expect(mmu.AddressSplitter().NumFrames()).To(Equal(uint64(16)))
			Expect(mmu.PageTable().NumPages()).To(Equal(uint64(256)))
		})

		It("should reject an invalid configuration", func() {
			_, err := MakeBuilder().
				WithConfig(vm.Config{
					BytesPerPage:       100,
					VirtualMemorySize:  4096,
					PhysicalMemorySize: 1024,
				}).
				Build("MMU")

			Expect(err).To(MatchError(vm.ErrInvalidConfiguration))
		})

		It("should use the given page table", func() {
			pt := vm.NewPageTable(32, 8)

			mmu, err := MakeBuilder().WithPageTable(pt).Build("MMU")

			Expect(err).NotTo(HaveOccurred())
			Expect(mmu.PageTable()).To(BeIdenticalTo(pt))
		})

		It("should reject a page table that already maps pages", func() {
			pt := vm.NewPageTable(32, 8)
			Expect(pt.Map(3, 2)).To(Succeed())

			_, err := MakeBuilder().WithPageTable(pt).Build("MMU")

			Expect(err).To(MatchError(vm.ErrInvalidConfiguration))
		})

		It("should reject a page table of the wrong size", func() {
			_, err := MakeBuilder().
				WithPageTable(vm.NewPageTable(16, 8)).
				Build("MMU")

			Expect(err).To(MatchError(vm.ErrInvalidConfiguration))
		})
	})
})
