package paging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/sim"
)

func residentFrame(index int, page PageNumber, loadedAt, accessedAt sim.VTime) Frame {
	return Frame{
		Index:          index,
		Page:           page,
		Valid:          true,
		Used:           true,
		LoadedAt:       loadedAt,
		LastAccessedAt: accessedAt,
	}
}

var _ = Describe("FrameTable", func() {
	var table *FrameTable

	BeforeEach(func() {
		table = NewFrameTable(3)
	})

	It("should start with all frames empty", func() {
		Expect(table.NumFrames()).To(Equal(3))
		Expect(table.NumValid()).To(Equal(0))
		Expect(table.IsFull()).To(BeFalse())
		Expect(table.Check()).To(Succeed())

		for i, f := range table.Frames() {
			Expect(f.Index).To(Equal(i))
			Expect(f.Valid).To(BeFalse())
			Expect(f.Page).To(Equal(NoPage))
			Expect(f.LoadedAt.Defined()).To(BeFalse())
			Expect(f.LastAccessedAt.Defined()).To(BeFalse())
		}
	})

	It("should find the first free frame", func() {
		Expect(table.Update(residentFrame(0, 7, 0, 0))).To(Succeed())

		f, ok := table.FirstFree()

		Expect(ok).To(BeTrue())
		Expect(f.Index).To(Equal(1))
	})

	It("should report no free frame when full", func() {
		for i := 0; i < 3; i++ {
			Expect(table.Update(
				residentFrame(i, PageNumber(i), sim.VTime(i), sim.VTime(i)),
			)).To(Succeed())
		}

		_, ok := table.FirstFree()

		Expect(ok).To(BeFalse())
		Expect(table.IsFull()).To(BeTrue())
		Expect(table.NumValid()).To(Equal(3))
	})

	It("should look up resident pages", func() {
		Expect(table.Update(residentFrame(2, 0x42, 1, 1))).To(Succeed())

		f, ok := table.Lookup(0x42)
		Expect(ok).To(BeTrue())
		Expect(f.Index).To(Equal(2))

		_, ok = table.Lookup(0x43)
		Expect(ok).To(BeFalse())
	})

	It("should not count a frame twice when it is updated again", func() {
		Expect(table.Update(residentFrame(0, 1, 0, 0))).To(Succeed())
		Expect(table.Update(residentFrame(0, 1, 0, 5))).To(Succeed())

		Expect(table.NumValid()).To(Equal(1))
		Expect(table.Check()).To(Succeed())
	})

	It("should reject a valid frame without a page", func() {
		f := residentFrame(0, NoPage, 0, 0)

		err := table.Update(f)

		Expect(err).To(MatchError(ErrInvariantViolation))
		Expect(table.NumValid()).To(Equal(0))
	})

	It("should reject a page in an invalid frame", func() {
		f := emptyFrame(1)
		f.Page = 3

		Expect(table.Update(f)).To(MatchError(ErrInvariantViolation))
	})

	It("should reject a resident frame without timestamps", func() {
		noLoad := residentFrame(0, 1, sim.VTimeUndefined, 0)
		noAccess := residentFrame(0, 1, 0, sim.VTimeUndefined)

		Expect(table.Update(noLoad)).To(MatchError(ErrInvariantViolation))
		Expect(table.Update(noAccess)).To(MatchError(ErrInvariantViolation))
	})

	It("should reject clearing a resident frame", func() {
		Expect(table.Update(residentFrame(0, 1, 0, 0))).To(Succeed())

		err := table.Update(emptyFrame(0))

		var invariantErr *InvariantError
		Expect(err).To(BeAssignableToTypeOf(invariantErr))
		Expect(err.Error()).To(ContainSubstring("frame 0"))
	})

	It("should reject an index out of range", func() {
		Expect(table.Update(residentFrame(3, 1, 0, 0))).
			To(MatchError(ErrInvariantViolation))
	})

	It("should hand out copies of the frames", func() {
		Expect(table.Update(residentFrame(0, 1, 0, 0))).To(Succeed())

		frames := table.Frames()
		frames[0].Dirty = true

		Expect(table.Frame(0).Dirty).To(BeFalse())
	})

	It("should empty every frame on reset", func() {
		Expect(table.Update(residentFrame(0, 1, 0, 0))).To(Succeed())

		table.Reset()

		Expect(table.NumValid()).To(Equal(0))
		_, ok := table.Lookup(1)
		Expect(ok).To(BeFalse())
	})
})
