package paging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/sim"
)

func fullTable(frames ...Frame) *FrameTable {
	table := NewFrameTable(len(frames))
	for _, f := range frames {
		Expect(table.Update(f)).To(Succeed())
	}

	return table
}

func withUseBit(f Frame, used bool) Frame {
	f.Used = used
	return f
}

var _ = Describe("FIFOVictimFinder", func() {
	var finder *FIFOVictimFinder

	BeforeEach(func() {
		finder = NewFIFOVictimFinder()
	})

	It("should evict the page loaded first", func() {
		table := fullTable(
			residentFrame(0, 10, 5, 5),
			residentFrame(1, 11, 2, 9),
			residentFrame(2, 12, 7, 7),
		)

		victim, err := finder.FindVictim(table)

		Expect(err).NotTo(HaveOccurred())
		Expect(victim).To(Equal(1))
	})

	It("should break ties by the lowest index", func() {
		table := fullTable(
			residentFrame(0, 10, 4, 0),
			residentFrame(1, 11, 3, 0),
			residentFrame(2, 12, 3, 0),
		)

		victim, err := finder.FindVictim(table)

		Expect(err).NotTo(HaveOccurred())
		Expect(victim).To(Equal(1))
	})

	It("should refuse a table with a free frame", func() {
		table := NewFrameTable(2)
		Expect(table.Update(residentFrame(0, 1, 0, 0))).To(Succeed())

		victim, err := finder.FindVictim(table)

		Expect(err).To(MatchError(ErrInvariantViolation))
		Expect(victim).To(Equal(-1))
	})

	It("should refuse a table without frames", func() {
		_, err := finder.FindVictim(NewFrameTable(0))

		Expect(err).To(MatchError(ErrInvariantViolation))
	})
})

var _ = Describe("LRUVictimFinder", func() {
	It("should evict the least recently used page", func() {
		table := fullTable(
			residentFrame(0, 10, 0, 4),
			residentFrame(1, 11, 1, 8),
			residentFrame(2, 12, 2, 3),
		)

		victim, err := NewLRUVictimFinder().FindVictim(table)

		Expect(err).NotTo(HaveOccurred())
		Expect(victim).To(Equal(2))
	})
})

var _ = Describe("ClockVictimFinder", func() {
	var finder *ClockVictimFinder

	BeforeEach(func() {
		finder = NewClockVictimFinder()
	})

	It("should evict the first frame with a clear use bit", func() {
		table := fullTable(
			withUseBit(residentFrame(0, 10, 0, 0), true),
			withUseBit(residentFrame(1, 11, 1, 1), false),
			withUseBit(residentFrame(2, 12, 2, 2), true),
		)

		victim, err := finder.FindVictim(table)

		Expect(err).NotTo(HaveOccurred())
		Expect(victim).To(Equal(1))
		Expect(finder.Hand()).To(Equal(2))
		Expect(table.Frame(0).Used).To(BeFalse())
		Expect(table.Frame(2).Used).To(BeTrue())
	})

	It("should keep the hand between sweeps", func() {
		table := fullTable(
			withUseBit(residentFrame(0, 10, 0, 0), false),
			withUseBit(residentFrame(1, 11, 1, 1), false),
			withUseBit(residentFrame(2, 12, 2, 2), false),
		)

		first, err := finder.FindVictim(table)
		Expect(err).NotTo(HaveOccurred())

		second, err := finder.FindVictim(table)
		Expect(err).NotTo(HaveOccurred())

		Expect(first).To(Equal(0))
		Expect(second).To(Equal(1))
	})

	It("should start the sweep from the hand and wrap around", func() {
		finder.hand = 2
		table := fullTable(
			withUseBit(residentFrame(0, 10, 0, 0), false),
			withUseBit(residentFrame(1, 11, 1, 1), true),
			withUseBit(residentFrame(2, 12, 2, 2), true),
		)

		victim, err := finder.FindVictim(table)

		Expect(err).NotTo(HaveOccurred())
		Expect(victim).To(Equal(0))
		Expect(finder.Hand()).To(Equal(1))
		Expect(table.Frame(2).Used).To(BeFalse())
		Expect(table.Frame(1).Used).To(BeTrue())
	})

	It("should evict the starting frame after a full revolution", func() {
		finder.hand = 1
		table := fullTable(
			withUseBit(residentFrame(0, 10, 0, 0), true),
			withUseBit(residentFrame(1, 11, 1, 1), true),
			withUseBit(residentFrame(2, 12, 2, 2), true),
		)

		victim, err := finder.FindVictim(table)

		Expect(err).NotTo(HaveOccurred())
		Expect(victim).To(Equal(1))
		Expect(finder.Hand()).To(Equal(2))

		for _, f := range table.Frames() {
			Expect(f.Used).To(BeFalse())
		}

		next, err := finder.FindVictim(table)

		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(2))
	})
})

var _ = Describe("RandomVictimFinder", func() {
	It("should repeat the same choices for the same seed", func() {
		table := fullTable(
			residentFrame(0, 10, 0, 0),
			residentFrame(1, 11, 1, 1),
			residentFrame(2, 12, 2, 2),
			residentFrame(3, 13, 3, 3),
		)
		a := NewRandomVictimFinder(42)
		b := NewRandomVictimFinder(42)

		for i := 0; i < 50; i++ {
			va, errA := a.FindVictim(table)
			vb, errB := b.FindVictim(table)

			Expect(errA).NotTo(HaveOccurred())
			Expect(errB).NotTo(HaveOccurred())
			Expect(va).To(Equal(vb))
			Expect(va).To(BeNumerically(">=", 0))
			Expect(va).To(BeNumerically("<", 4))
		}
	})
})

var _ = Describe("OPTVictimFinder", func() {
	It("should report that it is not implemented", func() {
		table := fullTable(residentFrame(0, 10, 0, 0))

		victim, err := NewOPTVictimFinder().FindVictim(table)

		Expect(err).To(MatchError(ErrPolicyNotImplemented))
		Expect(victim).To(Equal(-1))
	})
})

var _ = Describe("earliest", func() {
	It("should reject a candidate without a timestamp", func() {
		table := fullTable(residentFrame(0, 10, 0, 0))
		table.frames[0].LoadedAt = sim.VTimeUndefined

		_, err := NewFIFOVictimFinder().FindVictim(table)

		Expect(err).To(MatchError(ErrInvariantViolation))
	})
})
