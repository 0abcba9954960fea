package stack_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/stack"
	"github.com/papercomputeco/memostack/pkg/storage"
	"github.com/papercomputeco/memostack/pkg/storage/inmemory"
)

// failingDriver wraps the in-memory driver and fails SaveStack on demand.
type failingDriver struct {
	storage.Driver
	failSaveStack bool
}

func (f *failingDriver) SaveStack(ctx context.Context, ids []int64) error {
	if f.failSaveStack {
		return errors.New("disk full")
	}
	return f.Driver.SaveStack(ctx, ids)
}

var _ = Describe("Manager", func() {
	var (
		ctx     context.Context
		driver  *inmemory.Driver
		manager *stack.Manager
		logger  *slog.Logger
	)

	newManager := func(maxHot int) *stack.Manager {
		return stack.NewManager(driver, logger, maxHot)
	}

	capture := func(text string) *memo.Memo {
		mm, err := manager.Capture(ctx, text, "")
		Expect(err).NotTo(HaveOccurred())
		return mm
	}

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		manager = newManager(3)
	})

	Describe("Capture", func() {
		It("pushes new memos onto the front of the stack", func() {
			a := capture("first")
			b := capture("second")

			Expect(manager.HotIDs()).To(Equal([]int64{b.ID, a.ID}))
		})

		It("splits text into title and body on the first newline", func() {
			mm := capture("buy milk\ntwo percent\nor whole")

			Expect(mm.Title).To(Equal("buy milk"))
			Expect(mm.Body).To(Equal("two percent\nor whole"))
		})

		It("rejects empty input", func() {
			_, err := manager.Capture(ctx, "   \n", "")
			Expect(err).To(HaveOccurred())
		})

		It("creates a delayed memo when the delay field is set", func() {
			mm, err := manager.Capture(ctx, "later", "01:30")
			Expect(err).NotTo(HaveOccurred())

			Expect(mm.Status).To(Equal(memo.StatusDelayed))
			Expect(*mm.DelayMinutes).To(Equal(90))
			Expect(manager.HotIDs()).To(BeEmpty())
		})

		It("treats a malformed delay as no delay", func() {
			mm, err := manager.Capture(ctx, "now", "99:99")
			Expect(err).NotTo(HaveOccurred())

			Expect(mm.Status).To(Equal(memo.StatusHot))
			Expect(mm.DelayMinutes).To(BeNil())
		})
	})

	Describe("eviction", func() {
		It("archives the back memo when a push exceeds capacity", func() {
			manager = newManager(2)
			a := capture("a")
			b := capture("b")
			c := capture("c")

			Expect(manager.HotIDs()).To(Equal([]int64{c.ID, b.ID}))
			Expect(manager.Get(a.ID).Status).To(Equal(memo.StatusCold))
		})

		It("never exceeds capacity across many pushes", func() {
			manager = newManager(3)
			for range 10 {
				capture("memo")
			}
			Expect(manager.HotIDs()).To(HaveLen(3))
		})

		It("evicts exactly one memo per push", func() {
			manager = newManager(2)
			capture("a")
			capture("b")
			capture("c")

			Expect(manager.ColdIDs()).To(HaveLen(1))
		})
	})

	Describe("Complete", func() {
		It("stamps completion time and removes the memo from the stack", func() {
			mm := capture("done soon")

			Expect(manager.Complete(ctx, mm.ID)).To(Succeed())

			Expect(mm.Status).To(Equal(memo.StatusDone))
			Expect(mm.CompletedAt).NotTo(BeNil())
			Expect(manager.HotIDs()).To(BeEmpty())
		})
	})

	Describe("Archive", func() {
		It("moves a memo to cold without a completion time", func() {
			mm := capture("shelve me")

			Expect(manager.Archive(ctx, mm.ID)).To(Succeed())

			Expect(mm.Status).To(Equal(memo.StatusCold))
			Expect(mm.CompletedAt).To(BeNil())
			Expect(manager.HotIDs()).To(BeEmpty())
		})

		It("clears the completion time when archiving a done memo", func() {
			mm := capture("was done")
			Expect(manager.Complete(ctx, mm.ID)).To(Succeed())

			Expect(manager.Archive(ctx, mm.ID)).To(Succeed())

			Expect(mm.Status).To(Equal(memo.StatusCold))
			Expect(mm.CompletedAt).To(BeNil())
		})
	})

	Describe("PromoteToHot", func() {
		It("pushes a cold memo onto the front", func() {
			a := capture("a")
			Expect(manager.Archive(ctx, a.ID)).To(Succeed())
			b := capture("b")

			Expect(manager.PromoteToHot(ctx, a.ID)).To(Succeed())

			Expect(manager.HotIDs()).To(Equal([]int64{a.ID, b.ID}))
			Expect(a.Status).To(Equal(memo.StatusHot))
		})

		It("does not duplicate a memo already on the stack", func() {
			a := capture("a")
			b := capture("b")

			Expect(manager.PromoteToHot(ctx, a.ID)).To(Succeed())

			Expect(manager.HotIDs()).To(Equal([]int64{a.ID, b.ID}))
		})

		It("evicts when promotion fills the stack", func() {
			manager = newManager(2)
			a := capture("a")
			Expect(manager.Archive(ctx, a.ID)).To(Succeed())
			b := capture("b")
			c := capture("c")

			Expect(manager.PromoteToHot(ctx, a.ID)).To(Succeed())

			Expect(manager.HotIDs()).To(Equal([]int64{a.ID, c.ID}))
			Expect(b.Status).To(Equal(memo.StatusCold))
		})

		It("reactivates a done memo and clears its completion time", func() {
			a := capture("a")
			b := capture("b")
			Expect(manager.Complete(ctx, a.ID)).To(Succeed())
			Expect(a.CompletedAt).NotTo(BeNil())

			Expect(manager.PromoteToHot(ctx, a.ID)).To(Succeed())

			Expect(a.Status).To(Equal(memo.StatusHot))
			Expect(a.CompletedAt).To(BeNil())
			Expect(manager.HotIDs()).To(Equal([]int64{a.ID, b.ID}))
		})

		It("errors on an unknown id", func() {
			err := manager.PromoteToHot(ctx, 999)
			Expect(err).To(MatchError(storage.NotFoundError{ID: 999}))
		})
	})

	Describe("reordering", func() {
		It("shifts a memo one position toward the front", func() {
			a := capture("a")
			b := capture("b")
			c := capture("c")

			Expect(manager.ShiftUp(ctx, a.ID)).To(Succeed())

			Expect(manager.HotIDs()).To(Equal([]int64{c.ID, a.ID, b.ID}))
		})

		It("leaves the front memo alone on ShiftUp", func() {
			a := capture("a")
			b := capture("b")

			Expect(manager.ShiftUp(ctx, b.ID)).To(Succeed())

			Expect(manager.HotIDs()).To(Equal([]int64{b.ID, a.ID}))
		})

		It("moves a memo straight to the front", func() {
			a := capture("a")
			b := capture("b")
			c := capture("c")

			Expect(manager.MoveToFront(ctx, a.ID)).To(Succeed())

			Expect(manager.HotIDs()).To(Equal([]int64{a.ID, c.ID, b.ID}))
		})

		It("ignores ids not on the stack", func() {
			a := capture("a")

			Expect(manager.ShiftUp(ctx, 999)).To(Succeed())
			Expect(manager.MoveToFront(ctx, 999)).To(Succeed())

			Expect(manager.HotIDs()).To(Equal([]int64{a.ID}))
		})
	})

	Describe("Delete", func() {
		It("removes the memo everywhere", func() {
			mm := capture("gone")

			Expect(manager.Delete(ctx, mm.ID)).To(Succeed())

			Expect(manager.Get(mm.ID)).To(BeNil())
			Expect(manager.HotIDs()).To(BeEmpty())
			Expect(driver.Count()).To(Equal(0))
		})
	})

	Describe("Replace", func() {
		It("returns the memo text and deletes the memo", func() {
			mm := capture("title\nbody")

			text, err := manager.Replace(ctx, mm.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(text).To(Equal("title\nbody"))
			Expect(manager.Get(mm.ID)).To(BeNil())
		})
	})

	Describe("CheckDelayed", func() {
		It("promotes memos whose delay has elapsed", func() {
			mm, err := manager.Capture(ctx, "later", "00:05")
			Expect(err).NotTo(HaveOccurred())

			promoted, err := manager.CheckDelayed(ctx, mm.CreatedAt.Add(5*time.Minute))
			Expect(err).NotTo(HaveOccurred())

			Expect(promoted).To(HaveLen(1))
			Expect(mm.Status).To(Equal(memo.StatusHot))
			Expect(manager.HotIDs()).To(Equal([]int64{mm.ID}))
		})

		It("leaves memos alone before their delay elapses", func() {
			mm, err := manager.Capture(ctx, "later", "00:05")
			Expect(err).NotTo(HaveOccurred())

			promoted, err := manager.CheckDelayed(ctx, mm.CreatedAt.Add(4*time.Minute+59*time.Second))
			Expect(err).NotTo(HaveOccurred())

			Expect(promoted).To(BeEmpty())
			Expect(mm.Status).To(Equal(memo.StatusDelayed))
		})

		It("promotes every due memo in one pass", func() {
			first, err := manager.Capture(ctx, "one", "00:01")
			Expect(err).NotTo(HaveOccurred())
			second, err := manager.Capture(ctx, "two", "00:02")
			Expect(err).NotTo(HaveOccurred())

			promoted, err := manager.CheckDelayed(ctx, second.CreatedAt.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())

			Expect(promoted).To(HaveLen(2))
			Expect(first.Status).To(Equal(memo.StatusHot))
			Expect(second.Status).To(Equal(memo.StatusHot))
		})

		It("respects capacity while promoting a burst", func() {
			manager = newManager(2)
			for range 4 {
				_, err := manager.Capture(ctx, "due", "00:01")
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := manager.CheckDelayed(ctx, time.Now().UTC().Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())

			Expect(manager.HotIDs()).To(HaveLen(2))
			Expect(manager.ColdIDs()).To(HaveLen(2))
		})
	})

	Describe("persistence failures", func() {
		It("surfaces the save error without rolling back memory", func() {
			failing := &failingDriver{Driver: driver}
			manager = stack.NewManager(failing, logger, 3)
			a, err := manager.Capture(ctx, "kept", "")
			Expect(err).NotTo(HaveOccurred())

			failing.failSaveStack = true
			b, err := manager.Capture(ctx, "unsaved", "")
			Expect(err).To(MatchError(ContainSubstring("disk full")))

			// In-memory state moved on even though the save failed.
			Expect(manager.HotIDs()).To(Equal([]int64{b.ID, a.ID}))
		})
	})

	Describe("Load", func() {
		It("restores memos and stack order", func() {
			a := capture("a")
			b := capture("b")

			fresh := newManager(3)
			Expect(fresh.Load(ctx)).To(Succeed())

			Expect(fresh.HotIDs()).To(Equal([]int64{b.ID, a.ID}))
			Expect(fresh.Get(a.ID).Title).To(Equal("a"))
		})

		It("drops stack entries that reference missing memos", func() {
			a := capture("a")
			Expect(driver.SaveStack(ctx, []int64{999, a.ID})).To(Succeed())

			fresh := newManager(3)
			Expect(fresh.Load(ctx)).To(Succeed())

			Expect(fresh.HotIDs()).To(Equal([]int64{a.ID}))

			// The repaired order was written back.
			saved, err := driver.LoadStack(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved).To(Equal([]int64{a.ID}))
		})

		It("drops stack entries that reference non-hot memos", func() {
			a := capture("a")
			b := capture("b")
			Expect(manager.Complete(ctx, a.ID)).To(Succeed())
			Expect(driver.SaveStack(ctx, []int64{a.ID, b.ID})).To(Succeed())

			fresh := newManager(3)
			Expect(fresh.Load(ctx)).To(Succeed())

			Expect(fresh.HotIDs()).To(Equal([]int64{b.ID}))
		})

		It("collapses duplicate stack entries", func() {
			a := capture("a")
			Expect(driver.SaveStack(ctx, []int64{a.ID, a.ID})).To(Succeed())

			fresh := newManager(3)
			Expect(fresh.Load(ctx)).To(Succeed())

			Expect(fresh.HotIDs()).To(Equal([]int64{a.ID}))
		})

		It("leaves hot memos missing from the stack off it", func() {
			a := capture("a")
			b := capture("b")
			Expect(driver.SaveStack(ctx, []int64{b.ID})).To(Succeed())

			fresh := newManager(3)
			Expect(fresh.Load(ctx)).To(Succeed())

			Expect(fresh.HotIDs()).To(Equal([]int64{b.ID}))
			Expect(fresh.Get(a.ID).Status).To(Equal(memo.StatusHot))
		})

		It("stays within capacity when stray hot rows outnumber it", func() {
			// Rows committed by inserts whose stack write never landed.
			var ids []int64
			for _, title := range []string{"a", "b", "c", "d", "e"} {
				id, err := driver.InsertMemo(ctx, title, "", memo.StatusHot, time.Now().UTC(), nil)
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, id)
			}
			Expect(driver.SaveStack(ctx, []int64{ids[1], ids[0]})).To(Succeed())

			fresh := newManager(3)
			Expect(fresh.Load(ctx)).To(Succeed())

			Expect(fresh.HotIDs()).To(Equal([]int64{ids[1], ids[0]}))
		})
	})
})
