package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/storage"
	"github.com/papercomputeco/memostack/pkg/storage/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
	})

	It("assigns ids counting up from 1", func() {
		first, err := driver.InsertMemo(ctx, "a", "", memo.StatusHot, time.Now().UTC(), nil)
		Expect(err).NotTo(HaveOccurred())
		second, err := driver.InsertMemo(ctx, "b", "", memo.StatusHot, time.Now().UTC(), nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(first).To(Equal(int64(1)))
		Expect(second).To(Equal(int64(2)))
	})

	It("never reuses an id after deletion", func() {
		id, err := driver.InsertMemo(ctx, "a", "", memo.StatusHot, time.Now().UTC(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.DeleteMemo(ctx, id)).To(Succeed())

		next, err := driver.InsertMemo(ctx, "b", "", memo.StatusHot, time.Now().UTC(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(id + 1))
	})

	It("returns clones so callers cannot mutate driver state", func() {
		id, err := driver.InsertMemo(ctx, "original", "", memo.StatusHot, time.Now().UTC(), nil)
		Expect(err).NotTo(HaveOccurred())

		memos, err := driver.ListMemos(ctx)
		Expect(err).NotTo(HaveOccurred())
		memos[0].Title = "mutated"

		again, err := driver.ListMemos(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(again[0].ID).To(Equal(id))
		Expect(again[0].Title).To(Equal("original"))
	})

	It("reports NotFoundError for unknown status updates", func() {
		err := driver.UpdateStatus(ctx, 42, memo.StatusCold, nil)
		Expect(err).To(MatchError(storage.NotFoundError{ID: 42}))
	})

	It("round-trips the stack as a defensive copy", func() {
		ids := []int64{2, 1}
		Expect(driver.SaveStack(ctx, ids)).To(Succeed())
		ids[0] = 99

		loaded, err := driver.LoadStack(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal([]int64{2, 1}))
	})

	It("starts with default prefs", func() {
		prefs, err := driver.LoadPrefs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(prefs).To(Equal(storage.DefaultPrefs()))
	})

	It("tracks the memo count", func() {
		Expect(driver.Count()).To(Equal(0))
		_, err := driver.InsertMemo(ctx, "a", "", memo.StatusHot, time.Now().UTC(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.Count()).To(Equal(1))
	})
})
