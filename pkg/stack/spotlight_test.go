package stack_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/stack"
	"github.com/papercomputeco/memostack/pkg/storage/inmemory"
)

var _ = Describe("Spotlight", func() {
	var (
		ctx     context.Context
		driver  *inmemory.Driver
		manager *stack.Manager
	)

	archive := func(title string) int64 {
		id, err := driver.InsertMemo(ctx, title, "", memo.StatusCold, time.Now().UTC(), nil)
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		manager = stack.NewManager(driver, logger, 7)
	})

	It("picks a memo from the cold set", func() {
		id := archive("only one")
		Expect(manager.Load(ctx)).To(Succeed())

		spotlight := stack.NewSpotlight(manager, time.Minute)
		now := time.Now().UTC()

		Expect(spotlight.Refresh(now)).To(BeTrue())
		Expect(spotlight.Current().ID).To(Equal(id))
	})

	It("returns nil when there are no cold memos", func() {
		Expect(manager.Load(ctx)).To(Succeed())

		spotlight := stack.NewSpotlight(manager, time.Minute)
		spotlight.Refresh(time.Now().UTC())

		Expect(spotlight.Current()).To(BeNil())
	})

	It("does not resample before the interval elapses", func() {
		archive("a")
		archive("b")
		Expect(manager.Load(ctx)).To(Succeed())

		spotlight := stack.NewSpotlight(manager, time.Minute)
		now := time.Now().UTC()
		Expect(spotlight.Refresh(now)).To(BeTrue())
		first := spotlight.Current()

		Expect(spotlight.Refresh(now.Add(30 * time.Second))).To(BeFalse())
		Expect(spotlight.Current()).To(Equal(first))
	})

	It("resamples after the interval elapses", func() {
		archive("a")
		Expect(manager.Load(ctx)).To(Succeed())

		spotlight := stack.NewSpotlight(manager, time.Minute)
		now := time.Now().UTC()
		spotlight.Refresh(now)

		Expect(spotlight.Refresh(now.Add(time.Minute))).To(BeTrue())
	})

	It("suppresses a pick that left the cold set until the next resample", func() {
		id := archive("promoted away")
		Expect(manager.Load(ctx)).To(Succeed())

		spotlight := stack.NewSpotlight(manager, time.Minute)
		now := time.Now().UTC()
		spotlight.Refresh(now)
		Expect(spotlight.Current().ID).To(Equal(id))

		Expect(manager.PromoteToHot(ctx, id)).To(Succeed())

		Expect(spotlight.Current()).To(BeNil())
	})

	It("stays disabled with a zero interval", func() {
		archive("never shown")
		Expect(manager.Load(ctx)).To(Succeed())

		spotlight := stack.NewSpotlight(manager, 0)

		Expect(spotlight.Refresh(time.Now().UTC())).To(BeFalse())
		Expect(spotlight.Current()).To(BeNil())
	})
})
