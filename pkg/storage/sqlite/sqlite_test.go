package sqlite_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/storage"
	"github.com/papercomputeco/memostack/pkg/storage/sqlite"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		tmpDir string
		dbPath string
		driver *sqlite.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		tmpDir, err = os.MkdirTemp("", "sqlite-test-*")
		Expect(err).NotTo(HaveOccurred())
		dbPath = filepath.Join(tmpDir, "memostack.sqlite")

		driver, err = sqlite.NewDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		driver.Close()
		os.RemoveAll(tmpDir)
	})

	Describe("memos", func() {
		It("round-trips a memo", func() {
			created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
			delay := 90

			id, err := driver.InsertMemo(ctx, "title", "body", memo.StatusDelayed, created, &delay)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(BeNumerically(">", 0))

			memos, err := driver.ListMemos(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(HaveLen(1))

			m := memos[0]
			Expect(m.ID).To(Equal(id))
			Expect(m.Title).To(Equal("title"))
			Expect(m.Body).To(Equal("body"))
			Expect(m.Status).To(Equal(memo.StatusDelayed))
			Expect(m.CreatedAt).To(BeTemporally("==", created))
			Expect(*m.DelayMinutes).To(Equal(90))
			Expect(m.CompletedAt).To(BeNil())
		})

		It("updates status and completion time", func() {
			id, err := driver.InsertMemo(ctx, "t", "", memo.StatusHot, time.Now().UTC(), nil)
			Expect(err).NotTo(HaveOccurred())

			done := time.Now().UTC()
			Expect(driver.UpdateStatus(ctx, id, memo.StatusDone, &done)).To(Succeed())

			memos, err := driver.ListMemos(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos[0].Status).To(Equal(memo.StatusDone))
			Expect(*memos[0].CompletedAt).To(BeTemporally("==", done))
		})

		It("returns NotFoundError for updates to missing memos", func() {
			err := driver.UpdateStatus(ctx, 999, memo.StatusCold, nil)
			Expect(err).To(MatchError(storage.NotFoundError{ID: 999}))
		})

		It("deletes memos", func() {
			id, err := driver.InsertMemo(ctx, "t", "", memo.StatusHot, time.Now().UTC(), nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.DeleteMemo(ctx, id)).To(Succeed())

			memos, err := driver.ListMemos(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(BeEmpty())
		})

		It("defaults malformed rows instead of failing the load", func() {
			raw, err := sql.Open("sqlite3", dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer raw.Close()

			_, err = raw.Exec(`INSERT INTO memos (title, body, status, creation_date) VALUES ('odd', '', 'limbo', 'not-a-time')`)
			Expect(err).NotTo(HaveOccurred())

			memos, err := driver.ListMemos(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(memos).To(HaveLen(1))

			// Unknown status tag defaults to hot, bad timestamp to now.
			Expect(memos[0].Status).To(Equal(memo.StatusHot))
			Expect(memos[0].CreatedAt).To(BeTemporally("~", time.Now().UTC(), time.Minute))
		})
	})

	Describe("hot stack", func() {
		It("round-trips stack order", func() {
			Expect(driver.SaveStack(ctx, []int64{3, 1, 2})).To(Succeed())

			ids, err := driver.LoadStack(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]int64{3, 1, 2}))
		})

		It("loads an empty stack from a fresh database", func() {
			ids, err := driver.LoadStack(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})

		It("treats malformed stack JSON as empty", func() {
			raw, err := sql.Open("sqlite3", dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer raw.Close()

			_, err = raw.Exec(`UPDATE hot_stack SET stack_json = 'not json' WHERE id = 1`)
			Expect(err).NotTo(HaveOccurred())

			ids, err := driver.LoadStack(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})
	})

	Describe("prefs", func() {
		It("seeds defaults on first open", func() {
			prefs, err := driver.LoadPrefs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(prefs).To(Equal(storage.DefaultPrefs()))
		})

		It("round-trips prefs", func() {
			x, y := 40.0, 80.0
			saved := storage.Prefs{
				AlwaysOnTop:  true,
				InputText:    "half-typed memo",
				InputHeight:  200,
				WindowWidth:  1024,
				WindowHeight: 768,
				WindowX:      &x,
				WindowY:      &y,
			}
			Expect(driver.SavePrefs(ctx, saved)).To(Succeed())

			loaded, err := driver.LoadPrefs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})
	})

	It("persists across reopen", func() {
		id, err := driver.InsertMemo(ctx, "keep", "", memo.StatusHot, time.Now().UTC(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.SaveStack(ctx, []int64{id})).To(Succeed())
		Expect(driver.Close()).To(Succeed())

		reopened, err := sqlite.NewDriver(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		memos, err := reopened.ListMemos(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(memos).To(HaveLen(1))

		ids, err := reopened.LoadStack(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ids).To(Equal([]int64{id}))
	})
})
