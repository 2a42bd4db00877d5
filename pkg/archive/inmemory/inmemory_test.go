package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askstream/pkg/archive"
	"github.com/papercomputeco/askstream/pkg/archive/inmemory"
)

func testRecord(id string, created time.Time) *archive.Record {
	return &archive.Record{
		ID:        id,
		Question:  "question " + id,
		Answer:    "answer " + id,
		CreatedAt: created,
	}
}

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
		now    time.Time
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()
		now = time.Now().UTC()
	})

	Describe("Put", func() {
		It("stores a new record", func() {
			inserted, err := driver.Put(ctx, testRecord("a", now))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())
			Expect(driver.Count()).To(Equal(1))
		})

		It("ignores a duplicate id", func() {
			_, err := driver.Put(ctx, testRecord("a", now))
			Expect(err).NotTo(HaveOccurred())

			dup := testRecord("a", now)
			dup.Answer = "other"
			inserted, err := driver.Put(ctx, dup)
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			rec, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Answer).To(Equal("answer a"))
		})

		It("rejects a nil record", func() {
			_, err := driver.Put(ctx, nil)
			Expect(err).To(MatchError(archive.ErrNilRecord))
		})
	})

	Describe("Get", func() {
		It("returns a NotFoundError for unknown ids", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(MatchError(archive.NotFoundError{ID: "missing"}))
		})

		It("returns a copy", func() {
			_, err := driver.Put(ctx, testRecord("a", now))
			Expect(err).NotTo(HaveOccurred())

			rec, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			rec.Answer = "mutated"

			again, err := driver.Get(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Answer).To(Equal("answer a"))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i, id := range []string{"old", "mid", "new"} {
				_, err := driver.Put(ctx, testRecord(id, now.Add(time.Duration(i)*time.Second)))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns records newest first", func() {
			records, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(records)).To(Equal([]string{"new", "mid", "old"}))
		})

		It("honors the limit", func() {
			records, err := driver.List(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids(records)).To(Equal([]string{"new", "mid"}))
		})
	})
})

func ids(records []*archive.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
