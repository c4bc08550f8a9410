package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/lingua/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("Then it starts empty", func() {
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When a key is new", func() {
			seen := d.SeenAndRecord(ctx, "s-1", "k-1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a repeat is reported as seen", func() {
				So(d.SeenAndRecord(ctx, "s-1", "k-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And the same key in another session is independent", func() {
				So(d.SeenAndRecord(ctx, "s-2", "k-1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "s-1", "k-1")
			d.Unrecord(ctx, "s-1", "k-1")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "s-1", "k-1"), ShouldBeFalse)
			})

			Convey("And unrecording an unknown key is a no-op", func() {
				d.Unrecord(ctx, "s-9", "missing")
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When a session is forgotten", func() {
			d.SeenAndRecord(ctx, "s-1", "a")
			d.SeenAndRecord(ctx, "s-1", "b")
			d.SeenAndRecord(ctx, "s-2", "a")
			d.Forget(ctx, "s-1")

			Convey("Then only that session's keys are dropped", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "s-1", "a"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "s-2", "a"), ShouldBeTrue)
			})
		})
	})
}

func TestDedupeEviction(t *testing.T) {
	Convey("Given a bounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When more keys than the bound are recorded", func() {
			for i := 0; i < 4; i++ {
				d.SeenAndRecord(ctx, "s", fmt.Sprintf("k-%d", i))
			}

			Convey("Then the oldest key is evicted first", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "s", "k-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "s", "k-1"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "s", "k-0"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, "s", fmt.Sprintf("k-%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given concurrent callers racing on the same key", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		var wg sync.WaitGroup
		var fresh atomic.Int64
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "s-1", "retry") {
					fresh.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one of them records it", func() {
			So(fresh.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
