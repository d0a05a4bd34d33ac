package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/techmentor/internal/adapters/repository"
	"github.com/okian/techmentor/internal/domain/analysis"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx)

		Convey("When reading a session with no analysis", func() {
			_, err := store.Get(ctx, "s1")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When storing an analysis", func() {
			err := store.Put(ctx, "s1", analysis.Result{analysis.KeyEventName: "DevFest"})
			So(err, ShouldBeNil)

			Convey("Then it can be read back", func() {
				e, err := store.Get(ctx, "s1")
				So(err, ShouldBeNil)
				So(e.SessionID, ShouldEqual, "s1")
				So(e.Result.EventName(), ShouldEqual, "DevFest")
				So(e.StoredAt.IsZero(), ShouldBeFalse)
			})

			Convey("And a second analysis overwrites the first", func() {
				So(store.Put(ctx, "s1", analysis.Result{analysis.KeyEventName: "KubeCon"}), ShouldBeNil)
				e, _ := store.Get(ctx, "s1")
				So(e.Result.EventName(), ShouldEqual, "KubeCon")
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And other sessions are isolated", func() {
				_, err := store.Get(ctx, "s2")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And the stored copy cannot be mutated through Get", func() {
				e, _ := store.Get(ctx, "s1")
				e.Result[analysis.KeyEventName] = "changed"
				again, _ := store.Get(ctx, "s1")
				So(again.Result.EventName(), ShouldEqual, "DevFest")
			})

			Convey("And Delete forgets it", func() {
				So(store.Delete(ctx, "s1"), ShouldBeNil)
				_, err := store.Get(ctx, "s1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When storing with an empty session id", func() {
			err := store.Put(ctx, " ", analysis.Result{})
			So(errors.Is(err, repository.ErrInvalidSession), ShouldBeTrue)
		})

		Convey("When storing a nil result", func() {
			So(store.Put(ctx, "s1", nil), ShouldNotBeNil)
		})
	})
}

func TestMemoryStore_Bounded(t *testing.T) {
	Convey("Given a store bounded to two sessions", t, func() {
		ctx := context.Background()
		tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		store := repository.NewMemoryStore(ctx,
			repository.WithMaxSessions(2),
			repository.WithClock(func() time.Time {
				tick = tick.Add(time.Second)
				return tick
			}),
		)

		So(store.Put(ctx, "a", analysis.Result{}), ShouldBeNil)
		So(store.Put(ctx, "b", analysis.Result{}), ShouldBeNil)

		Convey("When a third session stores a result", func() {
			So(store.Put(ctx, "c", analysis.Result{}), ShouldBeNil)

			Convey("Then the oldest session is dropped", func() {
				So(store.Count(ctx), ShouldEqual, 2)
				_, err := store.Get(ctx, "a")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an existing session overwrites its result", func() {
			So(store.Put(ctx, "a", analysis.Result{}), ShouldBeNil)

			Convey("Then nothing is evicted", func() {
				So(store.Count(ctx), ShouldEqual, 2)
			})
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	Convey("Given concurrent sessions", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(ctx)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("s%d", i)
				_ = store.Put(ctx, id, analysis.Result{analysis.KeyScore: float64(i % 10)})
				_, _ = store.Get(ctx, id)
			}(i)
		}
		wg.Wait()
		So(store.Count(ctx), ShouldEqual, 50)
	})
}
