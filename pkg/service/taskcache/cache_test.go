package taskcache_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/service/taskcache"
)

func TestCache(t *testing.T) {
	t.Run("miss then hit", func(t *testing.T) {
		cache := taskcache.New()

		_, ok := cache.Get("T0001")
		gt.Bool(t, ok).False()

		tasks := []*model.Task{model.NewTask("one")}
		cache.Put("T0001", tasks)

		got, ok := cache.Get("T0001")
		gt.Bool(t, ok).True()
		gt.Array(t, got).Length(1)
	})

	t.Run("entries are per workspace", func(t *testing.T) {
		cache := taskcache.New()
		cache.Put("T0001", []*model.Task{model.NewTask("ours")})

		_, ok := cache.Get("T0002")
		gt.Bool(t, ok).False()
	})

	t.Run("Invalidate drops the workspace entry", func(t *testing.T) {
		cache := taskcache.New()
		cache.Put("T0001", []*model.Task{model.NewTask("stale")})
		cache.Put("T0002", []*model.Task{model.NewTask("other")})

		cache.Invalidate("T0001")

		_, ok := cache.Get("T0001")
		gt.Bool(t, ok).False()
		_, ok = cache.Get("T0002")
		gt.Bool(t, ok).True()
	})

	t.Run("entries expire after the TTL", func(t *testing.T) {
		cache := taskcache.NewWithConfig(16, 20*time.Millisecond)
		cache.Put("T0001", []*model.Task{model.NewTask("short-lived")})

		time.Sleep(50 * time.Millisecond)

		_, ok := cache.Get("T0001")
		gt.Bool(t, ok).False()
	})
}
