package maintenance

import (
	"encoding/json"

	"github.com/albapepper/nudge/internal/cache"
	"github.com/albapepper/nudge/internal/notifications"
)

// CacheLastRun returns a hook that publishes each sweep result under
// cache.KeyLastRun, for both the API trigger and the ticker sweep.
func CacheLastRun(c *cache.Cache) func(notifications.BatchResult) {
	return func(res notifications.BatchResult) {
		data, err := json.Marshal(res)
		if err != nil {
			return
		}
		c.Set(cache.KeyLastRun, data, cache.TTLLastRun)
	}
}
