package probe

import (
	"fmt"
	"sync"
	"time"

	"github.com/aether-player/aether/filesystem"
	"github.com/aether-player/aether/log"
	"github.com/metafates/gache"
	"github.com/samber/mo"
)

type cacheData struct {
	Durations map[string]float64 `json:"durations"`
}

// Cached memoizes another Prober on disk. Entries are keyed by path, size and modification time,
// so a replaced file is probed again.
type Cached struct {
	Prober Prober

	mu       sync.Mutex
	internal *gache.Cache[*cacheData]
}

// NewCached wraps prober with a persistent memo stored at path.
func NewCached(prober Prober, path string) *Cached {
	return &Cached{
		Prober: prober,
		internal: gache.New[*cacheData](&gache.Options{
			Path:       path,
			Lifetime:   time.Hour * 24 * 30,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func fingerprint(path string) (string, error) {
	info, err := filesystem.API().Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), nil
}

func (c *Cached) get(key string) mo.Option[float64] {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[float64]()
	}
	if d, ok := data.Durations[key]; ok {
		return mo.Some(d)
	}
	return mo.None[float64]()
}

func (c *Cached) set(key string, d float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}
	if expired || data == nil || data.Durations == nil {
		data = &cacheData{Durations: make(map[string]float64)}
	}
	data.Durations[key] = d
	return c.internal.Set(data)
}

// Duration implements Prober.
func (c *Cached) Duration(path string) (float64, error) {
	key, err := fingerprint(path)
	if err != nil {
		return c.Prober.Duration(path)
	}

	if d, ok := c.get(key).Get(); ok {
		return d, nil
	}

	d, err := c.Prober.Duration(path)
	if err != nil {
		return 0, err
	}

	if err := c.set(key, d); err != nil {
		log.Warnf("probe: cache %s: %s", path, err)
	}
	return d, nil
}
