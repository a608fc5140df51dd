package storage

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"
)

// cachedObject tracks one object held in a Cache's fast-path store.
type cachedObject struct {
	id          string
	size        uint64
	lastAccess  time.Time
	lastAccessM sync.Mutex
	ready       chan struct{}
}

func (c *cachedObject) access() {
	n := time.Now()
	// TryLock lets a concurrent accessor win the race on lastAccess
	// without blocking the hot read path on it.
	if c.lastAccessM.TryLock() {
		c.lastAccess = n
		c.lastAccessM.Unlock()
	}
}

// Cache fronts a permanent Storage (typically MinioStorage) with a faster,
// size-bounded Storage (typically DBStorage), evicting the
// least-recently-used objects once the cache exceeds maxSize.
type Cache struct {
	cache     Storage
	permanent Storage
	maxSize   uint64 // bytes; actual cache usage may run slightly over.

	sync.RWMutex
	objects map[string]*cachedObject
	// cleaning receives a signal whenever a new object is added, waking
	// the background cleaner to check whether eviction is due.
	cleaning chan struct{}
}

var _ Storage = (*Cache)(nil)

const cleanInterval = time.Second

// NewCache builds a Cache, populating its in-memory object index by
// listing everything already present in cache. It starts a background
// goroutine that lives for the lifetime of the process.
func NewCache(cache ListStorage, permanent Storage, maxSize uint64) (*Cache, error) {
	objects := make(map[string]*cachedObject)
	ready := make(chan struct{})
	close(ready)
	err := cache.List(context.Background(), func(id string, b []byte) error {
		objects[id] = &cachedObject{
			id:         id,
			size:       uint64(len(b)),
			lastAccess: time.Now(),
			ready:      ready,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c := &Cache{
		cache:     cache,
		permanent: permanent,
		maxSize:   maxSize,
		objects:   objects,
		cleaning:  make(chan struct{}, 1),
	}
	go c.cleaner()
	return c, nil
}

func (c *Cache) cacheSize() uint64 {
	var sz uint64
	c.RLock()
	for _, obj := range c.objects {
		sz += obj.size
	}
	c.RUnlock()
	return sz
}

func (c *Cache) evict(els []*cachedObject) {
	// Hold the read lock for the whole pass so nothing created in the
	// meantime gets deleted out from under a concurrent Put.
	c.RLock()
	defer c.RUnlock()
	for _, el := range els {
		if _, ok := c.objects[el.id]; ok {
			continue // recreated since the eviction list was built
		}
		if err := c.cache.Del(context.Background(), el.id); err != nil {
			log.Printf("storage: cache eviction delete failed for %q: %v", el.id, err)
		}
	}
}

func (c *Cache) doClean() {
	c.Lock()
	defer c.Unlock()

	objects := make([]*cachedObject, 0, len(c.objects))
	var sz uint64
	for _, obj := range c.objects {
		objects = append(objects, obj)
		obj.lastAccessM.Lock()
		sz += obj.size
	}

	slices.SortFunc(objects, func(i, j *cachedObject) int {
		return i.lastAccess.Compare(j.lastAccess)
	})

	// Target 95% of maxSize so there's leeway before the next doClean.
	collectTarget := (sz - c.maxSize) + c.maxSize/20
	var collected uint64
	var del []*cachedObject

	for i, obj := range objects {
		if collected >= collectTarget {
			if del == nil {
				del = objects[:i]
			}
			obj.lastAccessM.Unlock()
			continue
		}
		collected += obj.size
		delete(c.objects, obj.id)
	}
	if del == nil {
		del = objects
	}

	go c.evict(del)
}

func (c *Cache) cleaner() {
	for range c.cleaning {
		if c.cacheSize() >= c.maxSize {
			c.doClean()
		}
		time.Sleep(cleanInterval)
	}
}

func (c *Cache) cacheHas(id string) bool {
	c.RWMutex.RLock()
	obj, ok := c.objects[id]
	c.RWMutex.RUnlock()
	if !ok {
		return false
	}
	<-obj.ready
	if obj.size == 0 {
		return false
	}
	obj.access()
	return true
}

func (c *Cache) cacheStore(ctx context.Context, id string, b []byte, x *cachedObject) {
	if err := c.cache.Put(ctx, id, b); err != nil {
		log.Printf("storage: cache put failed for %q: %v", id, err)
		return
	}
	x.lastAccess = time.Now()
	x.size = uint64(len(b))

	select {
	case c.cleaning <- struct{}{}:
	default:
	}
}

func (c *Cache) Get(ctx context.Context, id string) ([]byte, error) {
	if c.cacheHas(id) {
		return c.cache.Get(ctx, id)
	}

	co, ours := &cachedObject{id: id, ready: make(chan struct{})}, false
	c.Lock()
	if existing, ok := c.objects[id]; ok {
		co = existing
	} else {
		c.objects[id] = co
		ours = true
	}
	c.Unlock()

	if !ours {
		<-co.ready
		if co.size > 0 {
			return c.cache.Get(ctx, id)
		}
		return nil, ErrNotFound
	}

	defer close(co.ready)
	b, err := c.permanent.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cacheStore(ctx, id, b, co)
	return b, nil
}

func (c *Cache) Put(ctx context.Context, id string, data []byte) error {
	if err := c.permanent.Put(ctx, id, data); err != nil {
		return err
	}

	co := &cachedObject{id: id, ready: make(chan struct{})}
	c.Lock()
	c.objects[id] = co
	c.Unlock()

	defer close(co.ready)
	c.cacheStore(ctx, id, data, co)
	return nil
}

func (c *Cache) Del(ctx context.Context, id string) error {
	if err := c.permanent.Del(ctx, id); err != nil {
		return err
	}

	c.Lock()
	_, existed := c.objects[id]
	delete(c.objects, id)
	c.Unlock()
	if !existed {
		return nil
	}

	if err := c.cache.Del(ctx, id); err != nil {
		log.Printf("storage: cache delete failed for %q: %v", id, err)
	}
	return nil
}
