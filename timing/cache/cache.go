package cache

import "math/bits"

// Config parameterizes a Cache, matching spec.md §6's "Cache
// configuration (per cache)": Size and BlockSize in bytes (both must be
// powers of two), Associativity in ways (1 = direct-mapped, 2 = two-way),
// and MissLatency in cycles. HitLatency defaults to 1 cycle of
// accounting latency if left zero; it does not gate HIT/MISS behavior.
type Config struct {
	Size          int
	Associativity int
	BlockSize     int
	HitLatency    uint64
	MissLatency   uint64
}

// DefaultICacheConfig is the instruction-cache configuration cmd/simulate
// uses when no -icache-* flags are given: small and fast, matching a
// classroom five-stage pipeline rather than a real M-series part.
func DefaultICacheConfig() Config {
	return Config{Size: 16 * 1024, Associativity: 2, BlockSize: 32, HitLatency: 1, MissLatency: 10}
}

// DefaultDCacheConfig is the data-cache configuration cmd/simulate uses
// when no -dcache-* flags are given.
func DefaultDCacheConfig() Config {
	return Config{Size: 16 * 1024, Associativity: 2, BlockSize: 32, HitLatency: 1, MissLatency: 10}
}

// Stats accumulates the per-cache counters spec.md §3 and §6 require.
type Stats struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// Result is returned by every Read/Write call.
type Result struct {
	Hit     bool
	Data    uint32 // assembled value for Read; unused (0) for Write
	Latency uint64
	Evicted bool // true if this access evicted a valid block
}

type block struct {
	tag   uint32
	valid bool
	dirty bool
	lru   uint64
	data  []byte
}

// Cache is a set-associative, write-back, write-allocate, LRU cache over
// a BackingStore, implementing every read/write/evict/drain rule in
// spec.md §4.1.
type Cache struct {
	cfg         Config
	backing     BackingStore
	sets        [][]block
	offsetBits  uint
	indexBits   uint
	tagBits     uint
	lruCounter  uint64
	stats       Stats
}

// New constructs a Cache. Size, BlockSize and Associativity must already
// be validated as powers of two by the caller (spec.md §7 treats
// non-power-of-two configuration as the caller's responsibility).
func New(cfg Config, backing BackingStore) *Cache {
	if cfg.HitLatency == 0 {
		cfg.HitLatency = 1
	}
	ways := cfg.Associativity
	if ways <= 0 {
		ways = 1
	}
	entries := cfg.Size / (cfg.BlockSize * ways)
	if entries <= 0 {
		entries = 1
	}

	offsetBits := uint(bits.TrailingZeros(uint(cfg.BlockSize)))
	indexBits := uint(bits.TrailingZeros(uint(entries)))
	tagBits := uint(32) - offsetBits - indexBits

	c := &Cache{
		cfg:        cfg,
		backing:    backing,
		sets:       make([][]block, entries),
		offsetBits: offsetBits,
		indexBits:  indexBits,
		tagBits:    tagBits,
	}
	for i := range c.sets {
		c.sets[i] = make([]block, ways)
		for j := range c.sets[i] {
			c.sets[i][j].data = make([]byte, cfg.BlockSize)
		}
	}
	return c
}

// Penalty returns the cache's configured miss latency. A penalty of zero
// disables miss-driven stalling in the pipeline, per spec.md §4.1.
func (c *Cache) Penalty() uint64 { return c.cfg.MissLatency }

// Stats returns a copy of the cache's accumulated counters.
func (c *Cache) Stats() Stats { return c.stats }

func (c *Cache) addrTag(addr uint32) uint32 {
	if c.tagBits == 0 {
		return 0
	}
	return addr >> (c.offsetBits + c.indexBits)
}

func (c *Cache) addrIndex(addr uint32) uint32 {
	if c.indexBits == 0 {
		return 0
	}
	mask := uint32(1)<<c.indexBits - 1
	return (addr >> c.offsetBits) & mask
}

func (c *Cache) addrOffset(addr uint32) uint32 {
	if c.offsetBits == 0 {
		return 0
	}
	mask := uint32(1)<<c.offsetBits - 1
	return addr & mask
}

func (c *Cache) blockAddr(tag, index uint32) uint32 {
	return (tag << (c.indexBits + c.offsetBits)) | (index << c.offsetBits)
}

// lookup scans the indexed set for a valid block carrying tag, returning
// its way and true on a hit.
func (c *Cache) lookup(index, tag uint32) (way int, hit bool) {
	for i := range c.sets[index] {
		if c.sets[index][i].valid && c.sets[index][i].tag == tag {
			return i, true
		}
	}
	return 0, false
}

// evict selects a victim way in the indexed set: the first invalid way,
// or else the way with the smallest LRU timestamp. If the victim is
// dirty its data is written back to the backing store at its own
// (evicted) address — never the incoming address.
func (c *Cache) evict(index uint32) (way int, evictedValid bool) {
	way = 0
	var oldest uint64 = ^uint64(0)
	found := false
	for i := range c.sets[index] {
		b := &c.sets[index][i]
		if !b.valid {
			way = i
			found = true
			break
		}
		if b.lru < oldest {
			oldest = b.lru
			way = i
		}
	}
	_ = found

	victim := &c.sets[index][way]
	evictedValid = victim.valid
	if victim.valid && victim.dirty {
		addr := c.blockAddr(victim.tag, index)
		c.backing.Write(addr, victim.data)
		c.stats.Writebacks++
	}
	if victim.valid {
		c.stats.Evictions++
	}
	victim.valid = false
	return way, evictedValid
}

// refill brings a fresh block into way of the indexed set from the
// backing store, block-aligning the fetch address.
func (c *Cache) refill(index, tag uint32, way int) {
	blockAddr := c.blockAddr(tag, index)
	data := c.backing.Read(blockAddr, uint32(c.cfg.BlockSize))
	b := &c.sets[index][way]
	b.tag = tag
	b.valid = true
	b.dirty = false
	copy(b.data, data)
}

func (c *Cache) touch(index uint32, way int) {
	c.lruCounter++
	c.sets[index][way].lru = c.lruCounter
}

// Read performs a byte/half/word read at addr, per spec.md §4.1.
func (c *Cache) Read(addr uint32, size int) Result {
	c.stats.Reads++
	tag, index, offset := c.addrTag(addr), c.addrIndex(addr), c.addrOffset(addr)

	way, hit := c.lookup(index, tag)
	evicted := false
	if hit {
		c.stats.Hits++
		c.touch(index, way)
	} else {
		c.stats.Misses++
		way, evicted = c.evict(index)
		c.refill(index, tag, way)
		c.touch(index, way)
	}

	var value uint32
	for i := 0; i < size; i++ {
		value <<= 8
		value |= uint32(c.sets[index][way].data[int(offset)+i])
	}

	latency := c.cfg.HitLatency
	if !hit {
		latency = c.cfg.MissLatency
	}
	return Result{Hit: hit, Data: value, Latency: latency, Evicted: evicted}
}

// Write performs a byte/half/word write-allocate store at addr, per
// spec.md §4.1.
func (c *Cache) Write(addr uint32, size int, value uint32) Result {
	c.stats.Writes++
	tag, index, offset := c.addrTag(addr), c.addrIndex(addr), c.addrOffset(addr)

	way, hit := c.lookup(index, tag)
	evicted := false
	if hit {
		c.stats.Hits++
		c.touch(index, way)
	} else {
		c.stats.Misses++
		way, evicted = c.evict(index)
		c.refill(index, tag, way)
		c.touch(index, way)
	}

	b := &c.sets[index][way]
	b.dirty = true
	for i := 0; i < size; i++ {
		shift := uint(8 * (size - 1 - i))
		b.data[int(offset)+i] = byte(value >> shift)
	}

	latency := c.cfg.HitLatency
	if !hit {
		latency = c.cfg.MissLatency
	}
	return Result{Hit: hit, Latency: latency, Evicted: evicted}
}

// Flush (spec.md's "drain") writes every valid, dirty block back to the
// backing store. It is invoked once at simulator shutdown.
func (c *Cache) Flush() {
	for index := range c.sets {
		for way := range c.sets[index] {
			b := &c.sets[index][way]
			if !b.valid || !b.dirty {
				continue
			}
			addr := c.blockAddr(b.tag, uint32(index))
			c.backing.Write(addr, b.data)
			c.stats.Writebacks++
			b.dirty = false
		}
	}
}
