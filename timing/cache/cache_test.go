package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips5sim/emu"
	"github.com/sarchlab/mips5sim/timing/cache"
)

var _ = Describe("Cache", func() {
	var (
		c       *cache.Cache
		memory  *emu.Memory
		backing *cache.MemoryBacking
	)

	BeforeEach(func() {
		memory = emu.NewMemory()
		backing = cache.NewMemoryBacking(memory)
		// 64-byte direct-mapped cache, 4-byte blocks: 16 sets.
		config := cache.Config{
			Size:          64,
			Associativity: 1,
			BlockSize:     4,
			HitLatency:    1,
			MissLatency:   10,
		}
		c = cache.New(config, backing)
	})

	Describe("Read operations", func() {
		It("should miss on cold cache", func() {
			memory.Set(0x1000, emu.WordSize, 0xDEADBEEF)

			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))
			Expect(result.Data).To(Equal(uint32(0xDEADBEEF)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on cached data", func() {
			memory.Set(0x1000, emu.WordSize, 0xCAFEBABE)

			c.Read(0x1000, 4)
			result := c.Read(0x1000, 4)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))
			Expect(result.Data).To(Equal(uint32(0xCAFEBABE)))

			stats := c.Stats()
			Expect(stats.Reads).To(Equal(uint64(2)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(1)))
		})

		It("should give the same value on repeated gets with no intervening mutation (testable property)", func() {
			memory.Set(0x20, emu.WordSize, 0x01020304)
			first := c.Read(0x20, 4)
			second := c.Read(0x20, 4)
			Expect(second.Hit).To(BeTrue())
			Expect(second.Data).To(Equal(first.Data))
		})
	})

	Describe("Write operations", func() {
		It("should write-allocate on miss", func() {
			result := c.Write(0x1000, 4, 0x12345678)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(uint64(10)))

			readResult := c.Read(0x1000, 4)
			Expect(readResult.Hit).To(BeTrue())
			Expect(readResult.Data).To(Equal(uint32(0x12345678)))
		})

		It("round-trips set then get regardless of configuration (testable property)", func() {
			c.Write(0x40, 4, 0xAABBCCDD)
			Expect(c.Read(0x40, 4).Data).To(Equal(uint32(0xAABBCCDD)))
		})

		It("should hit on cached data and update it", func() {
			c.Write(0x1000, 4, 0x11111111)
			result := c.Write(0x1000, 4, 0x22222222)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(uint64(1)))
			Expect(c.Read(0x1000, 4).Data).To(Equal(uint32(0x22222222)))
		})
	})

	Describe("Direct-mapped eviction (spec.md §8 scenario 5)", func() {
		It("produces MISS, MISS, MISS for 0x00, 0x40, 0x00", func() {
			r1 := c.Read(0x00, 4)
			r2 := c.Read(0x40, 4) // same set as 0x00 in a 16-set, direct-mapped cache
			r3 := c.Read(0x00, 4) // evicted by 0x40
			Expect(r1.Hit).To(BeFalse())
			Expect(r2.Hit).To(BeFalse())
			Expect(r3.Hit).To(BeFalse())
			Expect(r2.Evicted).To(BeTrue(), "0x40 aliases 0x00's only way and must evict it")
		})
	})

	Describe("Two-way associative LRU (spec.md §8 scenario 5 and testable property)", func() {
		It("keeps both recent tags resident: MISS, MISS, HIT", func() {
			twoWay := cache.New(cache.Config{
				Size: 64, Associativity: 2, BlockSize: 4, HitLatency: 1, MissLatency: 10,
			}, backing)

			r1 := twoWay.Read(0x00, 4)
			r2 := twoWay.Read(0x40, 4)
			r3 := twoWay.Read(0x00, 4)
			Expect(r1.Hit).To(BeFalse())
			Expect(r2.Hit).To(BeFalse())
			Expect(r3.Hit).To(BeTrue())
		})

		It("evicts the oldest of three tags mapping to the same set", func() {
			twoWay := cache.New(cache.Config{
				Size: 64, Associativity: 2, BlockSize: 4, HitLatency: 1, MissLatency: 10,
			}, backing)

			twoWay.Read(0x00, 4) // set 0, way A
			twoWay.Read(0x40, 4) // set 0, way B
			twoWay.Read(0x80, 4) // set 0, evicts 0x00 (oldest)

			result := twoWay.Read(0x00, 4)
			Expect(result.Hit).To(BeFalse(), "0x00 should have been evicted as LRU")
		})
	})

	Describe("Eviction and writeback", func() {
		It("writes back dirty data on eviction using the victim's own address", func() {
			// Dirty set 0 and set 1 of the direct-mapped cache; only set
			// 0 is later evicted.
			c.Write(0x00, 4, 0xAAAAAAAA) // set 0
			c.Write(0x04, 4, 0xBBBBBBBB) // set 1, does not alias set 0

			// Force eviction of set 0's resident block by touching the
			// same set again with a different tag.
			c.Write(0x40, 4, 0xCCCCCCCC) // same set as 0x00 (64-byte cache, 4-byte blocks -> 16 sets)

			Expect(memory.Get(0x00, emu.WordSize)).To(Equal(uint32(0xAAAAAAAA)))

			stats := c.Stats()
			Expect(stats.Writebacks).To(Equal(uint64(1)))
			Expect(stats.Evictions).To(Equal(uint64(1)))
		})
	})

	Describe("Flush (drain)", func() {
		It("writes back all dirty blocks", func() {
			c.Write(0x00, 4, 0x11111111)
			c.Write(0x04, 4, 0x22222222)

			v, _ := memory.Get(0x00, emu.WordSize)
			Expect(v).To(Equal(uint32(0)))

			c.Flush()

			v0, _ := memory.Get(0x00, emu.WordSize)
			v1, _ := memory.Get(0x04, emu.WordSize)
			Expect(v0).To(Equal(uint32(0x11111111)))
			Expect(v1).To(Equal(uint32(0x22222222)))

			Expect(c.Stats().Writebacks).To(Equal(uint64(2)))
		})
	})

	Describe("Degenerate configurations", func() {
		It("handles a single-entry, single-way cache", func() {
			tiny := cache.New(cache.Config{
				Size: 4, Associativity: 1, BlockSize: 4, HitLatency: 1, MissLatency: 5,
			}, backing)
			Expect(tiny.Read(0x1000, 4).Hit).To(BeFalse())
			Expect(tiny.Read(0x1000, 4).Hit).To(BeTrue())
			Expect(tiny.Read(0x2000, 4).Hit).To(BeFalse()) // evicts the only block
		})

		It("handles a single-byte block size", func() {
			byteGrained := cache.New(cache.Config{
				Size: 16, Associativity: 1, BlockSize: 1, HitLatency: 1, MissLatency: 5,
			}, backing)
			memory.Set(0x10, emu.ByteSize, 0x7A)
			result := byteGrained.Read(0x10, 1)
			Expect(result.Data).To(Equal(uint32(0x7A)))
		})

		It("disables miss stalling when MissLatency is zero", func() {
			free := cache.New(cache.Config{
				Size: 64, Associativity: 1, BlockSize: 4, MissLatency: 0,
			}, backing)
			Expect(free.Penalty()).To(Equal(uint64(0)))
		})
	})

	Describe("Default configurations", func() {
		It("provides an I-cache default", func() {
			cfg := cache.DefaultICacheConfig()
			Expect(cfg.Size).To(Equal(16 * 1024))
			Expect(cfg.Associativity).To(Equal(2))
			Expect(cfg.BlockSize).To(Equal(32))
		})

		It("provides a D-cache default", func() {
			cfg := cache.DefaultDCacheConfig()
			Expect(cfg.Size).To(Equal(16 * 1024))
			Expect(cfg.Associativity).To(Equal(2))
			Expect(cfg.BlockSize).To(Equal(32))
		})
	})
})
