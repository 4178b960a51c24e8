// Package ratings 是评分数据的内存存储与加载器。
//
// Store 只是数据持有者：Loader 负责校验，Engine 只读取分区视图。
package ratings

import (
	"hash/fnv"
	"sort"
	"strconv"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/rushteam/itemsim/core"
)

const sketchFalsePositiveRate = 0.01

// UserRatings 是单个用户的全部评分，按 ItemID 升序、每个物品只保留一条。
type UserRatings struct {
	UserID  int64
	Ratings []core.Rating
}

// Partition 是 map 阶段的一个输入分片，同一用户的评分一定落在同一分片。
type Partition struct {
	Index int
	Users []UserRatings
}

// NumRatings 返回分片内的评分条数。
func (p Partition) NumRatings() int {
	n := 0
	for _, u := range p.Users {
		n += len(u.Ratings)
	}
	return n
}

// Store 是评分的内存存储。Add 不是并发安全的；加载完成后可以被多个 goroutine 并发读取。
type Store struct {
	byUser map[int64]map[int64]core.Rating
	items  map[int64]int // itemID -> 评分用户数
	total  int

	sketchMu sync.Mutex
	sketch   *bloom.BloomFilter // 物品集合的布隆过滤器，出现新物品时失效
}

func NewStore() *Store {
	return &Store{
		byUser: make(map[int64]map[int64]core.Rating),
		items:  make(map[int64]int),
	}
}

// Add 写入评分。同一用户对同一物品的多条评分只保留时间戳最新的一条（相同时间戳后写入者胜出）。
func (s *Store) Add(rs ...core.Rating) {
	for _, r := range rs {
		items := s.byUser[r.UserID]
		if items == nil {
			items = make(map[int64]core.Rating)
			s.byUser[r.UserID] = items
		}
		old, ok := items[r.ItemID]
		if ok && old.Timestamp > r.Timestamp {
			continue
		}
		if !ok {
			if s.items[r.ItemID] == 0 {
				s.sketchMu.Lock()
				s.sketch = nil
				s.sketchMu.Unlock()
			}
			s.items[r.ItemID]++
			s.total++
		}
		items[r.ItemID] = r
	}
}

// Len 返回去重后的评分条数。
func (s *Store) Len() int { return s.total }

// NumUsers 返回用户数。
func (s *Store) NumUsers() int { return len(s.byUser) }

// NumItems 返回被评分过的物品数。
func (s *Store) NumItems() int { return len(s.items) }

// HasItem 判断物品是否至少被一个用户评分过。
func (s *Store) HasItem(itemID int64) bool {
	_, ok := s.items[itemID]
	return ok
}

// MayHaveItem 用布隆过滤器判断物品是否可能被评分过：返回 false 时一定没有。
// 过滤器按当前物品数在第一次调用时构建。
func (s *Store) MayHaveItem(itemID int64) bool {
	s.sketchMu.Lock()
	if s.sketch == nil {
		n := uint(len(s.items))
		if n == 0 {
			n = 1
		}
		s.sketch = bloom.NewWithEstimates(n, sketchFalsePositiveRate)
		for id := range s.items {
			s.sketch.AddString(strconv.FormatInt(id, 10))
		}
	}
	bf := s.sketch
	s.sketchMu.Unlock()
	return bf.TestString(strconv.FormatInt(itemID, 10))
}

// ItemRaters 返回给物品评分的用户数。
func (s *Store) ItemRaters(itemID int64) int { return s.items[itemID] }

// User 返回某个用户的评分视图。
func (s *Store) User(userID int64) (UserRatings, bool) {
	items, ok := s.byUser[userID]
	if !ok {
		return UserRatings{}, false
	}
	return UserRatings{UserID: userID, Ratings: sortedRatings(items)}, true
}

// Users 返回全部用户 id（升序）。
func (s *Store) Users() []int64 {
	ids := make([]int64, 0, len(s.byUser))
	for id := range s.byUser {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Partition 按 userID 的 FNV-1a 哈希把用户划分为 n 个分片。
// 分片内用户按 id 升序，结果只依赖数据本身，与写入顺序无关。
func (s *Store) Partition(n int) []Partition {
	if n <= 0 {
		n = 1
	}
	parts := make([]Partition, n)
	for i := range parts {
		parts[i].Index = i
	}
	for _, userID := range s.Users() {
		idx := PartitionOf(userID, n)
		parts[idx].Users = append(parts[idx].Users, UserRatings{
			UserID:  userID,
			Ratings: sortedRatings(s.byUser[userID]),
		})
	}
	return parts
}

// PartitionOf 返回 userID 所属的分片下标。
func PartitionOf(userID int64, n int) int {
	h := fnv.New32a()
	h.Write([]byte(strconv.FormatInt(userID, 10)))
	return int(h.Sum32() % uint32(n))
}

func sortedRatings(items map[int64]core.Rating) []core.Rating {
	out := make([]core.Rating, 0, len(items))
	for _, r := range items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}
