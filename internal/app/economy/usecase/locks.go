package usecase

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/google/uuid"
)

const lockStripes = 64

// stripedLocks 依帳戶 id 分段的互斥鎖，讓同一帳戶的餘額異動序列化
type stripedLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (s *stripedLocks) index(id uuid.UUID) int {
	return int(binary.BigEndian.Uint64(id[8:]) % lockStripes)
}

// lock 鎖定所有 id 對應的分段並回傳解鎖函式
// 分段 index 由小到大鎖定以避免死鎖 (兩個 id 落在同一分段只鎖一次)
func (s *stripedLocks) lock(ids ...uuid.UUID) (unlock func()) {
	idx := make([]int, 0, len(ids))
	for _, id := range ids {
		i := s.index(id)
		dup := false
		for _, j := range idx {
			if j == i {
				dup = true
				break
			}
		}
		if !dup {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	for _, i := range idx {
		s.stripes[i].Lock()
	}
	return func() {
		for k := len(idx) - 1; k >= 0; k-- {
			s.stripes[idx[k]].Unlock()
		}
	}
}
