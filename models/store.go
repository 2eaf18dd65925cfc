package models

import (
	"sync"
	"sync/atomic"
)

// Store is the process-lifetime datastore: plain maps keyed by id behind one
// RWMutex. Entities handed out to callers are copies; the canonical records
// never leave the store, so readers can't observe a half-applied mutation.
type Store struct {
	mu                    sync.RWMutex
	documents             map[int]*Document
	products              map[int]*Product
	customers             map[int]*Customer
	returns               map[int]*Return
	shifts                map[int]*RegisterShift
	activeShiftByRegister map[string]int

	idSeq     atomic.Int64
	numberSeq atomic.Int64
}

func NewStore() *Store {
	return &Store{
		documents:             map[int]*Document{},
		products:              map[int]*Product{},
		customers:             map[int]*Customer{},
		returns:               map[int]*Return{},
		shifts:                map[int]*RegisterShift{},
		activeShiftByRegister: map[string]int{},
	}
}

var (
	storeOnce sync.Once
	storeRef  atomic.Pointer[Store]
)

func GetStore() *Store {
	storeOnce.Do(func() {
		storeRef.CompareAndSwap(nil, NewStore())
	})
	return storeRef.Load()
}

// ResetStore swaps in a fresh empty store and returns it. Used by the seed
// tool and by tests that need isolation.
func ResetStore() *Store {
	s := NewStore()
	storeRef.Store(s)
	return s
}

// nextId hands out process-wide unique entity ids.
func (s *Store) nextId() int {
	return int(s.idSeq.Add(1))
}

// nextSequenceNo is the document numbering counter. One shared monotonic
// sequence across all document types; two concurrent creations can never
// receive the same number.
func (s *Store) nextSequenceNo() int64 {
	return s.numberSeq.Add(1)
}
