package workflow

import "sync"

// Multi-step engine operations (convert, pay, return, checkout) serialize on
// a per-document posting lock so two concurrent conversions of the same
// source cannot interleave their read-then-write steps.
//
// NOTE: locks are in-process; all mutation in this core is synchronous and
// request-triggered, so there is no cross-instance coordination to do.
var (
	postingMu    sync.Mutex
	postingLocks = map[int]*sync.Mutex{}
)

func AcquireDocumentPostingLock(documentId int) {
	postingMu.Lock()
	lock := postingLocks[documentId]
	if lock == nil {
		lock = &sync.Mutex{}
		postingLocks[documentId] = lock
	}
	postingMu.Unlock()

	lock.Lock()
}

func ReleaseDocumentPostingLock(documentId int) {
	postingMu.Lock()
	lock := postingLocks[documentId]
	postingMu.Unlock()

	if lock != nil {
		lock.Unlock()
	}
}
