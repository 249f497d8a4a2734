package services

import (
	"sync"

	"github.com/google/uuid"
)

// CompanyLocker serialises writers of one company's leaderboard. Different
// companies never block each other.
type CompanyLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*companyLock
}

type companyLock struct {
	mu   sync.Mutex
	refs int
}

func NewCompanyLocker() *CompanyLocker {
	return &CompanyLocker{locks: make(map[uuid.UUID]*companyLock)}
}

// Lock blocks until the company is free and returns the matching unlock.
func (l *CompanyLocker) Lock(companyID uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[companyID]
	if !ok {
		entry = &companyLock{}
		l.locks[companyID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, companyID)
			}
			l.mu.Unlock()
		})
	}
}
