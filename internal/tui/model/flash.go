package model

import (
	"sync"
	"time"
)

// Flash holds a transient notification.
type Flash struct {
	mu      sync.RWMutex
	message string
	isErr   bool
	expires time.Time
	now     func() time.Time
}

// Set stores a flash message that expires after the given duration.
func (f *Flash) Set(msg string, isErr bool, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.isErr = isErr
	f.expires = f.clock().Add(d)
}

// Get returns the current flash message, or empty if expired.
func (f *Flash) Get() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.clock().After(f.expires) {
		return "", false
	}
	return f.message, f.isErr
}

func (f *Flash) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}
