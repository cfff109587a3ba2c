// Package settings holds configuration that operators may change while the service runs.
package settings

import (
	"sync"
	"time"
)

// Snapshot is a copy of the runtime settings.
type Snapshot struct {
	TestMode  bool      `json:"testMode"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
}

// Runtime is created once at startup from the loaded config and injected into the
// components that read it. Changes go through Update, called by the admin endpoint.
type Runtime struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewRuntime(testMode bool) *Runtime {
	return &Runtime{snap: Snapshot{TestMode: testMode, UpdatedAt: time.Now().UTC()}}
}

// TestMode reports whether paid actions skip token deduction.
func (r *Runtime) TestMode() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap.TestMode
}

func (r *Runtime) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Update is the only way to change settings at runtime.
func (r *Runtime) Update(testMode bool, by string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = Snapshot{TestMode: testMode, UpdatedAt: time.Now().UTC(), UpdatedBy: by}
	return r.snap
}
