package scheduling

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeyedLock serializes admission decisions per (doctor, day). Holding the
// key for one doctor-day never blocks bookings for any other; entries are
// reference-counted and removed once the last holder releases them.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{locks: make(map[string]*lockEntry)}
}

func (k *KeyedLock) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &lockEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *KeyedLock) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("scheduling: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}

// DoctorDayKey builds the admission lock key for a doctor and calendar day.
func DoctorDayKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s|%s", doctorID, date.UTC().Format(time.DateOnly))
}
