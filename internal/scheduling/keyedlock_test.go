package scheduling

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedLockSerializesSameKey(t *testing.T) {
	kl := NewKeyedLock()
	const workers = 50

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kl.Lock("doctor-a|2026-09-01")
			defer kl.Unlock("doctor-a|2026-09-01")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyedLockIndependentKeysDoNotBlock(t *testing.T) {
	kl := NewKeyedLock()
	kl.Lock("doctor-a|2026-09-01")
	defer kl.Unlock("doctor-a|2026-09-01")

	acquired := make(chan struct{})
	go func() {
		kl.Lock("doctor-b|2026-09-01")
		defer kl.Unlock("doctor-b|2026-09-01")
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on an unrelated key blocked")
	}
}

func TestKeyedLockReleasesEntries(t *testing.T) {
	kl := NewKeyedLock()
	kl.Lock("k")
	kl.Unlock("k")

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.Empty(t, kl.locks, "released entries must be reclaimed")
}

func TestKeyedLockUnlockUnheldPanics(t *testing.T) {
	kl := NewKeyedLock()
	assert.Panics(t, func() { kl.Unlock("never-locked") })
}

func TestDoctorDayKey(t *testing.T) {
	id := uuid.MustParse("6b1c2c4e-9a10-4ab5-8f9e-0d8c9f3e2a11")

	// The same calendar day always yields the same key, whatever the
	// time-of-day or zone of the input.
	morning := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, DoctorDayKey(id, morning), DoctorDayKey(id, evening))
	assert.Equal(t, "6b1c2c4e-9a10-4ab5-8f9e-0d8c9f3e2a11|2026-09-01", DoctorDayKey(id, morning))

	nextDay := time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)
	assert.NotEqual(t, DoctorDayKey(id, morning), DoctorDayKey(id, nextDay))
}
