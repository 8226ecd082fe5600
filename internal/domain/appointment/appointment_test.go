package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},

		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, false},
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusConfirmed, false},

		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},

		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCompleted, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			a := &Appointment{Status: tc.from}
			err := a.Transition(tc.to)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.to, a.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidStatusTransition)
				assert.Equal(t, tc.from, a.Status, "failed transition must not mutate the record")
			}
		})
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	a := &Appointment{Status: StatusPending}
	err := a.Transition(Status("archived"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusPending, a.Status)
}

func TestCancelOnlyFromPending(t *testing.T) {
	by := uuid.New()

	a := &Appointment{Status: StatusPending}
	require.NoError(t, a.Cancel("changed my mind", by))
	assert.Equal(t, StatusCancelled, a.Status)
	assert.Equal(t, "changed my mind", a.CancelReason)
	require.NotNil(t, a.CancelledBy)
	assert.Equal(t, by, *a.CancelledBy)

	for _, status := range []Status{StatusConfirmed, StatusCompleted, StatusCancelled} {
		a := &Appointment{Status: status}
		err := a.Cancel("too late", by)
		assert.ErrorIs(t, err, ErrCannotCancel, "cancel from %s", status)
		assert.Equal(t, status, a.Status)
		assert.Empty(t, a.CancelReason)
	}
}

func TestIsActive(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusConfirmed, StatusCompleted} {
		a := &Appointment{Status: status}
		assert.True(t, a.IsActive(), "%s must hold its slot", status)
	}
	a := &Appointment{Status: StatusCancelled}
	assert.False(t, a.IsActive())
}

func TestTimeSlotValidity(t *testing.T) {
	for _, s := range AllSlots() {
		assert.True(t, s.IsValid())
		assert.NotEqual(t, "unknown slot", s.Label())
	}

	assert.False(t, TimeSlot(0).IsValid())
	assert.False(t, TimeSlot(7).IsValid())
	assert.False(t, TimeSlot(-1).IsValid())
	assert.Equal(t, "unknown slot", TimeSlot(42).Label())
}

func TestTimeSlotMorningSplit(t *testing.T) {
	assert.True(t, SlotMorning1.IsMorning())
	assert.True(t, SlotMorning3.IsMorning())
	assert.False(t, SlotAfternoon1.IsMorning())
	assert.False(t, SlotAfternoon3.IsMorning())
}

func TestDateOnly(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	// 03:00 in Shanghai is still the previous day in UTC.
	local := time.Date(2026, 3, 15, 3, 0, 0, 0, loc)
	got := DateOnly(local)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), got)

	utc := time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), DateOnly(utc))

	// Normalization is idempotent.
	assert.Equal(t, got, DateOnly(got))
}
