package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAvailability(t *testing.T, slots ...TimeSlot) *StaffDailyAvailability {
	t.Helper()
	av := NewStaffDailyAvailability("av-1", "staff-1", "biz-1", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	now := time.Now()
	for _, s := range slots {
		_, err := av.AddTimeSlot(s, now)
		require.NoError(t, err)
	}
	return av
}

func TestAvailability_AddTimeSlot(t *testing.T) {
	now := time.Now()
	av := newTestAvailability(t, mustSlot(t, "09:00", "10:00"))

	ev, err := av.AddTimeSlot(mustSlot(t, "10:00", "11:00"), now)
	require.NoError(t, err)
	require.Equal(t, "availability.updated", ev.EventName())
	require.Len(t, av.Slots, 2)

	// adding never reduces coverage
	assert.True(t, av.IsAvailable(mustSlot(t, "09:00", "10:00")))
	assert.True(t, av.IsAvailable(mustSlot(t, "10:15", "10:45")))
}

func TestAvailability_AddOverlappingSlotFails(t *testing.T) {
	now := time.Now()
	av := newTestAvailability(t, mustSlot(t, "09:00", "10:00"), mustSlot(t, "11:00", "12:00"))

	before := append([]TimeSlot(nil), av.Slots...)
	ev, err := av.AddTimeSlot(mustSlot(t, "09:30", "10:30"), now)
	require.ErrorIs(t, err, ErrSlotOverlap)
	require.Nil(t, ev)
	require.Equal(t, before, av.Slots, "failed add leaves the set unchanged")
}

func TestAvailability_SlotsKeptOrdered(t *testing.T) {
	now := time.Now()
	av := newTestAvailability(t)
	_, err := av.AddTimeSlot(mustSlot(t, "14:00", "15:00"), now)
	require.NoError(t, err)
	_, err = av.AddTimeSlot(mustSlot(t, "09:00", "10:00"), now)
	require.NoError(t, err)

	require.Equal(t, []TimeSlot{mustSlot(t, "09:00", "10:00"), mustSlot(t, "14:00", "15:00")}, av.Slots)
}

func TestAvailability_RemoveTimeSlot(t *testing.T) {
	now := time.Now()
	av := newTestAvailability(t, mustSlot(t, "09:00", "10:00"), mustSlot(t, "11:00", "12:00"))

	ev, err := av.RemoveTimeSlot(mustSlot(t, "09:00", "10:00"), now)
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.Equal(t, []TimeSlot{mustSlot(t, "11:00", "12:00")}, av.Slots)

	// absent slot is an event-free no-op
	ev, err = av.RemoveTimeSlot(mustSlot(t, "09:00", "10:00"), now)
	require.NoError(t, err)
	require.Nil(t, ev)

	// near-miss boundaries do not match
	ev, err = av.RemoveTimeSlot(mustSlot(t, "11:00", "11:30"), now)
	require.NoError(t, err)
	require.Nil(t, ev)
	require.Len(t, av.Slots, 1)
}

func TestAvailability_SetSlots(t *testing.T) {
	now := time.Now()
	av := newTestAvailability(t, mustSlot(t, "09:00", "10:00"))

	ev, err := av.SetSlots([]TimeSlot{mustSlot(t, "13:00", "14:00"), mustSlot(t, "10:00", "12:00")}, now)
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.Equal(t, []TimeSlot{mustSlot(t, "10:00", "12:00"), mustSlot(t, "13:00", "14:00")}, av.Slots)

	_, err = av.SetSlots([]TimeSlot{mustSlot(t, "09:00", "10:00"), mustSlot(t, "09:30", "11:00")}, now)
	require.ErrorIs(t, err, ErrSlotOverlap)
}

func TestAvailability_IsAvailable(t *testing.T) {
	av := newTestAvailability(t, mustSlot(t, "09:00", "12:00"))

	assert.True(t, av.IsAvailable(mustSlot(t, "09:00", "12:00")))
	assert.True(t, av.IsAvailable(mustSlot(t, "10:00", "10:30")))
	assert.False(t, av.IsAvailable(mustSlot(t, "08:30", "09:30")))
	assert.False(t, av.IsAvailable(mustSlot(t, "11:45", "12:15")))
	assert.False(t, newTestAvailability(t).IsAvailable(mustSlot(t, "09:00", "09:30")))
}

func TestAvailability_ApplyAppointment(t *testing.T) {
	tests := []struct {
		name  string
		slots []TimeSlot
		appt  TimeSlot
		want  []TimeSlot
		ok    bool
	}{
		{
			name:  "middle split leaves both remainders",
			slots: []TimeSlot{mustSlot(t, "09:00", "12:00")},
			appt:  mustSlot(t, "10:00", "10:30"),
			want:  []TimeSlot{mustSlot(t, "09:00", "10:00"), mustSlot(t, "10:30", "12:00")},
			ok:    true,
		},
		{
			name:  "booking at slot start leaves only tail",
			slots: []TimeSlot{mustSlot(t, "09:00", "12:00")},
			appt:  mustSlot(t, "09:00", "09:30"),
			want:  []TimeSlot{mustSlot(t, "09:30", "12:00")},
			ok:    true,
		},
		{
			name:  "booking at slot end leaves only head",
			slots: []TimeSlot{mustSlot(t, "09:00", "12:00")},
			appt:  mustSlot(t, "11:30", "12:00"),
			want:  []TimeSlot{mustSlot(t, "09:00", "11:30")},
			ok:    true,
		},
		{
			name:  "booking the whole slot empties it",
			slots: []TimeSlot{mustSlot(t, "09:00", "10:00")},
			appt:  mustSlot(t, "09:00", "10:00"),
			want:  []TimeSlot{},
			ok:    true,
		},
		{
			name:  "no containing slot fails silently",
			slots: []TimeSlot{mustSlot(t, "09:00", "10:00")},
			appt:  mustSlot(t, "09:30", "10:30"),
			want:  []TimeSlot{mustSlot(t, "09:00", "10:00")},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			av := newTestAvailability(t, tt.slots...)
			got := av.ApplyAppointment(tt.appt)
			require.Equal(t, tt.ok, got)
			if len(tt.want) == 0 {
				require.Empty(t, av.Slots)
				require.True(t, av.IsEmpty())
			} else {
				require.Equal(t, tt.want, av.Slots)
			}
		})
	}
}

// Carving an appointment out and re-adding the freed sub-intervals plus the
// appointment interval reconstructs the original availability.
func TestAvailability_ApplyAppointmentRoundTrip(t *testing.T) {
	now := time.Now()
	original := []TimeSlot{mustSlot(t, "09:00", "12:00"), mustSlot(t, "14:00", "16:00")}
	av := newTestAvailability(t, original...)
	appt := mustSlot(t, "10:00", "10:45")

	require.True(t, av.ApplyAppointment(appt))

	_, err := av.RemoveTimeSlot(mustSlot(t, "09:00", "10:00"), now)
	require.NoError(t, err)
	_, err = av.RemoveTimeSlot(mustSlot(t, "10:45", "12:00"), now)
	require.NoError(t, err)
	_, err = av.AddTimeSlot(mustSlot(t, "09:00", "12:00"), now)
	require.NoError(t, err)

	require.Equal(t, original, av.Slots)
}
