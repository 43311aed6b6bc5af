package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// January avoids DST in both hemispheres' northern zones used below.
var winter = func() time.Time { return time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC) }

func TestForOffset(t *testing.T) {
	r := NewResolverWith([]string{"Europe/Berlin", "Asia/Kolkata", "America/New_York", "Africa/Lagos", "Etc/UTC"}, winter)

	tests := []struct {
		name   string
		hours  float64
		want   string
		wantOK bool
	}{
		{name: "utc", hours: 0, want: "Etc/UTC", wantOK: true},
		{name: "first sorted match wins", hours: 1, want: "Africa/Lagos", wantOK: true},
		{name: "negative", hours: -5, want: "America/New_York", wantOK: true},
		{name: "fractional", hours: 5.5, want: "Asia/Kolkata", wantOK: true},
		{name: "no match", hours: 13.75, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ForOffset(tt.hours)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForOffsetSkipsUnknownZones(t *testing.T) {
	r := NewResolverWith([]string{"Atlantis/Capital", "Etc/UTC"}, winter)
	got, ok := r.ForOffset(0)
	assert.True(t, ok)
	assert.Equal(t, "Etc/UTC", got)
}

func TestIsZoneName(t *testing.T) {
	assert.True(t, isZoneName("America/New_York"))
	assert.True(t, isZoneName("Etc/GMT+5"))
	assert.False(t, isZoneName("zone1970.tab"))
	assert.False(t, isZoneName("leapseconds"))
	assert.False(t, isZoneName("Factory"))
}

func TestForOffsetRemembersResults(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		return winter()
	}
	r := NewResolverWith([]string{"Asia/Kolkata", "Etc/UTC"}, clock)

	for i := 0; i < 3; i++ {
		got, ok := r.ForOffset(5.5)
		assert.True(t, ok)
		assert.Equal(t, "Asia/Kolkata", got)

		_, ok = r.ForOffset(13.75)
		assert.False(t, ok)
	}
	assert.Equal(t, 2, calls, "each distinct offset is resolved once")
}
