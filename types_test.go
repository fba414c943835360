package hostwise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Satisfies(t *testing.T) {
	cases := []struct {
		have, need Role
		want       bool
	}{
		{RoleAdmin, RoleViewer, true},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleManager, RoleViewer, true},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleAdmin, false},
		{RoleViewer, RoleViewer, true},
		{RoleViewer, RoleManager, false},
		{RoleViewer, RoleAdmin, false},
		{Role("bogus"), RoleViewer, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.have.Satisfies(c.need), "%s satisfies %s", c.have, c.need)
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"viewer", "manager", "admin"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}

	_, err := ParseRole("superuser")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestReservation_Overlaps(t *testing.T) {
	stay := Reservation{
		CheckIn:  Date{2025, time.June, 10},
		CheckOut: Date{2025, time.June, 15},
	}

	assert.True(t, stay.Overlaps(Date{2025, time.June, 1}, Date{2025, time.June, 30}))
	assert.True(t, stay.Overlaps(Date{2025, time.June, 12}, Date{2025, time.June, 13}))
	// boundary days count as overlap
	assert.True(t, stay.Overlaps(Date{2025, time.June, 1}, Date{2025, time.June, 10}))
	assert.True(t, stay.Overlaps(Date{2025, time.June, 15}, Date{2025, time.June, 20}))

	assert.False(t, stay.Overlaps(Date{2025, time.June, 1}, Date{2025, time.June, 9}))
	assert.False(t, stay.Overlaps(Date{2025, time.June, 16}, Date{2025, time.June, 20}))
}

func TestAccessCode_ValidOn(t *testing.T) {
	code := AccessCode{
		Active:     true,
		ValidFrom:  Date{2025, time.June, 1},
		ValidUntil: Date{2025, time.June, 30},
	}

	assert.True(t, code.ValidOn(Date{2025, time.June, 1}))
	assert.True(t, code.ValidOn(Date{2025, time.June, 15}))
	assert.True(t, code.ValidOn(Date{2025, time.June, 30}))
	assert.False(t, code.ValidOn(Date{2025, time.May, 31}))
	assert.False(t, code.ValidOn(Date{2025, time.July, 1}))

	code.Active = false
	assert.False(t, code.ValidOn(Date{2025, time.June, 15}))
}
