package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingCanCancel(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusPending}).CanCancel())
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).CanCancel())
	assert.False(t, (&Booking{Status: BookingStatusCompleted}).CanCancel())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).CanCancel())
}
