package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTimeSlot(t *testing.T) {
	valid := []string{"00:00", "09:30", "13:45", "23:59"}
	for _, s := range valid {
		assert.True(t, validTimeSlot(s), "%q should be valid", s)
	}

	invalid := []string{"24:00", "12:60", "9:30", "09-30", "09:3a", "", "099:30"}
	for _, s := range invalid {
		assert.False(t, validTimeSlot(s), "%q should be invalid", s)
	}
}

func TestRegisterCustom(t *testing.T) {
	assert.NoError(t, RegisterCustom())
}
