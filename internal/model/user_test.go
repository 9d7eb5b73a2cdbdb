package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "juan.dela.cruz", UsernameFromEmail("Juan.Dela.Cruz@example.com"))
	assert.Equal(t, "maria", UsernameFromEmail("maria@clinic.ph"))
	assert.Equal(t, "noatsign", UsernameFromEmail("noatsign"))
}

func TestSplitFullName(t *testing.T) {
	first, last := SplitFullName("Juan Dela Cruz")
	assert.Equal(t, "Juan", first)
	assert.Equal(t, "Dela Cruz", last)

	first, last = SplitFullName("Madonna")
	assert.Equal(t, "Madonna", first)
	assert.Empty(t, last)

	first, last = SplitFullName("  Ana  Santos ")
	assert.Equal(t, "Ana", first)
	assert.Equal(t, " Santos", last)
}

func TestUserFullName(t *testing.T) {
	u := &User{FirstName: "Juan", LastName: "Dela Cruz"}
	assert.Equal(t, "Juan Dela Cruz", u.FullName())

	u = &User{FirstName: "Madonna"}
	assert.Equal(t, "Madonna", u.FullName())
}
