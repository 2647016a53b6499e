package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleDonor.Valid())
	assert.True(t, RoleHospital.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("superuser").Valid())
}

func TestCampStatusValid(t *testing.T) {
	for _, s := range []CampStatus{CampUpcoming, CampOngoing, CampCompleted, CampCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, CampStatus("archived").Valid())
}

func TestAttendanceStatusValid(t *testing.T) {
	for _, s := range []AttendanceStatus{AttendanceRegistered, AttendanceAttended, AttendanceNoShow} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, AttendanceStatus("present").Valid())
	assert.False(t, AttendanceStatus("").Valid())
}

func TestValidBloodGroup(t *testing.T) {
	for _, g := range BloodGroups {
		assert.True(t, ValidBloodGroup(g), g)
	}
	assert.False(t, ValidBloodGroup("C+"))
	assert.False(t, ValidBloodGroup("o+"))
	assert.False(t, ValidBloodGroup(""))
}

func TestValidGender(t *testing.T) {
	assert.True(t, ValidGender("Male"))
	assert.True(t, ValidGender("Female"))
	assert.True(t, ValidGender("Other"))
	assert.False(t, ValidGender("male"))
	assert.False(t, ValidGender(""))
}
