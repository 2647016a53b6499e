package models

// Role is the closed set of identity kinds in the system.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleHospital Role = "hospital"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleHospital, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// BloodGroups lists the 8 ABO/Rh types accepted for donors and requests.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func ValidBloodGroup(bg string) bool {
	for _, g := range BloodGroups {
		if g == bg {
			return true
		}
	}
	return false
}

func ValidGender(g string) bool {
	switch g {
	case "Male", "Female", "Other":
		return true
	}
	return false
}
