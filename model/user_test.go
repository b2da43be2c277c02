package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("customer")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, role)

	role, err = ParseRole("seller")
	require.NoError(t, err)
	assert.Equal(t, RoleSeller, role)

	for _, raw := range []string{"", "admin", "Customer", "SELLER", "staff"} {
		_, err := ParseRole(raw)
		assert.Error(t, err, raw)
	}
}

func TestUserRoleQueries(t *testing.T) {
	var anonymous *User
	assert.False(t, anonymous.IsAuthenticated())
	assert.False(t, anonymous.IsCustomer())
	assert.False(t, anonymous.IsSeller())
	assert.False(t, anonymous.IsAdmin())

	customer := &User{ID: "c1", Role: RoleCustomer, IsActive: true}
	assert.True(t, customer.IsAuthenticated())
	assert.True(t, customer.IsCustomer())
	assert.False(t, customer.IsSeller())

	inactive := &User{ID: "c2", Role: RoleCustomer, IsActive: false}
	assert.False(t, inactive.IsAuthenticated())

	staff := &User{ID: "a1", Role: RoleSeller, IsActive: true, IsStaff: true}
	assert.True(t, staff.IsAdmin())
	super := &User{ID: "a2", Role: RoleCustomer, IsActive: true, IsSuperuser: true}
	assert.True(t, super.IsAdmin())
}

func TestFullName(t *testing.T) {
	u := &User{Username: "alice"}
	assert.Equal(t, "alice", u.FullName())

	u.FirstName = "Alice"
	assert.Equal(t, "Alice", u.FullName())

	u.LastName = "Smith"
	assert.Equal(t, "Alice Smith", u.FullName())
}
