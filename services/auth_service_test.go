package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/table-ordering/domain"
)

func TestLoginWithSeededStaff(t *testing.T) {
	f := newFixture(t)

	res, err := f.auth.Login(ctx(), LoginInput{Login: "waiter1", Password: "waiter123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWaiter, res.User.Role)
	require.NotNil(t, res.User.LastLogin)
	assert.True(t, res.User.LastLogin.Equal(f.clock.Now()))

	identity, err := f.tokens.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, identity.UserID)
	assert.Equal(t, "waiter1", identity.Username)

	_, err = f.auth.Login(ctx(), LoginInput{Login: "waiter1", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.Equal(t, "Invalid credentials", domain.PublicMessage(err))

	_, err = f.auth.Login(ctx(), LoginInput{Login: "ghost", Password: "waiter123"})
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	_, err = f.auth.Login(ctx(), LoginInput{Login: "waiter1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegisterStaff(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.RegisterStaff(ctx(), RegisterStaffInput{
		Username: "waiter3", Password: "secret1", Role: domain.RoleWaiter, FullName: "Waiter Three",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWaiter, user.Role)

	_, err = f.auth.RegisterStaff(ctx(), RegisterStaffInput{
		Username: "waiter3", Password: "secret1", Role: domain.RoleWaiter, FullName: "Again",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	for name, in := range map[string]RegisterStaffInput{
		"short password": {Username: "cook", Password: "12345", Role: domain.RoleKitchen, FullName: "Cook"},
		"customer role":  {Username: "cust", Password: "123456", Role: domain.RoleCustomer, FullName: "C"},
		"unknown role":   {Username: "boss", Password: "123456", Role: "owner", FullName: "B"},
		"missing name":   {Username: "anon", Password: "123456", Role: domain.RoleAdmin},
	} {
		_, err := f.auth.RegisterStaff(ctx(), in)
		assert.ErrorIs(t, err, domain.ErrValidation, name)
	}

	res, err := f.auth.Login(ctx(), LoginInput{Login: "waiter3", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
}

func TestRegisterCustomer(t *testing.T) {
	f := newFixture(t)

	res, err := f.auth.RegisterCustomer(ctx(), RegisterCustomerInput{
		Email: " Ana@Example.com ", Password: "hunter22", FullName: "Ana",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	assert.Equal(t, "ana@example.com", *res.User.Email)
	assert.Nil(t, res.User.Username)

	_, err = f.auth.RegisterCustomer(ctx(), RegisterCustomerInput{
		Email: "ana@example.com", Password: "hunter22", FullName: "Ana B",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.auth.RegisterCustomer(ctx(), RegisterCustomerInput{
		Email: "not-an-email", Password: "hunter22", FullName: "X",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	login, err := f.auth.Login(ctx(), LoginInput{Login: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	me, err := f.auth.Me(ctx(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", *me.FullName)

	users, err := f.auth.ListUsers(ctx())
	require.NoError(t, err)
	assert.Len(t, users, 5)
}
