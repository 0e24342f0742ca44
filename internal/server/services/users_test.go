package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/capacitanet/internal/common"
	"github.com/dmitrijs2005/capacitanet/internal/server/auth"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterValidationOrder(t *testing.T) {
	valid := RegisterInput{Username: "alice@corp.com", FirstName: "Alice", LastName: "Smith", Password: "pw"}

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"missing username wins over everything", func(in *RegisterInput) { *in = RegisterInput{} }, ErrUsernameRequired},
		{"first name before domain", func(in *RegisterInput) { in.Username = "alice@gmail.com"; in.FirstName = " " }, ErrFirstNameRequired},
		{"last name", func(in *RegisterInput) { in.LastName = "" }, ErrLastNameRequired},
		{"blank password", func(in *RegisterInput) { in.Password = "   " }, ErrPasswordRequired},
		{"password over bcrypt limit", func(in *RegisterInput) { in.Password = strings.Repeat("p", auth.MaxPasswordBytes+1) }, ErrPasswordTooLong},
		{"foreign domain", func(in *RegisterInput) { in.Username = "alice@gmail.com" }, ErrDomainNotAllowed},
		{"domain suffix is not a substring match", func(in *RegisterInput) { in.Username = "alice@corp.com.evil.io" }, ErrDomainNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := valid
			tt.mutate(&in)

			err := f.users.Register(context.Background(), in)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, common.ErrorValidation)

			items, err := f.store.Scan(context.Background(), records.Table{Name: "users"})
			require.NoError(t, err)
			assert.Empty(t, items, "nothing may be written on validation failure")
		})
	}
}

func TestUserService_RegisterDomainIsCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	err := f.users.Register(context.Background(), RegisterInput{
		Username: "Bob@CORP.com", FirstName: "Bob", LastName: "B", Password: "pw",
	})
	require.NoError(t, err)

	u, err := f.userRepo.Get(context.Background(), "bob@corp.com")
	require.NoError(t, err)
	assert.Equal(t, "bob@corp.com", u.Username)
	assert.True(t, u.Active)
	assert.Empty(t, u.Courses)
	assert.Empty(t, u.Badges)
	assert.NotEqual(t, "pw", u.Password)
}

func TestUserService_RegisterDuplicateKeepsOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@corp.com", "first")

	err := f.users.Register(ctx, RegisterInput{Username: "alice@corp.com", FirstName: "Mallory", LastName: "M", Password: "second"})
	require.ErrorIs(t, err, ErrUserExists)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	u, err := f.userRepo.Get(ctx, "alice@corp.com")
	require.NoError(t, err)
	assert.Equal(t, "First", u.FirstName)

	_, err = f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: "first"})
	assert.NoError(t, err)
}

func TestUserService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@corp.com", "rightpw")

	token, err := f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: "rightpw"})
	require.NoError(t, err)
	sub, err := f.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@corp.com", sub)

	_, err = f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: "wrongpw"})
	assert.ErrorIs(t, err, ErrBadCredentials)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_LoginInactiveLooksLikeMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "carol@corp.com", "pw")
	require.NoError(t, f.users.Deactivate(ctx, "carol@corp.com", Credentials{Username: "carol@corp.com", Password: "pw"}))

	_, inactiveErr := f.users.Login(ctx, Credentials{Username: "carol@corp.com", Password: "pw"})
	_, missingErr := f.users.Login(ctx, Credentials{Username: "nobody@corp.com", Password: "pw"})

	require.ErrorIs(t, inactiveErr, common.ErrorNotFound)
	assert.Equal(t, missingErr, inactiveErr)
	assert.Equal(t, missingErr.Error(), inactiveErr.Error())

	// deactivation keeps the record
	u, err := f.userRepo.Get(ctx, "carol@corp.com")
	require.NoError(t, err)
	assert.False(t, u.Active)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@corp.com", "old")

		err := f.users.ChangePassword(ctx, "alice@corp.com", ChangePasswordInput{Username: "alice@corp.com", Password: "old", NewPassword: "new"})
		require.NoError(t, err)

		_, err = f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: "old"})
		assert.ErrorIs(t, err, ErrBadCredentials)
		_, err = f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: "new"})
		assert.NoError(t, err)
	})

	t.Run("wrong old password", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@corp.com", "old")

		err := f.users.ChangePassword(ctx, "alice@corp.com", ChangePasswordInput{Username: "alice@corp.com", Password: "guess", NewPassword: "new"})
		assert.ErrorIs(t, err, ErrUnauthorizedChange)
	})

	t.Run("someone else's account", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@corp.com", "old")
		f.register(t, "bob@corp.com", "bobpw")

		err := f.users.ChangePassword(ctx, "bob@corp.com", ChangePasswordInput{Username: "alice@corp.com", Password: "old", NewPassword: "new"})
		assert.ErrorIs(t, err, ErrUnauthorizedChange)

		_, err = f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: "old"})
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		err := f.users.ChangePassword(ctx, "ghost@corp.com", ChangePasswordInput{Username: "ghost@corp.com", Password: "x", NewPassword: "y"})
		assert.ErrorIs(t, err, ErrUnauthorizedChange)
	})

	t.Run("new password over bcrypt limit", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@corp.com", "old")

		err := f.users.ChangePassword(ctx, "alice@corp.com", ChangePasswordInput{
			Username: "alice@corp.com", Password: "old", NewPassword: strings.Repeat("p", auth.MaxPasswordBytes+1),
		})
		require.ErrorIs(t, err, ErrPasswordTooLong)
		assert.ErrorIs(t, err, common.ErrorValidation)

		_, err = f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: "old"})
		assert.NoError(t, err)
	})

	t.Run("longest accepted password", func(t *testing.T) {
		f := newFixture(t)
		long := strings.Repeat("p", auth.MaxPasswordBytes)
		f.register(t, "alice@corp.com", long)

		_, err := f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: long})
		assert.NoError(t, err)
	})

	t.Run("empty new password", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice@corp.com", "old")

		err := f.users.ChangePassword(ctx, "alice@corp.com", ChangePasswordInput{Username: "alice@corp.com", Password: "old"})
		assert.ErrorIs(t, err, ErrNewPasswordRequired)
	})
}

func TestUserService_Profile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@corp.com", "pw")

	u, err := f.users.Profile(ctx, "alice@corp.com")
	require.NoError(t, err)
	assert.Equal(t, common.MaskedPassword, u.Password)

	stored, err := f.userRepo.Get(ctx, "alice@corp.com")
	require.NoError(t, err)
	assert.NotEqual(t, common.MaskedPassword, stored.Password)

	_, err = f.users.Profile(ctx, "ghost@corp.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_BackendFailureIsNotClassified(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("dynamodb unavailable")
	f.userRepo = brokenUsers{err: boom}
	f.wire()
	ctx := context.Background()

	_, err := f.users.Login(ctx, Credentials{Username: "alice@corp.com", Password: "pw"})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrorNotFound)

	err = f.users.Register(ctx, RegisterInput{Username: "alice@corp.com", FirstName: "A", LastName: "B", Password: "pw"})
	assert.ErrorIs(t, err, boom)
}

func TestUserService_ChangePasswordRetriesOnConflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice@corp.com", "old")
	wrapped := &conflictingUsers{Repository: f.userRepo, conflicts: 2}
	f.userRepo = wrapped
	f.wire()

	err := f.users.ChangePassword(context.Background(), "alice@corp.com", ChangePasswordInput{Username: "alice@corp.com", Password: "old", NewPassword: "new"})
	require.NoError(t, err)
	assert.Equal(t, 3, wrapped.saves)
}

func TestUserService_Deactivate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		principal string
		creds     Credentials
	}{
		{"wrong password", "alice@corp.com", Credentials{Username: "alice@corp.com", Password: "guess"}},
		{"someone else's account", "bob@corp.com", Credentials{Username: "alice@corp.com", Password: "pw"}},
		{"unknown user", "ghost@corp.com", Credentials{Username: "ghost@corp.com", Password: "pw"}},
		{"already inactive", "carol@corp.com", Credentials{Username: "carol@corp.com", Password: "pw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.register(t, "alice@corp.com", "pw")
			f.register(t, "bob@corp.com", "bobpw")
			f.register(t, "carol@corp.com", "pw")
			require.NoError(t, f.users.Deactivate(ctx, "carol@corp.com", Credentials{Username: "carol@corp.com", Password: "pw"}))

			err := f.users.Deactivate(ctx, tt.principal, tt.creds)
			require.ErrorIs(t, err, ErrUnauthorizedChange)
			assert.ErrorIs(t, err, common.ErrorUnauthorized)

			for _, name := range []string{"alice@corp.com", "bob@corp.com"} {
				u, err := f.userRepo.Get(ctx, name)
				require.NoError(t, err)
				assert.True(t, u.Active, "%s must stay active", name)
			}
		})
	}
}

func TestUserService_ProfileHidesStorageKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@corp.com", "pw")
	f.course(t, "bob@corp.com", "go-101")
	_, err := f.courses.AttachResource(ctx, "bob@corp.com", "go-101", attachInput("intro.pdf", "pdf"))
	require.NoError(t, err)
	_, err = f.enrollment.Subscribe(ctx, "alice@corp.com", "go-101")
	require.NoError(t, err)

	u, err := f.users.Profile(ctx, "Alice@corp.com")
	require.NoError(t, err)
	require.Len(t, u.Courses, 1)
	require.Len(t, u.Courses[0].Resources, 1)
	assert.Empty(t, u.Courses[0].Resources[0].StorageKey)
	assert.Equal(t, "intro.pdf", u.Courses[0].Resources[0].Name)

	stored, err := f.userRepo.Get(ctx, "alice@corp.com")
	require.NoError(t, err)
	assert.Equal(t, "courses/go-101/intro.pdf", stored.Courses[0].Resources[0].StorageKey)
}
