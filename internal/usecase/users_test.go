package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/codigix/Furnituredemo/internal/domain"
)

func TestRegister_HashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUsers(repo)

	u, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Jo Smith",
		Email:    "  Jo.Smith@Example.COM ",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.Equal(t, "jo.smith@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "hunter22", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")))
}

func TestRegister_Validation(t *testing.T) {
	svc := NewUsers(newFakeUserRepo())

	cases := []RegisterInput{
		{Email: "jo@example.com", Password: "hunter22"},           // no name
		{Name: "Jo", Password: "hunter22"},                        // no email
		{Name: "Jo", Email: "not-an-address", Password: "hunter22"},
		{Name: "Jo", Email: "jo@example.com", Password: "short"},
	}
	for i, in := range cases {
		_, err := svc.Register(context.Background(), in)
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, "case %d", i)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo(&domain.User{ID: "u1", Name: "Jo", Email: "jo@example.com"})
	svc := NewUsers(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Other Jo", Email: "JO@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUsers(repo)

	reg, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jo", Email: "jo@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "Jo@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)

	_, err = svc.Authenticate(context.Background(), "jo@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)

	// unknown email fails with the same error as a bad password
	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUsers(repo)

	reg, err := svc.Register(context.Background(), RegisterInput{
		Name: "Jo", Email: "jo@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	// empty fields keep current values
	u, err := svc.UpdateProfile(context.Background(), reg.ID, UpdateProfileInput{Name: "Jordan"})
	require.NoError(t, err)
	assert.Equal(t, "Jordan", u.Name)
	assert.Equal(t, "jo@example.com", u.Email)

	// changing password re-hashes
	u, err = svc.UpdateProfile(context.Background(), reg.ID, UpdateProfileInput{Password: "newsecret"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("newsecret")))

	// taking another account's email is rejected
	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Sam", Email: "sam@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
	_, err = svc.UpdateProfile(context.Background(), reg.ID, UpdateProfileInput{Email: "sam@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}
