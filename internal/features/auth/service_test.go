package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/aryanracha/civiclens/internal/pkg/token"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

type fakeUserStore struct {
	byEmail map[string]*User
	byID    map[primitive.ObjectID]*User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: map[string]*User{},
		byID:    map[primitive.ObjectID]*User{},
	}
}

func (f *fakeUserStore) Insert(_ context.Context, user *User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return apperrors.ErrDuplicate
	}
	user.ID = primitive.NewObjectID()
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func newTestService() (*Service, *fakeUserStore) {
	store := newFakeUserStore()
	return NewService(store, token.NewManager("test-secret", 72)), store
}

func TestSignup_CreatesUserWithHashedPassword(t *testing.T) {
	svc, store := newTestService()

	session, err := svc.Signup(context.Background(), &SignupRequest{
		Name:     "Aryan",
		Email:    "Aryan@Example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.Token)
	assert.Equal(t, RoleUser, session.User.Role)
	assert.Equal(t, "aryan@example.com", session.User.Email, "email is normalized to lowercase")

	stored := store.byEmail["aryan@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct horse battery", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse battery")))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	req := &SignupRequest{Name: "Aryan", Email: "a@example.com", Password: "longenoughpw"}
	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Signup(context.Background(), &SignupRequest{
		Name: "Aryan", Email: "a@example.com", Password: "longenoughpw",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		session, err := svc.Login(context.Background(), &LoginRequest{
			Email: "a@example.com", Password: "longenoughpw",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &LoginRequest{
			Email: "a@example.com", Password: "wrong",
		})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &LoginRequest{
			Email: "nobody@example.com", Password: "longenoughpw",
		})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestCurrentUser(t *testing.T) {
	svc, store := newTestService()

	session, err := svc.Signup(context.Background(), &SignupRequest{
		Name: "Aryan", Email: "a@example.com", Password: "longenoughpw",
	})
	require.NoError(t, err)

	user, err := svc.CurrentUser(context.Background(), session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, store.byEmail["a@example.com"].ID, user.ID)

	_, err = svc.CurrentUser(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
