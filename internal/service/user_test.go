package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zahek/todo-platform/internal/domain"
	apperrors "github.com/zahek/todo-platform/pkg/errors"
	"github.com/zahek/todo-platform/pkg/logger"
)

func newUserService(f *sessionFixture) *UserService {
	return NewUserService(f.users, f.svc, f.events, bcrypt.MinCost, logger.Nop())
}

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := sampleUser()
	u.PasswordHash = string(hash)
	return u
}

func TestRegister_Success(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)

	var created *domain.User
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  A@X.com ",
		Password: "p1",
		Name:     "Ann",
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "a@x.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "p1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("p1")))
	assert.Equal(t, []string{user.ID}, f.events.registered)
	assert.Empty(t, f.mr.Keys(), "registration must not open a session")
}

func TestRegister_Validation(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing email", RegisterInput{Password: "p1"}},
		{"blank email", RegisterInput{Email: "   ", Password: "p1"}},
		{"missing password", RegisterInput{Email: "a@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)
	f.users.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("user", "email", "a@x.com"))

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "p1"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Empty(t, f.events.registered)
}

func TestRegister_EventFailureIsIgnored(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)
	f.events.err = errors.New("broker down")
	f.users.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "p1"})
	assert.NoError(t, err)
}

func TestLogin_Success(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)
	user := userWithPassword(t, "p1")
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(user, nil)

	got, pair, err := svc.Login(context.Background(), LoginInput{Email: "A@x.com", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Len(t, f.mr.Keys(), 1)
}

func TestLogin_WrongPasswordWritesNothing(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(userWithPassword(t, "p1"), nil)

	_, pair, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "wrong"})
	assert.Nil(t, pair)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Empty(t, f.mr.Keys())
	assert.Empty(t, f.events.issued)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)
	f.users.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@x.com", Password: "p1"})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, msgInvalidLogin, appErr.Message)
	assert.Empty(t, f.mr.Keys())
}

func TestLogin_MissingFieldsFailFast(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = svc.Login(context.Background(), LoginInput{Password: "p1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestLogin_DirectoryFailure(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("pool exhausted"))

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "p1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_StoreFailure(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)
	f.users.On("GetByEmail", mock.Anything, "a@x.com").Return(userWithPassword(t, "p1"), nil)
	f.mr.Close()

	_, pair, err := svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "p1"})
	assert.Nil(t, pair)
	require.Error(t, err)
}

func TestMe(t *testing.T) {
	f := newSessionFixture(t)
	svc := newUserService(f)
	user := sampleUser()
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.users.On("GetByID", mock.Anything, "gone").Return(nil, apperrors.ErrNotFound)

	got, err := svc.Me(context.Background(), &domain.Principal{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Me(context.Background(), &domain.Principal{UserID: "gone"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
