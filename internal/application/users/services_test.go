package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/IvanGD/engine-diagnostic-site/internal/domain/users"
)

type fakeUserRepo struct {
	nextID int64
	byName map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) (int64, error) {
	if _, exists := f.byName[u.Username]; exists {
		return 0, domain.ErrUsernameTaken
	}
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	f.byName[u.Username] = &cp
	return cp.ID, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(repo *fakeUserRepo) *Service {
	return &Service{
		Repo:     repo,
		Sessions: NewSessionStore(time.Hour),
		Clock:    fixedClock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)},
	}
}

func TestRegister_StoresBcryptHash(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)

	u, err := svc.Register(context.Background(), " chief_engineer ", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "chief_engineer", u.Username, "username stored trimmed")
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
}

func TestRegister_EmptyInputsRejected(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	for _, tc := range []struct{ username, password string }{
		{"", "pw"},
		{"   ", "pw"},
		{"someone", ""},
	} {
		_, err := svc.Register(context.Background(), tc.username, tc.password)

		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve, "username=%q password=%q", tc.username, tc.password)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "mate", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "mate", "pw2")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestLogin_IssuesResolvableToken(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	u, err := svc.Register(context.Background(), "mate", "pw")
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "mate", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ownerID, ok := svc.Sessions.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, u.ID, ownerID)
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "mate", "pw")
	require.NoError(t, err)

	_, err1 := svc.Login(context.Background(), "mate", "nope")
	_, err2 := svc.Login(context.Background(), "nobody", "pw")

	assert.ErrorIs(t, err1, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, err2, domain.ErrInvalidCredentials)
	assert.Equal(t, err1, err2, "callers cannot tell the two cases apart")
}

func TestLogout_RevokesToken(t *testing.T) {
	svc := newTestService(newFakeUserRepo())

	_, err := svc.Register(context.Background(), "mate", "pw")
	require.NoError(t, err)
	token, err := svc.Login(context.Background(), "mate", "pw")
	require.NoError(t, err)

	svc.Logout(token)

	_, ok := svc.Sessions.Resolve(token)
	assert.False(t, ok)
}

func TestSessionStore_ExpiredTokensDoNotResolve(t *testing.T) {
	store := NewSessionStore(-time.Minute) // already expired on issue

	token := store.Issue(42)
	_, ok := store.Resolve(token)
	assert.False(t, ok)
}

func TestSessionStore_UnknownToken(t *testing.T) {
	store := NewSessionStore(time.Hour)

	_, ok := store.Resolve("not-a-token")
	assert.False(t, ok)
}
