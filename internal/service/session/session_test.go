package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habalhub/habal-hub/internal/domain/user"
	"github.com/habalhub/habal-hub/pkg/auth"
	"github.com/habalhub/habal-hub/pkg/logger"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*user.User
	byEmail map[string]*user.User
	hashes  map[uuid.UUID]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
		hashes:  make(map[uuid.UUID]string),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.byEmail[u.Email]; taken {
		return user.ErrEmailTaken
	}
	cp := *u
	f.byID[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	f.hashes[u.ID] = passwordHash
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return nil, "", user.ErrUserNotFound
	}
	cp := *u
	return &cp, f.hashes[u.ID], nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd user.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Name = upd.Name
	u.Phone = upd.Phone
	u.AvatarURL = upd.AvatarURL
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, role *user.Role) ([]*user.User, error) {
	return nil, nil
}

func newTestService(repo *fakeUserRepo) *Service {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewService(repo, tokens, nil, logger.Nop())
}

func signUpParams() SignUpParams {
	return SignUpParams{
		Email:    "maria@example.com",
		Password: "kasalo-habal-1",
		Name:     "Maria Santos",
		Phone:    "+639171234567",
		Role:     user.RoleRider,
	}
}

func TestSignUp_CreatesAndSignsIn(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	defer svc.Close()

	u, token, err := svc.SignUp(context.Background(), signUpParams())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.RoleRider, u.Role)

	resolved, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, resolved.ID)
}

func TestSignUp_Validation(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	defer svc.Close()

	t.Run("admin cannot self-register", func(t *testing.T) {
		p := signUpParams()
		p.Role = user.Role("superuser")
		_, _, err := svc.SignUp(context.Background(), p)
		assert.ErrorIs(t, err, user.ErrInvalidRole)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, _, err := svc.SignUp(context.Background(), signUpParams())
		require.NoError(t, err)
		_, _, err = svc.SignUp(context.Background(), signUpParams())
		assert.ErrorIs(t, err, user.ErrEmailTaken)
	})
}

func TestSignIn_Credentials(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo)
	defer svc.Close()

	_, _, err := svc.SignUp(context.Background(), signUpParams())
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		u, token, err := svc.SignIn(context.Background(), "maria@example.com", "kasalo-habal-1")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "Maria Santos", u.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.SignIn(context.Background(), "maria@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.SignIn(context.Background(), "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

// TestResolve_SeesProfileEdits tests that resolution re-reads the
// profile, so an edit is visible without re-login.
func TestResolve_SeesProfileEdits(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	defer svc.Close()

	u, token, err := svc.SignUp(context.Background(), signUpParams())
	require.NoError(t, err)

	_, err = svc.UpdateProfile(context.Background(), u.ID, user.ProfileUpdate{
		Name:  "Maria S. Cruz",
		Phone: "+639170000000",
	})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Maria S. Cruz", resolved.Name)
}

func TestResolve_RejectsGarbageToken(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	defer svc.Close()

	_, err := svc.Resolve(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestSubscribe_DeliversAuthEvents(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	defer svc.Close()

	events, cancel := svc.Subscribe()
	defer cancel()

	u, token, err := svc.SignUp(context.Background(), signUpParams())
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, EventSignedIn, ev.Type)
	assert.Equal(t, u.ID, ev.User.ID)

	require.NoError(t, svc.SignOut(context.Background(), token))
	ev = <-events
	assert.Equal(t, EventSignedOut, ev.Type)
}

func TestSubscribe_CancelStopsDelivery(t *testing.T) {
	svc := newTestService(newFakeUserRepo())
	defer svc.Close()

	events, cancel := svc.Subscribe()
	cancel()

	_, ok := <-events
	assert.False(t, ok, "cancelled subscription channel should be closed")
}
