package repository

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"passkeeper/internal/app/client/cache"
	"passkeeper/internal/app/client/crypto"
	"passkeeper/internal/app/client/remote"
	"passkeeper/internal/app/client/session"
	"passkeeper/internal/model"
)

// MockRemote is a mock implementation of the remote.Client interface.
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Login(ctx context.Context, username, password string) (*remote.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.AuthResult), args.Error(1)
}

func (m *MockRemote) LoginWithToken(ctx context.Context, token string) (*remote.AuthResult, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.AuthResult), args.Error(1)
}

func (m *MockRemote) Register(ctx context.Context, username, password string) (*remote.AuthResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.AuthResult), args.Error(1)
}

func (m *MockRemote) FetchGroups(ctx context.Context) ([]model.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockRemote) FetchRecords(ctx context.Context) ([]model.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockRemote) CreateGroup(ctx context.Context, name, comment string) (model.Group, error) {
	args := m.Called(ctx, name, comment)
	return args.Get(0).(model.Group), args.Error(1)
}

func (m *MockRemote) UpdateGroup(ctx context.Context, id int64, name, comment string) (model.Group, error) {
	args := m.Called(ctx, id, name, comment)
	return args.Get(0).(model.Group), args.Error(1)
}

func (m *MockRemote) DeleteGroup(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemote) CreateRecord(ctx context.Context, r model.Record) (model.Record, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *MockRemote) UpdateRecord(ctx context.Context, r model.Record) (model.Record, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(model.Record), args.Error(1)
}

func (m *MockRemote) DeleteRecord(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemote) SetToken(token string) {
	m.Called(token)
}

var (
	rawKey     = bytes.Repeat([]byte{0x33}, 32)
	encodedKey = crypto.EncodeKey(rawKey)
)

func newTestRepo(t *testing.T) (*Repository, *MockRemote) {
	t.Helper()
	rc := &MockRemote{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(rc, cache.New(), session.NewManager(), log), rc
}

func sealed(t *testing.T, r model.Record) model.Record {
	t.Helper()
	out, err := encryptRecord(r, rawKey)
	require.NoError(t, err)
	return out
}

func loggedIn(t *testing.T, repo *Repository, rc *MockRemote, records []model.Record, groups []model.Group) {
	t.Helper()
	rc.On("Login", mock.Anything, "alice", "pw").Return(&remote.AuthResult{UserID: 1, Username: "alice", Token: "tok"}, nil).Once()
	rc.On("FetchRecords", mock.Anything).Return(records, nil).Once()
	rc.On("FetchGroups", mock.Anything).Return(groups, nil).Once()

	require.NoError(t, repo.Login(context.Background(), "alice", "pw", encodedKey))
}

func TestLoginLifecycle(t *testing.T) {
	repo, rc := newTestRepo(t)

	records := []model.Record{
		sealed(t, model.Record{ID: 1, GroupID: 10, Title: "GitHub", Username: "alice", Secret: "pw1"}),
		sealed(t, model.Record{ID: 2, GroupID: 20, Title: "Bank", Username: "carol", Secret: "pw2"}),
	}
	groups := []model.Group{{ID: 10, Name: "Web"}, {ID: 20, Name: "Finance"}}

	loggedIn(t, repo, rc, records, groups)

	s, ok := repo.Session().Current()
	require.True(t, ok)
	assert.Equal(t, int64(1), s.UserID)
	assert.Equal(t, "tok", s.Token)

	assert.Len(t, repo.Cache().Groups(), 2)

	got := repo.Cache().RecordsOf(10)
	require.Len(t, got, 1)
	assert.Equal(t, "GitHub", got[0].Title, "record fields are decrypted before entering the cache")
	assert.Equal(t, "pw1", got[0].Secret)

	rc.AssertExpectations(t)
}

func TestLoginBadKeyRejectedBeforeNetwork(t *testing.T) {
	repo, rc := newTestRepo(t)

	err := repo.Login(context.Background(), "alice", "pw", "not-a-key")
	assert.ErrorIs(t, err, ErrValidation)
	rc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginSurfacesUndecryptableRecords(t *testing.T) {
	repo, rc := newTestRepo(t)

	otherKey := bytes.Repeat([]byte{0x55}, 32)
	foreign, err := crypto.EncryptString(otherKey, "GitHub")
	require.NoError(t, err)

	rc.On("Login", mock.Anything, "alice", "pw").Return(&remote.AuthResult{UserID: 1, Username: "alice", Token: "tok"}, nil)
	rc.On("FetchRecords", mock.Anything).Return([]model.Record{{ID: 1, GroupID: 10, Title: foreign}}, nil)
	rc.On("FetchGroups", mock.Anything).Return([]model.Group{{ID: 10, Name: "Web"}}, nil)

	err = repo.Login(context.Background(), "alice", "pw", encodedKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyOrData)

	// The session and readable cache still stand; the broken record is
	// marked, not shown as ciphertext.
	_, ok := repo.Session().Current()
	assert.True(t, ok)
	got := repo.Cache().RecordsOf(10)
	require.Len(t, got, 1)
	assert.True(t, got[0].Corrupted)
	assert.Empty(t, got[0].Title)
}

func TestCreateRecordRemoteFirst(t *testing.T) {
	repo, rc := newTestRepo(t)
	loggedIn(t, repo, rc, nil, []model.Group{{ID: 10, Name: "Web"}})

	rc.On("CreateRecord", mock.Anything, mock.Anything).Return(model.Record{}, &remote.APIError{Status: 500, Reason: "boom"})

	_, err := repo.NewRecord(context.Background(), model.Record{GroupID: 10, Title: "Ghost", Username: "alice", Secret: "pw"})
	require.Error(t, err)

	// A failing network call must never leave a local-only ghost.
	for _, rec := range repo.Cache().AllRecords() {
		assert.NotEqual(t, "Ghost", rec.Title)
	}
	assert.Empty(t, repo.Cache().RecordsOf(10))
}

func TestCreateRecordEncryptsBeforeSend(t *testing.T) {
	repo, rc := newTestRepo(t)
	loggedIn(t, repo, rc, nil, []model.Group{{ID: 10, Name: "Web"}})

	var sent model.Record
	rc.On("CreateRecord", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(model.Record) }).
		Return(model.Record{ID: 42, GroupID: 10, UserID: 1, UpdatedAt: time.Now()}, nil)

	created, err := repo.NewRecord(context.Background(), model.Record{GroupID: 10, Title: "GitHub", Username: "alice", Secret: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)

	// Plaintext never crosses the remote boundary.
	assert.NotEqual(t, "GitHub", sent.Title)
	assert.NotEqual(t, "hunter2", sent.Secret)
	title, err := crypto.DecryptString(rawKey, sent.Title)
	require.NoError(t, err)
	assert.Equal(t, "GitHub", title)

	// The cache holds the plaintext under the server-assigned id.
	got, ok := repo.Cache().Record(42)
	require.True(t, ok)
	assert.Equal(t, "GitHub", got.Title)
	assert.Equal(t, "hunter2", got.Secret)
}

func TestValidationRejectedBeforeNetwork(t *testing.T) {
	repo, rc := newTestRepo(t)
	loggedIn(t, repo, rc, nil, nil)

	_, err := repo.NewRecord(context.Background(), model.Record{GroupID: 10, Title: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.NewRecord(context.Background(), model.Record{Title: "ok"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = repo.NewGroup(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrValidation)

	rc.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything)
	rc.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteGroupCascades(t *testing.T) {
	repo, rc := newTestRepo(t)

	records := []model.Record{
		sealed(t, model.Record{ID: 1, GroupID: 10, Title: "GitHub", Username: "alice"}),
		sealed(t, model.Record{ID: 2, GroupID: 20, Title: "Bank", Username: "carol"}),
	}
	loggedIn(t, repo, rc, records, []model.Group{{ID: 10, Name: "Web"}, {ID: 20, Name: "Finance"}})
	repo.Cache().SelectGroup(10)

	rc.On("DeleteGroup", mock.Anything, int64(10)).Return(nil)

	require.NoError(t, repo.DeleteGroup(context.Background(), 10))

	groups := repo.Cache().Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, int64(20), groups[0].ID)
	assert.Empty(t, repo.Cache().RecordsOf(10))
	assert.Len(t, repo.Cache().RecordsOf(20), 1)
	assert.Empty(t, repo.Cache().VisibleRecords(), "records view of the deleted selected group is cleared")
}

func TestDeleteGroupFailureLeavesCacheUntouched(t *testing.T) {
	repo, rc := newTestRepo(t)
	loggedIn(t, repo, rc,
		[]model.Record{sealed(t, model.Record{ID: 1, GroupID: 10, Title: "GitHub"})},
		[]model.Group{{ID: 10, Name: "Web"}})

	rc.On("DeleteGroup", mock.Anything, int64(10)).Return(remote.ErrNetwork)

	err := repo.DeleteGroup(context.Background(), 10)
	assert.ErrorIs(t, err, remote.ErrNetwork)
	assert.Len(t, repo.Cache().Groups(), 1)
	assert.Len(t, repo.Cache().RecordsOf(10), 1)
}

func TestSearchScenario(t *testing.T) {
	repo, rc := newTestRepo(t)

	records := []model.Record{
		sealed(t, model.Record{ID: 1, GroupID: 10, Title: "GitHub", Username: "alice", Secret: "s1"}),
		sealed(t, model.Record{ID: 2, GroupID: 10, Title: "Gmail", Username: "bob", Secret: "s2"}),
	}
	loggedIn(t, repo, rc, records, []model.Group{{ID: 10, Name: "Web"}})
	repo.Cache().SelectGroup(10)

	hits := repo.Search("it")
	require.Len(t, hits, 1)
	assert.Equal(t, "GitHub", hits[0].Title)

	visible := repo.Cache().VisibleRecords()
	require.Len(t, visible, 1)
	assert.Equal(t, "GitHub", visible[0].Title)

	// Usernames participate, case-insensitively.
	hits = repo.Search("BOB")
	require.Len(t, hits, 1)
	assert.Equal(t, "Gmail", hits[0].Title)

	// Secrets never match.
	assert.Empty(t, repo.Search("s1"))

	// Blank term restores the selected-group view.
	repo.Search("")
	assert.Len(t, repo.Cache().VisibleRecords(), 2)
}

func TestLogoutWipesEverything(t *testing.T) {
	repo, rc := newTestRepo(t)
	loggedIn(t, repo, rc,
		[]model.Record{sealed(t, model.Record{ID: 1, GroupID: 10, Title: "GitHub", Secret: "pw"})},
		[]model.Group{{ID: 10, Name: "Web"}})

	rc.On("SetToken", "").Return()

	repo.Logout()

	_, ok := repo.Session().Current()
	assert.False(t, ok)
	assert.Empty(t, repo.Cache().Groups())
	assert.Empty(t, repo.Cache().AllRecords())
	assert.Empty(t, repo.Cache().VisibleRecords())
	rc.AssertCalled(t, "SetToken", "")
}

func TestStaleSessionCompletionIsDropped(t *testing.T) {
	repo, rc := newTestRepo(t)
	loggedIn(t, repo, rc, nil, []model.Group{{ID: 10, Name: "Web"}})

	// The session is replaced while the create is in flight.
	rc.On("CreateGroup", mock.Anything, "Late", "").
		Run(func(mock.Arguments) { repo.Session().Clear() }).
		Return(model.Group{ID: 99, Name: "Late"}, nil)

	_, err := repo.NewGroup(context.Background(), "Late", "")
	assert.ErrorIs(t, err, ErrStaleSession)

	_, ok := repo.Cache().Group(99)
	assert.False(t, ok, "a stale completion must never reach the cache")
}

func TestUpdatesOnSameRecordAreSerialized(t *testing.T) {
	repo, rc := newTestRepo(t)
	loggedIn(t, repo, rc,
		[]model.Record{sealed(t, model.Record{ID: 1, GroupID: 10, Title: "GitHub", Username: "alice"})},
		[]model.Group{{ID: 10, Name: "Web"}})

	var inFlight, maxInFlight int32
	rc.On("UpdateRecord", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&maxInFlight)
				if n <= old || atomic.CompareAndSwapInt32(&maxInFlight, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}).
		Return(model.Record{ID: 1, GroupID: 10, UpdatedAt: time.Now()}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := repo.UpdateRecord(context.Background(), model.Record{ID: 1, GroupID: 10, Title: "GitHub", Note: "v"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight, "mutations on one record id must not overlap")
}

func TestRegisterGeneratesKeyWhenMissing(t *testing.T) {
	repo, rc := newTestRepo(t)

	rc.On("Register", mock.Anything, "alice", "pw").Return(&remote.AuthResult{UserID: 1, Username: "alice", Token: "tok"}, nil)
	rc.On("FetchRecords", mock.Anything).Return([]model.Record{}, nil)
	rc.On("FetchGroups", mock.Anything).Return([]model.Group{}, nil)

	key, err := repo.Register(context.Background(), "alice", "pw", "")
	require.NoError(t, err)

	decoded, err := crypto.DecodeKey(key)
	require.NoError(t, err)
	assert.Len(t, decoded, crypto.KeySize)

	s, ok := repo.Session().Current()
	require.True(t, ok)
	assert.Equal(t, decoded, s.SecretKey)
}

func TestRefreshRequiresSession(t *testing.T) {
	repo, _ := newTestRepo(t)
	assert.ErrorIs(t, repo.Refresh(context.Background()), ErrNotLoggedIn)
}
