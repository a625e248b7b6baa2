// Package repository orchestrates the remote server, the cipher and the
// record cache. Every mutating use case follows the same network-first
// pattern: call the server, and only after it acknowledges apply the
// equivalent cache mutation. The cache is volatile and rebuilt on every
// login; it must never represent a state the server has not durably
// stored, so a failing call leaves it untouched and is never retried
// here.
//
// The encryption boundary also lives here: plaintext record fields are
// encrypted with the session key before they are handed to the remote
// client, and decrypted immediately after a fetch, before they enter
// the cache. Plaintext never crosses the remote boundary.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"

	"passkeeper/internal/app/client/cache"
	"passkeeper/internal/app/client/crypto"
	"passkeeper/internal/app/client/remote"
	"passkeeper/internal/app/client/session"
	"passkeeper/internal/model"
)

var (
	// ErrValidation rejects a request before any network call is made.
	ErrValidation = errors.New("repository: validation failed")

	// ErrNotLoggedIn is returned when an operation needs an
	// authenticated session and there is none.
	ErrNotLoggedIn = errors.New("repository: not logged in")

	// ErrStaleSession marks a completion that arrived after the session
	// it belonged to was replaced. The result is dropped, never applied.
	ErrStaleSession = errors.New("repository: session replaced while request was in flight")
)

// Repository keeps cache, server and key material consistent under
// concurrent user actions.
type Repository struct {
	remote  remote.Client
	cache   *cache.Cache
	session *session.Manager
	log     *slog.Logger
	locks   *keyedLocks
}

// New wires a Repository. The cache and session manager are injected so
// tests can run against isolated instances.
func New(rc remote.Client, c *cache.Cache, sm *session.Manager, log *slog.Logger) *Repository {
	return &Repository{
		remote:  rc,
		cache:   c,
		session: sm,
		log:     log,
		locks:   newKeyedLocks(),
	}
}

// Cache exposes the cache views for rendering.
func (r *Repository) Cache() *cache.Cache { return r.cache }

// Session exposes the session manager.
func (r *Repository) Session() *session.Manager { return r.session }

// Login authenticates with username and password, then rebuilds the
// cache: set session, fetch and decrypt all records, fetch groups, in
// that order. secretKey is the user-held base64 key; the server never
// sees it.
//
// A non-nil error wrapping crypto.ErrInvalidKeyOrData with an
// authenticated session afterwards means some records could not be
// decrypted with the supplied key; the session and the readable part of
// the cache are still in place.
func (r *Repository) Login(ctx context.Context, username, password, secretKey string) error {
	key, err := crypto.DecodeKey(secretKey)
	if err != nil {
		return fmt.Errorf("%w: secret key: %v", ErrValidation, err)
	}
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	res, err := r.remote.Login(ctx, username, password)
	if err != nil {
		return err
	}

	return r.establish(ctx, res, key)
}

// LoginWithToken performs a silent login with a saved token.
func (r *Repository) LoginWithToken(ctx context.Context, token, secretKey string) error {
	key, err := crypto.DecodeKey(secretKey)
	if err != nil {
		return fmt.Errorf("%w: secret key: %v", ErrValidation, err)
	}
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}

	res, err := r.remote.LoginWithToken(ctx, token)
	if err != nil {
		return err
	}

	return r.establish(ctx, res, key)
}

// Register creates an account and logs in. When secretKey is empty a
// fresh random key is generated; the encoded key in use is returned so
// the caller can show or persist it. A lost key makes stored records
// permanently unreadable.
func (r *Repository) Register(ctx context.Context, username, password, secretKey string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	if secretKey == "" {
		generated, err := crypto.GenerateKey()
		if err != nil {
			return "", err
		}
		secretKey = generated
	}

	key, err := crypto.DecodeKey(secretKey)
	if err != nil {
		return "", fmt.Errorf("%w: secret key: %v", ErrValidation, err)
	}

	res, err := r.remote.Register(ctx, username, password)
	if err != nil {
		return "", err
	}

	if err := r.establish(ctx, res, key); err != nil {
		return "", err
	}
	return secretKey, nil
}

// establish installs the session and rebuilds the cache from the
// server. The fetches are tagged with the new epoch so a concurrent
// re-login drops them.
func (r *Repository) establish(ctx context.Context, res *remote.AuthResult, key []byte) error {
	r.session.Set(session.Session{
		UserID:    res.UserID,
		Username:  res.Username,
		Token:     res.Token,
		SecretKey: key,
	})

	return r.Refresh(ctx)
}

// Refresh re-fetches the full record set and the groups into the cache.
func (r *Repository) Refresh(ctx context.Context) error {
	s, ok := r.session.Current()
	if !ok {
		return ErrNotLoggedIn
	}
	epoch := r.session.Epoch()

	records, err := r.remote.FetchRecords(ctx)
	if err != nil {
		return err
	}
	groups, err := r.remote.FetchGroups(ctx)
	if err != nil {
		return err
	}

	if r.session.Epoch() != epoch {
		return ErrStaleSession
	}

	decryptErr := r.cache.ReplaceAll(records, s.SecretKey)
	r.cache.SetGroups(groups)

	if decryptErr != nil {
		r.log.Warn("some records could not be decrypted", "error", decryptErr)
		return fmt.Errorf("cannot decrypt some records: %w", decryptErr)
	}
	return nil
}

// Logout clears the session and wipes the cache in one logical
// transaction, so no decrypted data of the previous user stays
// resident.
func (r *Repository) Logout() {
	r.session.Clear()
	r.cache.Wipe()
	r.remote.SetToken("")
}

// NewGroup creates a group on the server and, once the server has
// assigned its id, inserts it into the cache.
func (r *Repository) NewGroup(ctx context.Context, name, comment string) (model.Group, error) {
	if strings.TrimSpace(name) == "" {
		return model.Group{}, fmt.Errorf("%w: group name is required", ErrValidation)
	}
	if _, ok := r.session.Current(); !ok {
		return model.Group{}, ErrNotLoggedIn
	}
	epoch := r.session.Epoch()

	created, err := r.remote.CreateGroup(ctx, name, comment)
	if err != nil {
		return model.Group{}, err
	}
	if r.session.Epoch() != epoch {
		return model.Group{}, ErrStaleSession
	}

	r.cache.AddGroup(created)
	return created, nil
}

// RenameGroup updates a group's name and comment, server first.
func (r *Repository) RenameGroup(ctx context.Context, id int64, name, comment string) (model.Group, error) {
	if strings.TrimSpace(name) == "" {
		return model.Group{}, fmt.Errorf("%w: group name is required", ErrValidation)
	}
	if _, ok := r.session.Current(); !ok {
		return model.Group{}, ErrNotLoggedIn
	}

	release := r.locks.acquire(groupKey(id))
	defer release()
	epoch := r.session.Epoch()

	updated, err := r.remote.UpdateGroup(ctx, id, name, comment)
	if err != nil {
		return model.Group{}, err
	}
	if r.session.Epoch() != epoch {
		return model.Group{}, ErrStaleSession
	}

	// A cache miss here is a benign race with a background refresh; the
	// server state is authoritative either way.
	if g, ok := r.cache.RenameGroup(id, updated.Name, updated.Comment); ok {
		return g, nil
	}
	return updated, nil
}

// DeleteGroup deletes a group on the server, then cascade-removes it
// and all its records from the cache.
func (r *Repository) DeleteGroup(ctx context.Context, id int64) error {
	if _, ok := r.session.Current(); !ok {
		return ErrNotLoggedIn
	}

	release := r.locks.acquire(groupKey(id))
	defer release()
	epoch := r.session.Epoch()

	if err := r.remote.DeleteGroup(ctx, id); err != nil {
		return err
	}
	if r.session.Epoch() != epoch {
		return ErrStaleSession
	}

	r.cache.RemoveGroup(id)
	return nil
}

// NewRecord encrypts the plaintext fields of rec with the session key,
// creates the record on the server and inserts the plaintext version
// into the cache under the server-assigned id.
func (r *Repository) NewRecord(ctx context.Context, rec model.Record) (model.Record, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return model.Record{}, fmt.Errorf("%w: record title is required", ErrValidation)
	}
	if rec.GroupID == 0 {
		return model.Record{}, fmt.Errorf("%w: record must belong to a group", ErrValidation)
	}
	s, ok := r.session.Current()
	if !ok {
		return model.Record{}, ErrNotLoggedIn
	}
	epoch := r.session.Epoch()

	sealed, err := encryptRecord(rec, s.SecretKey)
	if err != nil {
		return model.Record{}, err
	}

	created, err := r.remote.CreateRecord(ctx, sealed)
	if err != nil {
		return model.Record{}, err
	}
	if r.session.Epoch() != epoch {
		return model.Record{}, ErrStaleSession
	}

	rec.ID = created.ID
	rec.UserID = created.UserID
	rec.UpdatedAt = created.UpdatedAt
	r.cache.AddRecord(rec)
	return rec, nil
}

// UpdateRecord rewrites a record's fields, server first. The record
// keeps its group.
func (r *Repository) UpdateRecord(ctx context.Context, rec model.Record) (model.Record, error) {
	if strings.TrimSpace(rec.Title) == "" {
		return model.Record{}, fmt.Errorf("%w: record title is required", ErrValidation)
	}
	s, ok := r.session.Current()
	if !ok {
		return model.Record{}, ErrNotLoggedIn
	}

	release := r.locks.acquire(recordKey(rec.ID))
	defer release()
	epoch := r.session.Epoch()

	sealed, err := encryptRecord(rec, s.SecretKey)
	if err != nil {
		return model.Record{}, err
	}

	updated, err := r.remote.UpdateRecord(ctx, sealed)
	if err != nil {
		return model.Record{}, err
	}
	if r.session.Epoch() != epoch {
		return model.Record{}, ErrStaleSession
	}

	rec.UpdatedAt = updated.UpdatedAt
	if applied, ok := r.cache.UpdateRecord(rec); ok {
		return applied, nil
	}
	return rec, nil
}

// DeleteRecord deletes a record on the server, then drops it from the
// cache.
func (r *Repository) DeleteRecord(ctx context.Context, id int64) error {
	if _, ok := r.session.Current(); !ok {
		return ErrNotLoggedIn
	}

	release := r.locks.acquire(recordKey(id))
	defer release()
	epoch := r.session.Epoch()

	if err := r.remote.DeleteRecord(ctx, id); err != nil {
		return err
	}
	if r.session.Epoch() != epoch {
		return ErrStaleSession
	}

	r.cache.RemoveRecord(id)
	return nil
}

// Search runs a local, case-insensitive substring match of term against
// the decrypted title and username of every cached record and publishes
// the hits as the records view. Secret and note never participate, so
// sensitive values cannot surface through search results. A blank term
// clears the search and falls back to per-group browsing.
func (r *Repository) Search(term string) []model.Record {
	term = strings.TrimSpace(term)
	if term == "" {
		r.cache.ClearSearch()
		return nil
	}

	needle := strings.ToLower(term)
	var hits []model.Record
	for _, rec := range r.cache.AllRecords() {
		if strings.Contains(strings.ToLower(rec.Title), needle) ||
			strings.Contains(strings.ToLower(rec.Username), needle) {
			hits = append(hits, rec)
		}
	}

	r.cache.SetSearchResults(hits)
	return hits
}

func encryptRecord(rec model.Record, key []byte) (model.Record, error) {
	var err error
	if rec.Title, err = crypto.EncryptString(key, rec.Title); err != nil {
		return model.Record{}, err
	}
	if rec.Username, err = crypto.EncryptString(key, rec.Username); err != nil {
		return model.Record{}, err
	}
	if rec.Secret, err = crypto.EncryptString(key, rec.Secret); err != nil {
		return model.Record{}, err
	}
	return rec, nil
}

func groupKey(id int64) string  { return fmt.Sprintf("g:%d", id) }
func recordKey(id int64) string { return fmt.Sprintf("r:%d", id) }
