package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/repository/redis"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	released      []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func newTestIdempotency(store *fakeIdempotencyStore) *IdempotencyMiddleware {
	return NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())
}

func TestIdempotencyMiddleware_StoreErrorFailsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := newTestIdempotency(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-err")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	var updated bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}
	mw := newTestIdempotency(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-fail")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})).ServeHTTP(rr, req)

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if len(store.released) != 1 {
		t.Fatalf("expected key to be released, got %v", store.released)
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatalf("store should not be consulted for GET")
			return false, nil, nil
		},
	}
	mw := newTestIdempotency(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/statements", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-get")
	rr := httptest.NewRecorder()

	called := false
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_ReturnsCachedResponse(t *testing.T) {
	replays := 0
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(`{"cached":true}`), nil
		},
	}
	mw := newTestIdempotency(store).OnReplay(func() { replays++ })

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-123")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called when cached response exists")
	})).ServeHTTP(rr, req)

	if rr.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected %s header to be set", IdempotencyReplayHeader)
	}

	if got := rr.Body.String(); got != `{"cached":true}` {
		t.Fatalf("unexpected cached body: %s", got)
	}

	if replays != 1 {
		t.Fatalf("expected replay callback once, got %d", replays)
	}
}

func TestIdempotencyMiddleware_PendingKeyConflicts(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(usecase.IdempotencyPending), nil
		},
	}
	mw := newTestIdempotency(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-busy")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run while the key is in progress")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	var updatedBody []byte
	var ttlSeen time.Duration
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updatedBody = append([]byte(nil), response...)
			ttlSeen = ttl
			return nil
		},
	}
	mw := newTestIdempotency(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-456")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}

	var stored storedResponse
	if err := json.Unmarshal(updatedBody, &stored); err != nil {
		t.Fatalf("stored value is not a response envelope: %v", err)
	}
	if stored.Status != http.StatusCreated || string(stored.Body) != `{"ok":true}` {
		t.Fatalf("unexpected stored response: status=%d body=%s", stored.Status, stored.Body)
	}

	if ttlSeen != time.Hour {
		t.Fatalf("expected configured ttl, got %v", ttlSeen)
	}
}

func TestIdempotencyMiddleware_ScopesKeysPerUser(t *testing.T) {
	var keys []string
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			keys = append(keys, key)
			return false, nil, nil
		},
	}
	mw := newTestIdempotency(store)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	for _, userID := range []string{"alice", "bob"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil)
		req.Header.Set(IdempotencyKeyHeader, "same-key")
		req = req.WithContext(WithUser(req.Context(), &domain.User{ID: userID}))
		mw.Wrap(next).ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(keys) != 2 || keys[0] == keys[1] {
		t.Fatalf("expected distinct per-user keys, got %v", keys)
	}
	if !strings.HasPrefix(keys[0], "alice:") || !strings.HasSuffix(keys[0], ":same-key") {
		t.Fatalf("unexpected key layout: %s", keys[0])
	}
}

func newRedisIdempotency(t *testing.T) (*IdempotencyMiddleware, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewIdempotencyMiddleware(redis.NewIdempotencyStore(client), 24*time.Hour, zerolog.Nop()), mr
}

func TestIdempotencyMiddleware_CancelledRequestCanBeRetried(t *testing.T) {
	mw, mr := newRedisIdempotency(t)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			// The client goes away while the upload is processed.
			cancel()
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil).WithContext(ctx)
	first.Header.Set(IdempotencyKeyHeader, "k1")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	if mr.Exists("fintrack:idempotency:anonymous:POST:/api/v1/statements:k1") {
		t.Fatalf("expected key to be released after a failed cancelled request")
	}

	retry := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil)
	retry.Header.Set(IdempotencyKeyHeader, "k1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, retry)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected retry to run the handler, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_CancelledHandlerOutcomeIsStored(t *testing.T) {
	mw, mr := newRedisIdempotency(t)

	ctx, cancel := context.WithCancel(context.Background())
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"s1"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil).WithContext(ctx)
	req.Header.Set(IdempotencyKeyHeader, "k2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	key := "fintrack:idempotency:anonymous:POST:/api/v1/statements:k2"
	if ttl := mr.TTL(key); ttl != 24*time.Hour {
		t.Fatalf("expected completed response to be kept for the full ttl, got %v", ttl)
	}

	replay := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil)
	replay.Header.Set(IdempotencyKeyHeader, "k2")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, replay)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected replay with original status 201, got %d", rr.Code)
	}
	if rr.Header().Get(IdempotencyReplayHeader) != "true" || rr.Body.String() != `{"id":"s1"}` {
		t.Fatalf("unexpected replay: header=%q body=%s", rr.Header().Get(IdempotencyReplayHeader), rr.Body.String())
	}
}

func TestIdempotencyMiddleware_PanicReleasesKey(t *testing.T) {
	mw, mr := newRedisIdempotency(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil)
	req.Header.Set(IdempotencyKeyHeader, "k3")

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})).ServeHTTP(httptest.NewRecorder(), req)
	}()

	if mr.Exists("fintrack:idempotency:anonymous:POST:/api/v1/statements:k3") {
		t.Fatalf("expected key to be released after panic")
	}
}

func TestIdempotencyMiddleware_PendingClaimUsesShortTTL(t *testing.T) {
	mw, mr := newRedisIdempotency(t)
	key := "fintrack:idempotency:anonymous:POST:/api/v1/statements:k4"

	var pendingTTL time.Duration
	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements", nil)
	req.Header.Set(IdempotencyKeyHeader, "k4")
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pendingTTL = mr.TTL(key)
		w.WriteHeader(http.StatusCreated)
	})).ServeHTTP(httptest.NewRecorder(), req)

	if pendingTTL != defaultPendingTTL {
		t.Fatalf("expected pending claim ttl %v, got %v", defaultPendingTTL, pendingTTL)
	}
}
