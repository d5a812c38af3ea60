package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// A key holds "LOCK:<fingerprint>" while its request runs and
// "RES:<fingerprint>:<payload>" once it finished. The fingerprint identifies
// the request body the key was first used with.
const (
	idemLock   = "LOCK:"
	idemResult = "RES:"
)

// IdempotencyStore remembers the response of a request made with an
// Idempotency-Key. A key is first locked with SetNX while the request runs,
// then overwritten with the serialized result.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

type idemEntry struct {
	fingerprint string
	payload     string
	done        bool
}

func parseIdemEntry(v string) idemEntry {
	if rest, ok := strings.CutPrefix(v, idemResult); ok {
		fp, payload, _ := strings.Cut(rest, ":")
		return idemEntry{fingerprint: fp, payload: payload, done: true}
	}
	return idemEntry{fingerprint: strings.TrimPrefix(v, idemLock)}
}

func (e idemEntry) state(fingerprint string) (IdemState, string) {
	switch {
	case e.fingerprint != fingerprint:
		return IdemMismatch, ""
	case e.done:
		return IdemReplay, e.payload
	default:
		return IdemInFlight, ""
	}
}

func (s *IdempotencyStore) get(ctx context.Context, key string) (idemEntry, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return idemEntry{}, false, nil
	}
	if err != nil {
		return idemEntry{}, false, err
	}

	return parseIdemEntry(v), true, nil
}

func (s *IdempotencyStore) AcquireLock(ctx context.Context, key, fingerprint string, lockTTL time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, idemLock+fingerprint, lockTTL).Result()
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key, fingerprint, jsonPayload string) error {
	val := idemResult + fingerprint + ":" + jsonPayload
	return s.rdb.Set(ctx, key, val, s.ttl).Err()
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

type IdemState int

const (
	// IdemAcquired means the caller owns the key and must either SaveResult
	// or Release it.
	IdemAcquired IdemState = iota
	// IdemReplay means a stored result was found and is returned.
	IdemReplay
	// IdemInFlight means another request holds the lock.
	IdemInFlight
	// IdemMismatch means the key was first used with a different request.
	IdemMismatch
)

// Begin replays a stored result or takes the lock for key. fingerprint must
// be stable for equal requests.
func (s *IdempotencyStore) Begin(ctx context.Context, key, fingerprint string, lockTTL time.Duration) (IdemState, string, error) {
	e, found, err := s.get(ctx, key)
	if err != nil {
		return IdemInFlight, "", err
	}
	if found {
		state, payload := e.state(fingerprint)
		return state, payload, nil
	}

	locked, err := s.AcquireLock(ctx, key, fingerprint, lockTTL)
	if err != nil {
		return IdemInFlight, "", err
	}
	if locked {
		return IdemAcquired, "", nil
	}

	// lost the race; the winner may already have finished
	if e, found, err := s.get(ctx, key); err == nil && found {
		state, payload := e.state(fingerprint)
		return state, payload, nil
	}

	return IdemInFlight, "", nil
}
