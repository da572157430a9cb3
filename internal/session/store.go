package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps any failure to reach the session store.
var ErrUnavailable = errors.New("session store unavailable")

// Record is the server-side half of an issued token.
type Record struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	UserAgent string    `json:"user_agent,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists session records in Redis keyed by the hashed token id.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore wraps a Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

func sessionKey(id string) string {
	sum := sha256.Sum256([]byte(id))
	return "session:" + hex.EncodeToString(sum[:])
}

func userKey(userID int64) string {
	return "user_sessions:" + strconv.FormatInt(userID, 10)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Create stores a record that expires together with its token.
func (s *Store) Create(ctx context.Context, rec Record, ttl time.Duration) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	rec.ExpiresAt = rec.CreatedAt.Add(ttl)
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(rec.ID), payload, ttl)
	pipe.SAdd(ctx, userKey(rec.UserID), rec.ID)
	pipe.Expire(ctx, userKey(rec.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

// Get returns the live record for id. A missing, expired or unreadable session returns found=false.
func (s *Store) Get(ctx context.Context, id string) (Record, bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, unavailable(err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		// A corrupt record can never become valid again.
		s.client.Del(ctx, sessionKey(id))
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Exists reports whether the session id is live.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return n == 1, nil
}

// Revoke deletes one session.
func (s *Store) Revoke(ctx context.Context, userID int64, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userKey(userID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

// RevokeAll deletes every session of a user and reports how many were live.
func (s *Store) RevokeAll(ctx context.Context, userID int64) (int, error) {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	deleted, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	if err := s.client.Del(ctx, userKey(userID)).Err(); err != nil {
		return 0, unavailable(err)
	}
	return int(deleted), nil
}

// List returns the live sessions of a user, pruning ids whose record has expired.
func (s *Store) List(ctx context.Context, userID int64) ([]Record, error) {
	ids, err := s.client.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	out := []Record{}
	for _, id := range ids {
		rec, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.client.SRem(ctx, userKey(userID), id)
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
