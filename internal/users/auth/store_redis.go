// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/storefront/internal/platform/constants"
)

// # Redis Credential Store

// RedisCredentialStore implements [CredentialStore] on Redis.
//
// # Layout
//
//   - auth:credential:<type>:<owner>:<hash> holds the JSON record, expiring
//     shortly after the credential does.
//   - auth:credential_index:<owner>:<type> is the set of record keys used by
//     Purge. It expires with the longest-lived record it indexes.
type RedisCredentialStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisCredentialStore creates a Redis-backed [CredentialStore].
func NewRedisCredentialStore(client redis.UniversalClient) *RedisCredentialStore {
	return &RedisCredentialStore{client: client, now: time.Now}
}

// issueScript writes the record, indexes it and extends the index TTL to
// cover the new record. The index TTL never shrinks.
//
// KEYS[1] record key, KEYS[2] index key; ARGV[1] payload, ARGV[2] TTL in ms.
var issueScript = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
redis.call('SADD', KEYS[2], KEYS[1])
local ttl = tonumber(ARGV[2])
if redis.call('PTTL', KEYS[2]) < ttl then
	redis.call('PEXPIRE', KEYS[2], ttl)
end
return 1
`)

func recordKey(tokenType TokenType, userID, tokenHash string) string {
	return fmt.Sprintf("%s%s:%s:%s", constants.RedisPrefixCredential, tokenType, userID, tokenHash)
}

func indexKey(userID string, tokenType TokenType) string {
	return fmt.Sprintf("%s%s:%s", constants.RedisPrefixCredentialIndex, userID, tokenType)
}

/*
Issue stores the credential record and adds it to the owner's index.

Parameters:
  - context: context.Context
  - credential: *Credential

Returns:
  - error: Encoding or execution errors
*/
func (store *RedisCredentialStore) Issue(context context.Context, credential *Credential) error {
	payload, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("redis_credential_encode_failed: %w", err)
	}

	ttl := credential.ExpiresAt.Sub(store.now())
	if ttl < 0 {
		ttl = 0
	}
	ttl += redisRecordGrace

	keys := []string{
		recordKey(credential.Type, credential.UserID, credential.TokenHash),
		indexKey(credential.UserID, credential.Type),
	}
	if err := issueScript.Run(context, store.client, keys, payload, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis_credential_issue_failed: %w", err)
	}

	return nil
}

// FindActive returns the non-revoked record stored under the exact triple.
func (store *RedisCredentialStore) FindActive(context context.Context, tokenHash string, tokenType TokenType, userID string) (*Credential, error) {
	payload, err := store.client.Get(context, recordKey(tokenType, userID, tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("redis_credential_get_failed: %w", err)
	}

	credential := &Credential{}
	if err := json.Unmarshal(payload, credential); err != nil {
		return nil, fmt.Errorf("redis_credential_decode_failed: %w", err)
	}

	if credential.Revoked {
		return nil, ErrCredentialNotFound
	}

	return credential, nil
}

// Purge deletes every indexed record of tokenType owned by userID.
func (store *RedisCredentialStore) Purge(context context.Context, userID string, tokenType TokenType) error {
	index := indexKey(userID, tokenType)

	keys, err := store.client.SMembers(context, index).Result()
	if err != nil {
		return fmt.Errorf("redis_credential_index_read_failed: %w", err)
	}

	_, err = store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			pipe.Del(context, keys...)
			members := make([]any, len(keys))
			for i, key := range keys {
				members[i] = key
			}
			pipe.SRem(context, index, members...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_credential_purge_failed: %w", err)
	}

	return nil
}

// Delete removes one record. Exactly one caller sees a successful delete.
func (store *RedisCredentialStore) Delete(context context.Context, userID, tokenHash string, tokenType TokenType) error {
	key := recordKey(tokenType, userID, tokenHash)

	removed, err := store.client.Del(context, key).Result()
	if err != nil {
		return fmt.Errorf("redis_credential_delete_failed: %w", err)
	}

	if err := store.client.SRem(context, indexKey(userID, tokenType), key).Err(); err != nil {
		return fmt.Errorf("redis_credential_index_update_failed: %w", err)
	}

	if removed == 0 {
		return ErrCredentialNotFound
	}

	return nil
}
