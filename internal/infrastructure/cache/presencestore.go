package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/helpdesk-inc/helpdesk/internal/application/broadcast"
)

const (
	// PresencePrefix is the Redis key prefix for presence channel membership
	PresencePrefix = "helpdesk:presence:"
	// PresenceTTL bounds how long membership of a crashed instance survives
	PresenceTTL = 24 * time.Hour
)

// joinScript records a socket and reports 1 when it is the user's first socket on the channel.
var joinScript = redis.NewScript(`
local uid = ARGV[2]
local first = 1
for _, v in ipairs(redis.call('HVALS', KEYS[2])) do
	if v == uid then first = 0 break end
end
redis.call('HSET', KEYS[1], uid, ARGV[3])
redis.call('HSET', KEYS[2], ARGV[1], uid)
redis.call('EXPIRE', KEYS[1], ARGV[4])
redis.call('EXPIRE', KEYS[2], ARGV[4])
return first
`)

// leaveScript forgets a socket and reports 1 when it was the user's last one. Unknown sockets
// return -1.
var leaveScript = redis.NewScript(`
local uid = redis.call('HGET', KEYS[2], ARGV[1])
if not uid then return -1 end
redis.call('HDEL', KEYS[2], ARGV[1])
for _, v in ipairs(redis.call('HVALS', KEYS[2])) do
	if v == uid then return 0 end
end
redis.call('HDEL', KEYS[1], uid)
return 1
`)

// RedisPresenceStore tracks who is subscribed to presence channels across gateway instances.
// A user with several sockets on one channel counts as one member.
type RedisPresenceStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisPresenceStore(client *redis.Client) *RedisPresenceStore {
	return &RedisPresenceStore{
		client: client,
		prefix: PresencePrefix,
		ttl:    PresenceTTL,
	}
}

// Join adds socketID as member on channel. first is true when the user was not present before.
func (s *RedisPresenceStore) Join(ctx context.Context, channel, socketID string, member broadcast.PresenceMember) (bool, error) {
	if socketID == "" {
		return false, errors.New("socket id cannot be empty")
	}

	data, err := json.Marshal(member)
	if err != nil {
		return false, fmt.Errorf("failed to marshal presence member: %w", err)
	}

	first, err := joinScript.Run(ctx, s.client,
		[]string{s.membersKey(channel), s.socketsKey(channel)},
		socketID, strconv.FormatUint(uint64(member.ID), 10), data, int(s.ttl.Seconds()),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to join presence channel %s: %w", channel, err)
	}
	return first == 1, nil
}

// Leave removes socketID from channel. last is true when the user has no sockets left there.
func (s *RedisPresenceStore) Leave(ctx context.Context, channel, socketID string) (bool, error) {
	res, err := leaveScript.Run(ctx, s.client,
		[]string{s.membersKey(channel), s.socketsKey(channel)},
		socketID,
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to leave presence channel %s: %w", channel, err)
	}
	return res == 1, nil
}

// Members lists the distinct users present on channel ordered by id.
func (s *RedisPresenceStore) Members(ctx context.Context, channel string) ([]broadcast.PresenceMember, error) {
	raw, err := s.client.HGetAll(ctx, s.membersKey(channel)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read presence members: %w", err)
	}

	members := make([]broadcast.PresenceMember, 0, len(raw))
	for _, v := range raw {
		var m broadcast.PresenceMember
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			continue
		}
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (s *RedisPresenceStore) membersKey(channel string) string {
	return s.prefix + channel
}

func (s *RedisPresenceStore) socketsKey(channel string) string {
	return s.prefix + channel + ":sockets"
}
