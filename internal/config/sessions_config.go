package config

import (
	"strconv"
	"time"
)

const (
	redisAddressVar  = "REDIS_ADDRESS"
	redisPasswordVar = "REDIS_PASSWORD"
	redisDBVar       = "REDIS_DB"
)

// SessionConfig selects the backing for the handshake session store. An empty
// Redis address means the in-memory store.
type SessionConfig interface {
	GetSessionMaxAge() time.Duration
	GetRedisAddress() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

// GetSessionMaxAge bounds how long a handshake may sit between its first and
// second leg before the stored request token is considered stale.
func (Sessions) GetSessionMaxAge() time.Duration {
	return 15 * time.Minute
}

func (Sessions) GetRedisAddress() string {
	return GetEnv(redisAddressVar, "")
}

func (Sessions) GetRedisPassword() string {
	return GetEnv(redisPasswordVar, "")
}

func (Sessions) GetRedisDB() int {
	db, err := strconv.Atoi(GetEnv(redisDBVar, "0"))
	if err != nil {
		return 0
	}
	return db
}
