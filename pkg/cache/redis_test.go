package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisClientDegradesToNil(t *testing.T) {
	assert.Nil(t, NewRedisClient(context.Background(), ""))
	assert.Nil(t, NewRedisClient(context.Background(), "::not a url::"))
	assert.Nil(t, NewRedisClient(context.Background(), "redis://127.0.0.1:1/0"))
}
