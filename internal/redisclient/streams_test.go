package redisclient

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPublishAndReadStream(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	require.NoError(t, CreateConsumerGroup(ctx, client, "test:stream", "test-group"))

	payload := map[string]interface{}{"source_ip": "10.0.0.1"}
	id, err := PublishJSONToStream(ctx, client, "test:stream", payload)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	messages, err := ReadFromStream(ctx, client, "test:stream", "test-group", "consumer-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Equal(t, id, messages[0].ID)

	dataStr, ok := messages[0].Values["data"].(string)
	require.True(t, ok)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(dataStr), &decoded))
	assert.Equal(t, "10.0.0.1", decoded["source_ip"])

	require.NoError(t, AckMessage(ctx, client, "test:stream", "test-group", id))
}

func TestCreateConsumerGroup_Idempotent(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	require.NoError(t, CreateConsumerGroup(ctx, client, "test:stream", "test-group"))
	// 组已存在不报错
	require.NoError(t, CreateConsumerGroup(ctx, client, "test:stream", "test-group"))
}
