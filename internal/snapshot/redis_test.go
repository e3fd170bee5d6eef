package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cityboard-automation/internal/logger"
	"go-cityboard-automation/internal/models"
)

func TestRedisStore_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, logger.Discard())
	ctx := context.TODO()

	// Missing key
	mock.ExpectGet("snapshot:toronto:techto:jobs").RedisNil()
	records, err := s.Load(ctx, torontoJobs)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Stored snapshot
	mock.ExpectGet("snapshot:toronto:techto:jobs").SetVal(`[{"link":"a"},{"link":"b"}]`)
	records, err = s.Load(ctx, torontoJobs)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// Corrupt value is empty history, not an error
	mock.ExpectGet("snapshot:toronto:techto:jobs").SetVal(`not json`)
	records, err = s.Load(ctx, torontoJobs)
	require.NoError(t, err)
	assert.Empty(t, records)

	// Backend failure is a fault
	mock.ExpectGet("snapshot:toronto:techto:jobs").SetErr(errors.New("connection refused"))
	_, err = s.Load(ctx, torontoJobs)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis get snapshot")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Save(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, logger.Discard())
	ctx := context.TODO()
	records := []models.Record{{"link": "a"}}
	data, err := Encode(records)
	require.NoError(t, err)

	mock.ExpectSet("snapshot:toronto:techto:jobs", data, 0).SetVal("OK")
	assert.NoError(t, s.Save(ctx, torontoJobs, records))

	mock.ExpectSet("snapshot:toronto:techto:jobs", data, 0).SetErr(errors.New("READONLY"))
	err = s.Save(ctx, torontoJobs, records)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis set snapshot")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisKey_Legacy(t *testing.T) {
	assert.Equal(t, "snapshot:legacy:jobs.json", redisKey(models.Identity{Kind: models.KindJobs, File: "jobs.json"}))
}
