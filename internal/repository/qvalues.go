package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-rl/internal/qvalue"
)

var ErrQValuesNotFound = errors.New("q values not found")

// QValueRepository keeps named Q value tables, one redis hash per table.
type QValueRepository interface {
	Save(ctx context.Context, table string, store *qvalue.Store) error
	Load(ctx context.Context, table string, numActions int) (*qvalue.Store, error)
	Delete(ctx context.Context, table string) error
}

type dbQValues struct {
	client *redis.Client
}

func NewQValueRepository(client *redis.Client) QValueRepository {
	return &dbQValues{
		client: client,
	}
}

func tableKey(table string) string {
	return "qvalues:" + table
}

// Save replaces the table with the contents of store.
func (that *dbQValues) Save(ctx context.Context, table string, store *qvalue.Store) error {
	key := tableKey(table)

	fields := make(map[string]interface{}, store.Len())
	for _, state := range store.Keys() {
		values, _ := store.Get(state)
		fields[state] = qvalue.EncodeValues(values)
	}

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			pipe.HSet(ctx, key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save q values: %w", err)
	}

	return nil
}

func (that *dbQValues) Load(ctx context.Context, table string, numActions int) (*qvalue.Store, error) {
	fields, err := that.client.HGetAll(ctx, tableKey(table)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get q values: %w", err)
	}

	if len(fields) == 0 {
		return nil, ErrQValuesNotFound
	}

	store := qvalue.NewStore(numActions)
	for state, encoded := range fields {
		values, err := qvalue.DecodeValues(encoded, numActions)
		if err != nil {
			return nil, fmt.Errorf("failed to decode q values of %s: %w", state, err)
		}
		store.Set(state, values)
	}

	return store, nil
}

func (that *dbQValues) Delete(ctx context.Context, table string) error {
	if err := that.client.Del(ctx, tableKey(table)).Err(); err != nil {
		return fmt.Errorf("failed to delete q values: %w", err)
	}

	return nil
}
