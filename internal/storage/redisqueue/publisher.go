package redisqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"linkedin-jobs-scraper/internal/scraper"
	"linkedin-jobs-scraper/internal/storage"
)

const DefaultQueue = "jobs:listings"

// Message is the queue payload: one listing plus where it was found.
type Message struct {
	Source  string                `json:"source"`
	Listing scraper.ListingRecord `json:"listing"`
}

// Publisher pushes listings onto a Redis list for downstream workers.
type Publisher struct {
	client    *redis.Client
	queueName string
}

var _ storage.Sink = (*Publisher)(nil)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func NewPublisher(client *redis.Client, queueName string) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Publisher{
		client:    client,
		queueName: queueName,
	}
}

func encode(source string, rec scraper.ListingRecord) ([]byte, error) {
	data, err := json.Marshal(Message{Source: source, Listing: rec})
	if err != nil {
		return nil, fmt.Errorf("marshal listing %s: %w", rec.ID, err)
	}
	return data, nil
}

// Save pushes the batch in one pipeline, preserving record order for RPOP consumers.
func (p *Publisher) Save(ctx context.Context, batch storage.Batch) (storage.SaveResult, error) {
	if len(batch.Records) == 0 {
		return storage.SaveResult{}, nil
	}

	pipe := p.client.Pipeline()
	for _, rec := range batch.Records {
		data, err := encode(batch.SourceURL, rec)
		if err != nil {
			return storage.SaveResult{}, err
		}
		pipe.LPush(ctx, p.queueName, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return storage.SaveResult{}, fmt.Errorf("pipeline exec: %w", err)
	}

	return storage.SaveResult{Inserted: len(batch.Records)}, nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
