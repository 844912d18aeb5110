package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StreamAdder is the part of the Redis client the queue publisher needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Queue appends notifications to a Redis stream for the worker.
type Queue struct {
	client StreamAdder
	stream string
}

func NewQueue(client StreamAdder, stream string) *Queue {
	return &Queue{client: client, stream: stream}
}

func (q *Queue) Notify(ctx context.Context, msg Message) error {
	values, err := EncodeTask(EventCommentCreated, msg)
	if err != nil {
		return err
	}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// EncodeTask lays a message out as flat stream fields.
func EncodeTask(taskType string, msg Message) (map[string]interface{}, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return map[string]interface{}{
		"type":    taskType,
		"id":      msg.ID,
		"payload": string(raw),
	}, nil
}

// DecodeTask is the inverse of EncodeTask.
func DecodeTask(values map[string]interface{}) (string, Message, error) {
	taskType, _ := values["type"].(string)
	raw, ok := values["payload"].(string)
	if !ok {
		return taskType, Message{}, errors.New("missing payload field")
	}

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return taskType, Message{}, fmt.Errorf("decode notification: %w", err)
	}
	return taskType, msg, nil
}
