package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func roundTrip(t *testing.T, q Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	for _, typ := range []string{"first", "second"} {
		if err := q.Publish(ctx, Message{Type: typ, Body: json.RawMessage(`{"n":1}`)}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	for _, want := range []string{"first", "second"} {
		select {
		case msg := <-msgs:
			if msg.Type != want || string(msg.Body) != `{"n":1}` {
				t.Fatalf("got %s %s, want %s", msg.Type, msg.Body, want)
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestInMemory(t *testing.T) {
	roundTrip(t, NewInMemory(4))
}

func TestRedisQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	q := NewRedisQueue(client, "")
	q.timeout = 100 * time.Millisecond
	roundTrip(t, q)
}

func TestRedisQueueDropsGarbage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := mr.Lpush(DefaultKey, "not json"); err != nil {
		t.Fatal(err)
	}
	q := NewRedisQueue(client, "")
	q.timeout = 100 * time.Millisecond
	if err := q.Publish(ctx, Message{Type: "ok", Body: json.RawMessage(`{}`)}); err != nil {
		t.Fatal(err)
	}

	msgs, _ := q.Consume(ctx)
	select {
	case msg := <-msgs:
		if msg.Type != "ok" {
			t.Fatalf("got %q, want ok", msg.Type)
		}
	case <-ctx.Done():
		t.Fatal("timed out")
	}
}
