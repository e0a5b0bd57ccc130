package queue

import (
	"testing"
	"time"
)

func TestInMemoryQueuePublishSubscribe(t *testing.T) {
	q := NewInMemoryQueue()

	received := make(chan any, 1)
	q.Subscribe("test_topic", func(payload any) error {
		received <- payload
		return nil
	})

	if err := q.Publish("test_topic", ActivationEvent{CampaignID: 9}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case payload := <-received:
		ev, ok := payload.(ActivationEvent)
		if !ok {
			t.Fatalf("unexpected payload type %T", payload)
		}
		if ev.CampaignID != 9 {
			t.Errorf("expected campaign 9, got %d", ev.CampaignID)
		}
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

func TestInMemoryQueuePublishWithoutSubscribers(t *testing.T) {
	q := NewInMemoryQueue()
	if err := q.Publish("empty_topic", "message"); err == nil {
		t.Fatal("expected error when publishing to a topic with no subscribers")
	}
}

func TestInMemoryQueueMultipleSubscribers(t *testing.T) {
	q := NewInMemoryQueue()

	first := make(chan any, 1)
	second := make(chan any, 1)
	q.Subscribe("topic", func(payload any) error {
		first <- payload
		return nil
	})
	q.Subscribe("topic", func(payload any) error {
		second <- payload
		return nil
	})

	if err := q.Publish("topic", "hello"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	for i, ch := range []chan any{first, second} {
		select {
		case payload := <-ch:
			if payload != "hello" {
				t.Errorf("subscriber %d: unexpected payload %v", i, payload)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never invoked", i)
		}
	}
}
