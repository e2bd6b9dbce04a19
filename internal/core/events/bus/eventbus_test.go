package bus

import (
	"errors"
	"testing"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ int64) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	sub, err := b.Subscribe("body.rest", func(e Event) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub.ID() == "" || sub.EventType() != "body.rest" || !sub.IsActive() {
		t.Fatalf("unexpected subscription: %q %q %v", sub.ID(), sub.EventType(), sub.IsActive())
	}
	if err = b.Publish(NewEvent("body.rest", "engine", 7)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got == nil || got.Data() != 7 || got.Source() != "engine" {
		t.Fatalf("handler not called with event: %#v", got)
	}
}

func TestDeliveryOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		_, _ = b.Subscribe("tick", func(Event) error {
			order = append(order, i)
			return nil
		})
	}
	for _i := 0; _i < 3; _i++ {
		order = order[:0]
		_ = b.Publish(NewEvent("tick", "test", nil))
		for i, v := range order {
			if v != i {
				t.Fatalf("handlers out of order: %v", order)
			}
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, _ := b.Subscribe("e", func(Event) error { calls++; return nil })
	if !b.HasSubscribers("e") {
		t.Fatal("expected subscribers")
	}
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := sub.Cancel(); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
	_ = b.Publish(NewEvent("e", "s", nil))
	if calls != 0 || sub.IsActive() || b.HasSubscribers("e") {
		t.Fatalf("handler still registered: calls=%d active=%v", calls, sub.IsActive())
	}
}

func TestCancelDuringDelivery(t *testing.T) {
	b := New()
	calls := 0
	var second Subscription
	_, _ = b.Subscribe("e", func(Event) error {
		return second.Cancel()
	})
	second, _ = b.Subscribe("e", func(Event) error { calls++; return nil })

	if err := b.Publish(NewEvent("e", "s", nil)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if calls != 0 {
		t.Fatalf("cancelled handler was called")
	}
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA, errB := errors.New("a"), errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors, got %v", err)
	}

	err = b.PublishBatch(NewEvent("x", "src", nil), NewEvent("y", "src", nil))
	if !errors.Is(err, errA) {
		t.Fatalf("batch lost error: %v", err)
	}

	if _, err = b.Subscribe("x", nil); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	// without observer, metrics should remain zero despite activity
	_, _ = b.Subscribe("e", func(e Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	if m.Published != 0 || m.DeliveredHandlers != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	m2 := b.GetMetrics()
	if m2.Published != 1 || m2.DeliveredHandlers != 1 || m2.SubscribersActive != 1 {
		t.Fatalf("metrics should update with observer: %+v", m2)
	}
	if obs.publishCount != 1 || obs.deliveredCount != 1 {
		t.Fatalf("observer not called: %+v", obs)
	}

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	if obs.publishCount != 1 {
		t.Fatalf("removed observer still notified")
	}
}
