package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestBackoffWithJitter(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		exp := min << uint(attempt-1)
		if exp > max {
			exp = max
		}
		if d > exp || d < exp/2 {
			t.Fatalf("attempt %d: backoff %v outside [%v, %v]", attempt, d, exp/2, exp)
		}
	}
	if d := backoffWithJitter(time.Millisecond, time.Second, 100); d > time.Second {
		t.Fatalf("backoff not capped: %v", d)
	}
}

func TestPermanent(t *testing.T) {
	base := errors.New("bad payload")
	err := Permanent(base)
	if !IsPermanent(err) || !errors.Is(err, base) {
		t.Fatalf("expected permanent wrapper around base error")
	}
	if IsPermanent(base) {
		t.Fatalf("plain error must not be permanent")
	}
	if Permanent(nil) != nil {
		t.Fatalf("Permanent(nil) must be nil")
	}
}

func TestHookChainOrderAndPanic(t *testing.T) {
	var order []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, d []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return ctx, km, append(d, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
		}
	}

	chain := NewHookChain(mk("a"), nil, mk("b"))
	ctx, km, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	chain.AfterHandle(ctx, "t", km, data, nil)
	if string(data) != "ab" {
		t.Fatalf("payload not threaded: %q", data)
	}
	want := []string{"before:a", "before:b", "after:b", "after:a"}
	if len(order) != len(want) {
		t.Fatalf("order %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order %v, want %v", order, want)
		}
	}

	panicky := HookFuncs{Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
		panic("boom")
	}}
	_, _, _, err = NewHookChain(panicky).BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var he *HookError
	if !errors.As(err, &he) || he.Code != "ERR_PANIC" {
		t.Fatalf("expected ERR_PANIC, got %v", err)
	}
}

func TestTraceHookAndRejectEmpty(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: TraceHeader, Value: []byte("req-1")}}}
	ctx, _, _, err := NewHookChain(TraceHook(), RejectEmpty()).BeforeHandle(context.Background(), "t", km, []byte("{}"))
	if err != nil {
		t.Fatalf("before: %v", err)
	}
	if TraceID(ctx) != "req-1" {
		t.Fatalf("expected trace id, got %q", TraceID(ctx))
	}
	if _, ok := StartTime(ctx); !ok {
		t.Fatalf("expected start time in context")
	}

	_, _, _, err = RejectEmpty().BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error for empty payload, got %v", err)
	}
}

func TestToKafkaMessage(t *testing.T) {
	km, err := toKafkaMessage("predictions", Message{
		Key:     []byte("k"),
		Value:   map[string]int{"a": 1},
		Headers: map[string]string{TraceHeader: "r1"},
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if km.Topic != "predictions" || string(km.Value) != `{"a":1}` {
		t.Fatalf("unexpected message %+v", km)
	}
	if ExtractTraceID(km) != "r1" {
		t.Fatalf("header not copied")
	}
	if _, err := toKafkaMessage("t", Message{Value: func() {}}); err == nil {
		t.Fatalf("expected marshal error")
	}
}

func TestNewRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("producer: expected error without brokers")
	}
	if _, err := NewConsumer(); err == nil {
		t.Fatalf("consumer: expected error without brokers")
	}
}
