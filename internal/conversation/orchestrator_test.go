package conversation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type countingService struct {
	calls atomic.Int64
	err   error
}

func (s *countingService) ProcessTurn(_ context.Context, req TurnRequest) (*TurnResponse, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &TurnResponse{Message: "pong: " + req.Message, SessionID: req.SessionID}, nil
}

func TestOrchestratorRoundTrip(t *testing.T) {
	svc := &countingService{}
	o := NewOrchestrator(svc, NewMemoryQueue(8), nil, WithWorkerCount(1))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = o.Shutdown(ctx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := o.ProcessTurn(ctx, TurnRequest{
		Message:      "oi",
		BarbershopID: uuid.New(),
		SessionID:    "s1",
	})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if resp.Message != "pong: oi" || resp.SessionID != "s1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if svc.calls.Load() != 1 {
		t.Fatalf("expected 1 engine call, got %d", svc.calls.Load())
	}
}

func TestOrchestratorPropagatesEngineError(t *testing.T) {
	wantErr := errors.New("boom")
	svc := &countingService{err: wantErr}
	o := NewOrchestrator(svc, NewMemoryQueue(8), nil, WithWorkerCount(1))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = o.Shutdown(ctx)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := o.ProcessTurn(ctx, TurnRequest{Message: "oi"}); !errors.Is(err, wantErr) {
		t.Fatalf("expected engine error, got %v", err)
	}
}

func TestMemoryQueueReceiveTimesOut(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	msgs, err := q.Receive(ctx, 5, 1)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty poll, got %d messages", len(msgs))
	}
}
