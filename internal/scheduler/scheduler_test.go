package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type schedulerConfig struct {
	redisURL string
	queue    string
}

func (c schedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c schedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c schedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c schedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestFollowupReminderPayloadRoundTrip(t *testing.T) {
	payload := FollowupReminderPayload{
		FollowupID: uuid.New().String(),
		LeadID:     uuid.New().String(),
		DueAt:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}

	task, err := NewFollowupReminderTask(payload)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskFollowupReminder {
		t.Fatalf("task type = %q, want %q", task.Type(), TaskFollowupReminder)
	}

	parsed, err := ParseFollowupReminderPayload(task)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if parsed != payload {
		t.Fatalf("payload round trip mismatch: got %+v, want %+v", parsed, payload)
	}
}

func TestClientEnqueuesReminderAtDueTime(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(schedulerConfig{redisURL: "redis://" + srv.Addr(), queue: "reminders"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	dueAt := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	payload := FollowupReminderPayload{
		FollowupID: uuid.New().String(),
		LeadID:     uuid.New().String(),
		DueAt:      dueAt.UTC().Format(time.RFC3339),
	}
	if err := client.ScheduleFollowupReminder(context.Background(), payload, dueAt); err != nil {
		t.Fatalf("schedule reminder: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: srv.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListScheduledTasks("reminders")
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskFollowupReminder {
		t.Fatalf("task type = %q, want %q", tasks[0].Type, TaskFollowupReminder)
	}

	parsed, err := ParseFollowupReminderPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if parsed != payload {
		t.Fatalf("payload mismatch: got %+v, want %+v", parsed, payload)
	}
}

func TestMissingRedisURLDisablesClient(t *testing.T) {
	if _, err := NewClient(schedulerConfig{}); err == nil {
		t.Fatal("expected error for empty redis url")
	}

	// A nil client is a safe no-op so callers can run without redis.
	var c *Client
	if err := c.ScheduleFollowupReminder(context.Background(), FollowupReminderPayload{}, time.Now()); err != nil {
		t.Fatalf("nil client schedule: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil client close: %v", err)
	}
}
