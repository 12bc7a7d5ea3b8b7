package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"salesops_backend/internal/events"
	"salesops_backend/platform/config"
	"salesops_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

// ReminderScheduler enqueues a reminder to fire at the follow-up's due time.
type ReminderScheduler interface {
	ScheduleFollowupReminder(ctx context.Context, payload FollowupReminderPayload, runAt time.Time) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) ScheduleFollowupReminder(ctx context.Context, payload FollowupReminderPayload, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewFollowupReminderTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

// SubscribeFollowupScheduled wires the event bus to the task queue: every
// scheduled follow-up with a due time gets a reminder task enqueued for that
// time. A nil scheduler (redis not configured) subscribes nothing.
func SubscribeFollowupScheduled(bus events.Bus, sched ReminderScheduler, log *logger.Logger) {
	if sched == nil {
		log.Warn("follow-up reminders disabled, redis not configured")
		return
	}

	bus.Subscribe(events.FollowupScheduled{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		scheduled, ok := e.(events.FollowupScheduled)
		if !ok {
			return nil
		}
		return sched.ScheduleFollowupReminder(ctx, FollowupReminderPayload{
			FollowupID: scheduled.FollowupID.String(),
			LeadID:     scheduled.LeadID.String(),
			DueAt:      scheduled.DueAt.UTC().Format(time.RFC3339),
		}, scheduled.DueAt)
	}))
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
