// Package notification turns domain events into emails. It subscribes to the
// bus and resolves recipients at send time, so publishing modules stay
// unaware of who gets notified.
package notification

import (
	"context"

	authrepo "salesops_backend/internal/auth/repository"
	"salesops_backend/internal/email"
	"salesops_backend/internal/events"
	leadsrepo "salesops_backend/internal/leads/repository"
	"salesops_backend/platform/db"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	pool   db.DBTX
	leads  *leadsrepo.Repository
	users  *authrepo.Repository
	sender email.Sender
	log    *logger.Logger
}

func New(pool db.DBTX, sender email.Sender, log *logger.Logger) *Service {
	return &Service{
		pool:   pool,
		leads:  leadsrepo.New(),
		users:  authrepo.New(),
		sender: sender,
		log:    log,
	}
}

// Subscribe registers the event handlers. Send failures are logged, never
// propagated: a broken mail server must not fail the workflow.
func (s *Service) Subscribe(bus events.Bus) {
	bus.Subscribe(events.FollowupScheduled{}.EventName(), events.HandlerFunc(s.onFollowupScheduled))
	bus.Subscribe(events.FollowupReminderDue{}.EventName(), events.HandlerFunc(s.onFollowupReminderDue))
	bus.Subscribe(events.SaleRecorded{}.EventName(), events.HandlerFunc(s.onSaleRecorded))
	bus.Subscribe(events.TargetAchieved{}.EventName(), events.HandlerFunc(s.onTargetAchieved))
}

func (s *Service) onFollowupScheduled(ctx context.Context, e events.Event) error {
	scheduled, ok := e.(events.FollowupScheduled)
	if !ok {
		return nil
	}
	if scheduled.AssignedTo == uuid.Nil {
		return nil
	}

	lead, err := s.leads.GetByID(ctx, s.pool, scheduled.LeadID)
	if err != nil {
		s.log.SideEffectError("notify_followup_scheduled", scheduled.LeadID.String(), err)
		return nil
	}

	agent, err := s.users.GetByID(ctx, s.pool, scheduled.AssignedTo)
	if err != nil {
		s.log.SideEffectError("notify_followup_scheduled", scheduled.FollowupID.String(), err)
		return nil
	}

	if err := s.sender.SendFollowupScheduledEmail(ctx, agent.Email, agent.Name, lead.CustomerName, lead.LeadRef, scheduled.DueAt); err != nil {
		s.log.SideEffectError("notify_followup_scheduled", scheduled.FollowupID.String(), err)
	}
	return nil
}

func (s *Service) onFollowupReminderDue(ctx context.Context, e events.Event) error {
	due, ok := e.(events.FollowupReminderDue)
	if !ok {
		return nil
	}
	if due.AssignedTo == uuid.Nil {
		return nil
	}

	lead, err := s.leads.GetByID(ctx, s.pool, due.LeadID)
	if err != nil {
		s.log.SideEffectError("notify_followup_reminder", due.LeadID.String(), err)
		return nil
	}

	agent, err := s.users.GetByID(ctx, s.pool, due.AssignedTo)
	if err != nil {
		s.log.SideEffectError("notify_followup_reminder", due.FollowupID.String(), err)
		return nil
	}

	if err := s.sender.SendFollowupReminderEmail(ctx, agent.Email, agent.Name, lead.CustomerName, lead.LeadRef, due.DueAt); err != nil {
		s.log.SideEffectError("notify_followup_reminder", due.FollowupID.String(), err)
	}
	return nil
}

func (s *Service) onSaleRecorded(ctx context.Context, e events.Event) error {
	sale, ok := e.(events.SaleRecorded)
	if !ok {
		return nil
	}

	lead, err := s.leads.GetByID(ctx, s.pool, sale.LeadID)
	if err != nil {
		s.log.SideEffectError("notify_sale_recorded", sale.LeadID.String(), err)
		return nil
	}

	agent, err := s.users.GetByID(ctx, s.pool, sale.SoldBy)
	if err != nil {
		s.log.SideEffectError("notify_sale_recorded", sale.SaleID.String(), err)
		return nil
	}

	if err := s.sender.SendSaleRecordedEmail(ctx, agent.Email, agent.Name, lead.CustomerName, sale.LeadRef, sale.AmountCents); err != nil {
		s.log.SideEffectError("notify_sale_recorded", sale.SaleID.String(), err)
	}
	return nil
}

// onTargetAchieved announces the crossing to every active user.
func (s *Service) onTargetAchieved(ctx context.Context, e events.Event) error {
	achieved, ok := e.(events.TargetAchieved)
	if !ok {
		return nil
	}

	users, err := s.users.ListAgents(ctx, s.pool)
	if err != nil {
		s.log.SideEffectError("notify_target_achieved", achieved.TargetID.String(), err)
		return nil
	}

	for _, u := range users {
		if err := s.sender.SendTargetAchievedEmail(ctx, u.Email, achieved.Name, achieved.AchievedCents, achieved.GoalCents); err != nil {
			s.log.SideEffectError("notify_target_achieved", achieved.TargetID.String(), err)
		}
	}
	return nil
}
