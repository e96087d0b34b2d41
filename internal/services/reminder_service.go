package services

import (
	"context"
	"strings"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// ReminderService manages dated to-dos.
type ReminderService struct {
	storage *storage.SQLiteRepository
}

func NewReminderService(storage *storage.SQLiteRepository) *ReminderService {
	return &ReminderService{storage: storage}
}

func (s *ReminderService) Create(ctx context.Context, r core.Reminder) (core.Reminder, error) {
	r.Kind = strings.TrimSpace(r.Kind)
	r.Title = strings.TrimSpace(r.Title)
	if err := r.Validate(); err != nil {
		return core.Reminder{}, err
	}
	return s.storage.CreateReminder(ctx, r)
}

func (s *ReminderService) List(ctx context.Context, userID int64) ([]core.Reminder, error) {
	return s.storage.ListReminders(ctx, userID)
}

func (s *ReminderService) SetCompleted(ctx context.Context, userID, id int64, completed bool) (core.Reminder, error) {
	return s.storage.SetReminderCompleted(ctx, userID, id, completed)
}

func (s *ReminderService) Delete(ctx context.Context, userID, id int64) error {
	return s.storage.DeleteReminder(ctx, userID, id)
}
