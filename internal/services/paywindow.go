package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
)

// WindowContaining returns the 14-day pay window [start, start+13] that
// contains ref, where start is a payday in phase with anchor. Floor division
// puts dates before the anchor into earlier windows.
func WindowContaining(ref, anchor time.Time) models.Window {
	delta := DaysBetween(anchor, ref)
	k := floorDiv(delta, models.PayCadenceDays)
	start := AddDays(anchor, models.PayCadenceDays*k)
	return models.Window{
		Start: start,
		End:   AddDays(start, models.PayCadenceDays-1),
	}
}

// NextWindow returns the window immediately following w.
func NextWindow(w models.Window) models.Window {
	return models.Window{
		Start: AddDays(w.Start, models.PayCadenceDays),
		End:   AddDays(w.End, models.PayCadenceDays),
	}
}

// PrevWindow returns the window immediately preceding w.
func PrevWindow(w models.Window) models.Window {
	return models.Window{
		Start: AddDays(w.Start, -models.PayCadenceDays),
		End:   AddDays(w.End, -models.PayCadenceDays),
	}
}

// Scheduler derives pay windows from the stored anchor payday.
type Scheduler struct {
	store ScheduleStore
}

// NewScheduler creates a scheduler over store.
func NewScheduler(store ScheduleStore) *Scheduler {
	return &Scheduler{store: store}
}

// Schedule returns the stored schedule, if one has been set.
func (s *Scheduler) Schedule(ctx context.Context) (models.PaySchedule, bool, error) {
	sched, ok, err := s.store.GetPaySchedule(ctx)
	if err != nil {
		return models.PaySchedule{}, false, fmt.Errorf("failed to load pay schedule: %w", err)
	}
	return sched, ok, nil
}

// SetAnchor re-anchors the schedule on a known payday. Every window is
// recomputed from the new phase.
func (s *Scheduler) SetAnchor(ctx context.Context, anchor time.Time) (models.PaySchedule, error) {
	if anchor.IsZero() {
		return models.PaySchedule{}, fmt.Errorf("%w: anchor is required", ErrInvalidDate)
	}
	sched := models.PaySchedule{
		CadenceDays: models.PayCadenceDays,
		Anchor:      DateOf(anchor),
	}
	if err := s.store.UpsertPaySchedule(ctx, sched); err != nil {
		return models.PaySchedule{}, fmt.Errorf("failed to save pay schedule: %w", err)
	}
	return sched, nil
}

// WindowFor returns the window containing ref. With no anchor configured,
// ref itself is used as the anchor.
func (s *Scheduler) WindowFor(ctx context.Context, ref time.Time) (models.Window, error) {
	sched, ok, err := s.Schedule(ctx)
	if err != nil {
		return models.Window{}, err
	}
	anchor := ref
	if ok {
		anchor = sched.Anchor
	}
	return WindowContaining(DateOf(ref), anchor), nil
}
