package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/pkg/timeutil"
)

// notifyBirthdays broadcasts one combined message for every active employee
// whose birthday month-day equals today plus offsetDays in the scheduler
// timezone. Nothing is sent when no one matches or no one is subscribed.
func (s *Scheduler) notifyBirthdays(ctx context.Context, offsetDays int, stats *model.TickStats) error {
	employees, err := s.employees.ListWithBirthdays(ctx)
	if err != nil {
		return fmt.Errorf("failed to list employees with birthdays: %w", err)
	}
	stats.Checked += len(employees)

	target := timeutil.MonthDayKey(s.now().AddDate(0, 0, offsetDays), s.loc)
	var matched []*model.Employee
	for _, emp := range employees {
		if emp.BirthdayAt == nil {
			continue
		}
		if timeutil.MonthDayKey(*emp.BirthdayAt, s.loc) == target {
			matched = append(matched, emp)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	stats.Matched += len(matched)

	subs, err := s.subs.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}
	if len(subs) == 0 {
		s.logger.ZL.Info().Int("matched", len(matched)).Msg("birthday matches but no subscribers")
		return nil
	}

	text := composeBirthdayMessage(matched, offsetDays)
	s.fanOut(ctx, subs, text, stats)

	names := make([]string, 0, len(matched))
	for _, emp := range matched {
		names = append(names, emp.FullName)
	}
	s.publishEvent(ctx, "birthday_reminder", map[string]interface{}{
		"offset_days": offsetDays,
		"employees":   names,
	})
	return nil
}

func composeBirthdayMessage(matched []*model.Employee, offsetDays int) string {
	var b strings.Builder
	if offsetDays == 0 {
		b.WriteString("🎉 <b>Birthdays today</b>\n")
	} else {
		fmt.Fprintf(&b, "🎂 <b>Birthdays in %d days</b>\n", offsetDays)
	}
	for _, emp := range matched {
		fmt.Fprintf(&b, "• %s", emp.FullName)
		if emp.Position != nil && *emp.Position != "" {
			fmt.Fprintf(&b, " (%s)", *emp.Position)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
