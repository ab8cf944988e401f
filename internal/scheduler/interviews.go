package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vroo/hr-tracker/internal/model"
)

const reminderExpiry = 24 * time.Hour

// remindInterviews finds head interviews entering the lead window and sends
// the one-hour reminder for each, guarded by the dedup claim. The claim is
// taken before composing anything: losing it means another instance (or an
// earlier tick) already owns this send.
func (s *Scheduler) remindInterviews(ctx context.Context, stats *model.TickStats) error {
	now := s.now()
	from := now.Add(s.interviewLead - s.windowHalfWidth)
	to := now.Add(s.interviewLead + s.windowHalfWidth)

	candidates, err := s.candidates.FindWithImminentHeadInterview(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to find imminent interviews: %w", err)
	}
	stats.Checked += len(candidates)
	if len(candidates) == 0 {
		return nil
	}

	var subs []*model.Subscriber
	for _, cand := range candidates {
		head := cand.HeadInterview()
		if head == nil || head.ScheduledAt.IsZero() {
			continue
		}
		s.metrics.InterviewMatches.Inc()

		rec := &model.ReminderRecord{
			Scope:       model.DefaultReminderScope,
			CandidateID: cand.ID,
			ScheduledAt: head.ScheduledAt,
			Kind:        model.ReminderKindMeet1h,
			ExpiresAt:   head.ScheduledAt.Add(reminderExpiry),
		}
		claimed, err := s.reminders.Claim(ctx, rec)
		if err != nil {
			s.logger.ZL.Error().Err(err).Str("candidate_id", cand.ID.String()).Msg("reminder claim failed")
			continue
		}
		if !claimed {
			s.metrics.ClaimsLost.Inc()
			continue
		}
		s.metrics.ClaimsWon.Inc()
		stats.Matched++

		if subs == nil {
			subs, err = s.subs.ListEnabled(ctx)
			if err != nil {
				return fmt.Errorf("failed to list subscribers: %w", err)
			}
		}
		if len(subs) == 0 {
			continue
		}

		s.fanOut(ctx, subs, s.composeInterviewMessage(cand, head), stats)
		s.publishEvent(ctx, "interview_reminder", map[string]interface{}{
			"candidate_id": cand.ID,
			"scheduled_at": head.ScheduledAt,
		})
	}
	return nil
}

func (s *Scheduler) composeInterviewMessage(cand *model.Candidate, head *model.Interview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕘 Interview in one hour: <b>%s</b>\n", cand.FullName)
	fmt.Fprintf(&b, "When: %s", head.ScheduledAt.In(s.loc).Format("02.01.2006 15:04"))
	if cand.Position != nil && *cand.Position != "" {
		fmt.Fprintf(&b, "\nPosition: %s", *cand.Position)
	}
	if link := meetLink(cand, head); link != "" {
		fmt.Fprintf(&b, "\nMeet: %s", link)
	}
	return b.String()
}

// meetLink prefers the interview's own link and falls back to the one
// mirrored on the candidate.
func meetLink(cand *model.Candidate, head *model.Interview) string {
	if head.MeetLink != nil && *head.MeetLink != "" {
		return *head.MeetLink
	}
	if cand.MeetLink != nil && *cand.MeetLink != "" {
		return *cand.MeetLink
	}
	return ""
}
