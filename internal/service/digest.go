package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"

	"github.com/lbarone/chronos/internal/repository"
	"github.com/lbarone/chronos/internal/schedule"
)

// DigestCallback is a function that delivers an agenda digest message.
type DigestCallback func(text string)

// StartDigestScheduler runs the daily agenda digest on the given cron
// expression (standard five-field spec) and invokes the callback with the
// rendered agenda for the coming day. It blocks until the context is
// cancelled, so it should be launched in a separate goroutine.
func (s *Service) StartDigestScheduler(ctx context.Context, cronSpec string, callback DigestCallback) error {
	running := atomic.NewBool(false)

	c := cron.New()
	_, err := c.AddFunc(cronSpec, func() {
		s.deliverDigest(ctx, running, callback)
	})
	if err != nil {
		return fmt.Errorf("invalid digest cron spec %q: %w", cronSpec, err)
	}

	c.Start()
	s.logger.Infof("Digest scheduler started (cron %q)", cronSpec)

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("Digest scheduler stopped")
	return nil
}

// deliverDigest builds and sends one digest. Overlapping runs are skipped:
// only the caller that flips the running flag proceeds.
func (s *Service) deliverDigest(ctx context.Context, running *atomic.Bool, callback DigestCallback) {
	if !running.CAS(false, true) {
		s.logger.Warn("Digest run still in progress, skipping")
		return
	}
	defer running.Store(false)

	text, err := s.DailyAgenda(ctx, time.Now())
	if err != nil {
		s.logger.Errorf("Failed to build daily agenda: %v", err)
		return
	}
	callback(text)
}

// DailyAgenda renders the list of occurrences of the given day, expanded
// through the recurrence engine, with patient names resolved for sessions.
func (s *Service) DailyAgenda(ctx context.Context, day time.Time) (string, error) {
	events, err := s.Events.List(ctx, repository.EventFilters{})
	if err != nil {
		return "", fmt.Errorf("failed to load events: %w", err)
	}

	windowStart := dayStart(schedule.StartOfWeek(day))
	instances, expandErr := schedule.ExpandWindow(events, windowStart)
	if expandErr != nil {
		s.logger.Warnf("Some events were skipped during agenda expansion: %v", expandErr)
	}

	todays := schedule.FilterDay(instances, day)
	if len(todays) == 0 {
		return fmt.Sprintf("📅 *%s*\nNo appointments.", day.Format("Mon, 02 Jan")), nil
	}

	// Resolve patient names once.
	names := make(map[string]string)
	patients, err := s.Patients.List(ctx, repository.PatientFilters{})
	if err != nil {
		return "", fmt.Errorf("failed to load patients: %w", err)
	}
	for _, p := range patients {
		names[p.ID] = p.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%s* — %d appointment(s)\n", day.Format("Mon, 02 Jan"), len(todays))
	for _, p := range schedule.LayoutDay(todays, 1) {
		inst := p.Instance
		label := inst.Title
		if inst.IsSession() {
			if name, ok := names[*inst.PatientID]; ok {
				label = fmt.Sprintf("%s (%s)", inst.Title, name)
			}
		}
		fmt.Fprintf(&b, "• %s-%s %s\n",
			inst.Start.Format("15:04"), inst.End.Format("15:04"), label)
	}
	return b.String(), nil
}
