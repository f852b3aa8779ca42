package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/lbarone/chronos/internal/service"
)

var agendaDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ---------------------------------------------------------------------------
// AgendaHandler – /agenda [today|tomorrow|YYYY-MM-DD]
// ---------------------------------------------------------------------------

// AgendaHandler handles the /agenda command and replies with the list of
// sessions scheduled for the requested day. Without arguments it shows today.
type AgendaHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewAgendaHandler creates a new AgendaHandler.
func NewAgendaHandler(svc *service.Service, logger *logrus.Logger) *AgendaHandler {
	return &AgendaHandler{svc: svc, logger: logger}
}

// Handle processes the /agenda command.
func (h *AgendaHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	day := time.Now()

	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "today":
			// default
		case "tomorrow":
			day = day.AddDate(0, 0, 1)
		default:
			if !agendaDateRegex.MatchString(args[0]) {
				msg := tgbotapi.NewMessage(message.Chat.ID,
					"❌ I didn't understand that day.\n\n"+
						"*Usage:*\n"+
						"`/agenda`\n"+
						"`/agenda tomorrow`\n"+
						"`/agenda 2026-09-03`")
				msg.ParseMode = tgbotapi.ModeMarkdown
				bot.Send(msg)
				return nil
			}
			parsed, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
			if err != nil {
				return fmt.Errorf("parse agenda date: %w", err)
			}
			day = parsed
		}
	}

	text, err := h.svc.DailyAgenda(context.Background(), day)
	if err != nil {
		return fmt.Errorf("build agenda: %w", err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send agenda: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// WeekHandler – /week
// ---------------------------------------------------------------------------

// WeekHandler handles the /week command and replies with a compact per-day
// summary of the current week.
type WeekHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewWeekHandler creates a new WeekHandler.
func NewWeekHandler(svc *service.Service, logger *logrus.Logger) *WeekHandler {
	return &WeekHandler{svc: svc, logger: logger}
}

// Handle processes the /week command.
func (h *WeekHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	week, err := h.svc.WeekScheduleAt(context.Background(), time.Now(), 0)
	if err != nil {
		return fmt.Errorf("build week schedule: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Week of %s*\n\n", week.WindowStart.Format("Jan 2")))
	for _, day := range week.Days {
		sb.WriteString(fmt.Sprintf("*%s %s*", day.Date.Format("Mon"), day.Date.Format("02/01")))
		if len(day.Placements) == 0 {
			sb.WriteString(" — free\n")
			continue
		}
		sb.WriteString("\n")
		for _, p := range day.Placements {
			sb.WriteString(fmt.Sprintf("  %s  %s\n", p.Instance.Start.Format("15:04"), p.Instance.Title))
		}
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send week summary: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// ForecastHandler – /forecast [YYYY-MM]
// ---------------------------------------------------------------------------

var forecastMonthRegex = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ForecastHandler handles the /forecast command and replies with the revenue
// projection for the requested month (default: the current one).
type ForecastHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(svc *service.Service, logger *logrus.Logger) *ForecastHandler {
	return &ForecastHandler{svc: svc, logger: logger}
}

// Handle processes the /forecast command.
func (h *ForecastHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if len(args) > 0 {
		matches := forecastMonthRegex.FindStringSubmatch(args[0])
		if matches == nil {
			msg := tgbotapi.NewMessage(message.Chat.ID,
				"❌ I didn't understand that month.\n\n"+
					"*Usage:*\n"+
					"`/forecast`\n"+
					"`/forecast 2026-09`")
			msg.ParseMode = tgbotapi.ModeMarkdown
			bot.Send(msg)
			return nil
		}
		parsed, err := time.ParseInLocation("2006-01", matches[1]+"-"+matches[2], time.Local)
		if err != nil {
			return fmt.Errorf("parse forecast month: %w", err)
		}
		year, month = parsed.Year(), parsed.Month()
	}

	forecast, err := h.svc.ForecastMonth(context.Background(), year, month)
	if err != nil {
		return fmt.Errorf("build forecast: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💰 *Forecast for %s %d*\n\n", month, year))
	if len(forecast.Patients) == 0 {
		sb.WriteString("No sessions projected this month.\n")
	}
	for _, p := range forecast.Patients {
		sb.WriteString(fmt.Sprintf("%s — %d × %.2f = *%.2f*\n",
			p.Name, p.SessionCount, p.SessionValue, p.TotalValue))
	}
	sb.WriteString(fmt.Sprintf("\n*Expected:* %.2f\n", forecast.TotalForecast))
	sb.WriteString(fmt.Sprintf("*Received so far:* %.2f\n", forecast.TotalPaid))
	sb.WriteString(fmt.Sprintf("*Expenses:* %.2f\n", forecast.PersonalExpenses))
	sb.WriteString(fmt.Sprintf("*Projected balance:* %.2f\n", forecast.ProjectedBalance))

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send forecast: %w", err)
	}
	return nil
}
