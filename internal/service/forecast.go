package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lbarone/chronos/internal/models"
	"github.com/lbarone/chronos/internal/repository"
	"github.com/lbarone/chronos/internal/schedule"
)

// PatientForecast is the projected billing of one patient for a month.
type PatientForecast struct {
	PatientID    string  `json:"patientId"`
	Name         string  `json:"name"`
	SessionValue float64 `json:"sessionValue"`
	SessionCount int     `json:"sessionCount"`
	TotalValue   float64 `json:"totalValue"`
}

// MonthlyForecast is the revenue projection for one calendar month: expected
// session income per active patient plus the running balance figures.
type MonthlyForecast struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	Patients      []PatientForecast `json:"patients"`
	TotalForecast float64           `json:"totalForecast"`

	TotalPaid        float64 `json:"totalPaid"`
	PersonalExpenses float64 `json:"personalExpenses"`
	PreviousBalance  float64 `json:"previousBalance"`
	ProjectedBalance float64 `json:"projectedBalance"`
}

// ForecastMonth projects session revenue for the given month by expanding
// every week overlapping it through the recurrence engine, deduplicating
// occurrences (adjacent windows overlap at month edges), and multiplying
// each active patient's session count by their consultation value.
func (s *Service) ForecastMonth(ctx context.Context, year int, month time.Month) (*MonthlyForecast, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	events, err := s.Events.List(ctx, repository.EventFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	occurrences := s.expandMonth(events, monthStart, monthEnd)

	active := models.PatientActive
	patients, err := s.Patients.List(ctx, repository.PatientFilters{Status: &active})
	if err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}

	forecast := &MonthlyForecast{Year: year, Month: month}
	sessionsByPatient := make(map[string]int)
	for _, inst := range occurrences {
		if inst.IsSession() {
			sessionsByPatient[*inst.PatientID]++
		}
	}

	for _, p := range patients {
		count := sessionsByPatient[p.ID]
		total := float64(count) * p.ConsultationValue
		if total <= 0 {
			continue
		}
		forecast.Patients = append(forecast.Patients, PatientForecast{
			PatientID:    p.ID,
			Name:         p.Name,
			SessionValue: p.ConsultationValue,
			SessionCount: count,
			TotalValue:   total,
		})
		forecast.TotalForecast += total
	}
	sort.Slice(forecast.Patients, func(i, j int) bool {
		return forecast.Patients[i].TotalValue > forecast.Patients[j].TotalValue
	})

	if err := s.fillBalances(ctx, forecast, monthStart, monthEnd); err != nil {
		return nil, err
	}
	forecast.ProjectedBalance = forecast.PreviousBalance + forecast.TotalForecast - forecast.PersonalExpenses

	return forecast, nil
}

// expandMonth walks the month week by week through the window expander and
// keeps each occurrence once, filtered to the month's strict range.
func (s *Service) expandMonth(events []models.Event, monthStart, monthEnd time.Time) []schedule.Instance {
	var out []schedule.Instance
	seen := make(map[string]bool)

	weekStart := dayStart(schedule.StartOfWeek(monthStart))
	for !weekStart.After(monthEnd) {
		instances, expandErr := schedule.ExpandWindow(events, weekStart)
		if expandErr != nil {
			s.logger.Warnf("Some events were skipped during forecast expansion: %v", expandErr)
		}
		for _, inst := range instances {
			id := inst.Ref.InstanceID()
			if seen[id] {
				continue
			}
			seen[id] = true
			if inst.Start.Before(monthStart) || inst.Start.After(monthEnd) {
				continue
			}
			out = append(out, inst)
		}
		weekStart = schedule.AddDays(weekStart, schedule.WindowDays)
	}
	return out
}

// fillBalances computes paid income and expenses for the month plus the
// carry-over balance of everything before it.
func (s *Service) fillBalances(ctx context.Context, forecast *MonthlyForecast, monthStart, monthEnd time.Time) error {
	paid := models.PaymentPaid
	payments, err := s.Payments.List(ctx, repository.PaymentFilters{Status: &paid})
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	transactions, err := s.Finance.List(ctx, repository.FinanceFilters{})
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	for _, p := range payments {
		switch {
		case p.Date.Before(monthStart):
			forecast.PreviousBalance += p.Amount
		case !p.Date.After(monthEnd):
			forecast.TotalPaid += p.Amount
		}
	}

	for _, tx := range transactions {
		inMonth := !tx.Date.Before(monthStart) && !tx.Date.After(monthEnd)
		switch {
		case tx.Date.Before(monthStart) && tx.Type == models.TransactionIncome:
			forecast.PreviousBalance += tx.Amount
		case tx.Date.Before(monthStart) && tx.Type == models.TransactionExpense:
			forecast.PreviousBalance -= tx.Amount
		case inMonth && tx.Type == models.TransactionExpense:
			forecast.PersonalExpenses += tx.Amount
		}
	}
	return nil
}
