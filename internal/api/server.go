package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lbarone/chronos/internal/assistant"
	"github.com/lbarone/chronos/internal/ics"
	"github.com/lbarone/chronos/internal/models"
	"github.com/lbarone/chronos/internal/repository"
	"github.com/lbarone/chronos/internal/schedule"
	"github.com/lbarone/chronos/internal/service"
)

// Server provides the HTTP API.
type Server struct {
	svc    *service.Service
	parser assistant.Parser
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it. The
// parser may be nil when no assistant backend is configured.
func NewServer(svc *service.Service, parser assistant.Parser, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, parser: parser, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// API – Events (definitions)
	s.handle("GET /api/events", s.handleGetEvents)
	s.handle("POST /api/events", s.handleCreateEvent)
	s.handle("GET /api/events/{id}", s.handleGetEvent)
	s.handle("PUT /api/events/{id}", s.handleUpdateEvent)
	s.handle("DELETE /api/events/{id}", s.handleDeleteEvent)
	s.handle("DELETE /api/events/{id}/occurrences", s.handleCancelOccurrence)

	// API – Schedule (derived views)
	s.handle("GET /api/schedule/week", s.handleWeekSchedule)
	s.handle("GET /api/schedule/month", s.handleMonthGrid)
	s.handle("POST /api/schedule/move", s.handleMoveOccurrence)
	// The websocket route is not instrumented: the upgrade needs the raw
	// ResponseWriter to hijack the connection.
	s.mux.HandleFunc("GET /api/schedule/interact", s.handleInteract)

	// API – Patients
	s.handle("GET /api/patients", s.handleGetPatients)
	s.handle("POST /api/patients", s.handleCreatePatient)
	s.handle("GET /api/patients/{id}", s.handleGetPatient)
	s.handle("PUT /api/patients/{id}", s.handleUpdatePatient)
	s.handle("DELETE /api/patients/{id}", s.handleDeletePatient)

	// API – Clinical records
	s.handle("GET /api/patients/{id}/notes", s.handleGetNotes)
	s.handle("POST /api/patients/{id}/notes", s.handleCreateNote)
	s.handle("PUT /api/notes/{id}", s.handleUpdateNote)
	s.handle("DELETE /api/notes/{id}", s.handleDeleteNote)
	s.handle("GET /api/patients/{id}/anamnesis", s.handleGetAnamnesis)
	s.handle("PUT /api/patients/{id}/anamnesis", s.handleSaveAnamnesis)

	// API – Payments & finance
	s.handle("GET /api/payments", s.handleGetPayments)
	s.handle("POST /api/payments", s.handleCreatePayment)
	s.handle("DELETE /api/payments/{id}", s.handleDeletePayment)
	s.handle("GET /api/finance/transactions", s.handleGetTransactions)
	s.handle("POST /api/finance/transactions", s.handleCreateTransaction)
	s.handle("DELETE /api/finance/transactions/{id}", s.handleDeleteTransaction)
	s.handle("GET /api/finance/forecast", s.handleForecast)

	// API – Health tracker & settings
	s.handle("GET /api/health-records", s.handleGetHealthRecords)
	s.handle("POST /api/health-records", s.handleCreateHealthRecord)
	s.handle("PUT /api/health-records/{id}", s.handleUpdateHealthRecord)
	s.handle("DELETE /api/health-records/{id}", s.handleDeleteHealthRecord)
	s.handle("GET /api/settings", s.handleGetSettings)
	s.handle("PUT /api/settings", s.handleSaveSettings)

	// API – Assistant & export
	s.handle("POST /api/assistant/parse", s.handleAssistantParse)
	s.handle("GET /api/export/calendar.ics", s.handleExportICS)

	// Operational
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handle(pattern string, h http.HandlerFunc) {
	route := pattern
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		route = pattern[i+1:]
	}
	s.mux.HandleFunc(pattern, instrument(route, h))
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value.
func pathID(r *http.Request) (string, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return "", fmt.Errorf("missing id in path")
	}
	return raw, nil
}

// parseTimeParam accepts either a calendar date (2006-01-02) or a full
// RFC 3339 timestamp.
func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters repository.EventFilters

	if from := q.Get("from"); from != "" {
		t, err := parseTimeParam(from)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "from must be a date or RFC 3339 timestamp")
			return
		}
		filters.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := parseTimeParam(to)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "to must be a date or RFC 3339 timestamp")
			return
		}
		filters.To = &t
	}
	if patientID := q.Get("patient_id"); patientID != "" {
		filters.PatientID = &patientID
	}
	if limit := q.Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			filters.Limit = v
		}
	}

	events, err := s.svc.Events.List(r.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("failed to list events")
		s.respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	s.respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := s.svc.Events.GetByID(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("failed to get event")
		s.respondError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if event == nil {
		s.respondError(w, http.StatusNotFound, "event not found")
		return
	}

	s.respondJSON(w, http.StatusOK, event)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if ok, msg := s.decodeJSON(r, &event); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	event.ID = ""

	created, err := s.svc.CreateEvent(r.Context(), &event)
	if err != nil {
		if strings.HasPrefix(err.Error(), "invalid event") {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to create event")
		s.respondError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var event models.Event
	if ok, msg := s.decodeJSON(r, &event); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	event.ID = id

	updated, err := s.svc.UpdateEvent(r.Context(), &event)
	if err != nil {
		if strings.HasPrefix(err.Error(), "invalid event") {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to update event")
		s.respondError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := s.svc.Events.Delete(r.Context(), id); err != nil {
		s.logger.WithError(err).Error("failed to delete event")
		s.respondError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// handleCancelOccurrence suppresses a single date of a recurring event, or
// deletes a one-off event entirely.
func (s *Server) handleCancelOccurrence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		s.respondError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := parseTimeParam(rawDate)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "date must be a date or RFC 3339 timestamp")
		return
	}

	if err := s.svc.CancelOccurrence(r.Context(), id, date); err != nil {
		s.logger.WithError(err).Error("failed to cancel occurrence")
		s.respondError(w, http.StatusInternalServerError, "failed to cancel occurrence")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// ---------------------------------------------------------------------------
// Schedule views
// ---------------------------------------------------------------------------

func (s *Server) handleWeekSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := time.Now()
	if raw := q.Get("date"); raw != "" {
		parsed, err := parseTimeParam(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "date must be a date or RFC 3339 timestamp")
			return
		}
		date = parsed
	}

	var pxPerMinute float64
	if raw := q.Get("px_per_minute"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			s.respondError(w, http.StatusBadRequest, "px_per_minute must be a positive number")
			return
		}
		pxPerMinute = v
	}

	started := time.Now()
	week, err := s.svc.WeekScheduleAt(r.Context(), date, pxPerMinute)
	if err != nil {
		s.logger.WithError(err).Error("failed to build week schedule")
		s.respondError(w, http.StatusInternalServerError, "failed to build week schedule")
		return
	}
	scheduleBuildSeconds.Observe(time.Since(started).Seconds())

	s.respondJSON(w, http.StatusOK, week)
}

func (s *Server) handleMonthGrid(w http.ResponseWriter, r *http.Request) {
	year, month, ok := s.yearMonthParams(w, r)
	if !ok {
		return
	}

	started := time.Now()
	cells, err := s.svc.MonthGridAt(r.Context(), year, month)
	if err != nil {
		s.logger.WithError(err).Error("failed to build month grid")
		s.respondError(w, http.StatusInternalServerError, "failed to build month grid")
		return
	}
	scheduleBuildSeconds.Observe(time.Since(started).Seconds())

	s.respondJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": int(month),
		"cells": cells,
	})
}

type moveOccurrenceRequest struct {
	EventID   string    `json:"eventId"`
	Start     time.Time `json:"start"`
	Canonical bool      `json:"canonical"`
	NewStart  time.Time `json:"newStart"`
	NewEnd    time.Time `json:"newEnd"`
}

func (s *Server) handleMoveOccurrence(w http.ResponseWriter, r *http.Request) {
	var req moveOccurrenceRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.EventID == "" {
		s.respondError(w, http.StatusBadRequest, "eventId is required")
		return
	}
	if req.NewStart.IsZero() || req.NewEnd.IsZero() {
		s.respondError(w, http.StatusBadRequest, "newStart and newEnd are required")
		return
	}

	ref := schedule.OccurrenceRef{EventID: req.EventID, Start: req.Start, Canonical: req.Canonical}
	if err := s.svc.MoveOccurrence(r.Context(), ref, req.NewStart, req.NewEnd); err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		if strings.HasPrefix(err.Error(), "invalid time range") {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.WithError(err).Error("failed to move occurrence")
		s.respondError(w, http.StatusInternalServerError, "failed to move occurrence")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

// yearMonthParams reads year and month query parameters, defaulting to the
// current month.
func (s *Server) yearMonthParams(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	q := r.URL.Query()
	if raw := q.Get("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "year must be an integer")
			return 0, 0, false
		}
		year = v
	}
	if raw := q.Get("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			s.respondError(w, http.StatusBadRequest, "month must be 1-12")
			return 0, 0, false
		}
		month = time.Month(v)
	}
	return year, month, true
}

// ---------------------------------------------------------------------------
// Patients
// ---------------------------------------------------------------------------

func (s *Server) handleGetPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters repository.PatientFilters

	if status := q.Get("status"); status != "" {
		st := models.PatientStatus(status)
		filters.Status = &st
	}
	filters.Search = q.Get("search")

	patients, err := s.svc.Patients.List(r.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("failed to list patients")
		s.respondError(w, http.StatusInternalServerError, "failed to list patients")
		return
	}

	s.respondJSON(w, http.StatusOK, patients)
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	patient, err := s.svc.Patients.GetByID(r.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("failed to get patient")
		s.respondError(w, http.StatusInternalServerError, "failed to get patient")
		return
	}
	if patient == nil {
		s.respondError(w, http.StatusNotFound, "patient not found")
		return
	}

	s.respondJSON(w, http.StatusOK, patient)
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var patient models.Patient
	if ok, msg := s.decodeJSON(r, &patient); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if strings.TrimSpace(patient.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	patient.ID = ""
	patient.Name = strings.TrimSpace(patient.Name)
	if patient.Status == "" {
		patient.Status = models.PatientActive
	}

	created, err := s.svc.Patients.Create(r.Context(), &patient)
	if err != nil {
		s.logger.WithError(err).Error("failed to create patient")
		s.respondError(w, http.StatusInternalServerError, "failed to create patient")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	var patient models.Patient
	if ok, msg := s.decodeJSON(r, &patient); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	patient.ID = id

	if strings.TrimSpace(patient.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	updated, err := s.svc.Patients.Update(r.Context(), &patient)
	if err != nil {
		s.logger.WithError(err).Error("failed to update patient")
		s.respondError(w, http.StatusInternalServerError, "failed to update patient")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	if err := s.svc.Patients.Delete(r.Context(), id); err != nil {
		s.logger.WithError(err).Error("failed to delete patient")
		s.respondError(w, http.StatusInternalServerError, "failed to delete patient")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// ---------------------------------------------------------------------------
// Session notes & anamnesis
// ---------------------------------------------------------------------------

func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	notes, err := s.svc.Notes.GetByPatientID(r.Context(), patientID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get notes")
		s.respondError(w, http.StatusInternalServerError, "failed to get notes")
		return
	}

	s.respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	var note models.SessionNote
	if ok, msg := s.decodeJSON(r, &note); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if strings.TrimSpace(note.Content) == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	note.ID = ""
	note.PatientID = patientID
	if note.Date.IsZero() {
		note.Date = time.Now()
	}

	created, err := s.svc.Notes.Create(r.Context(), &note)
	if err != nil {
		s.logger.WithError(err).Error("failed to create note")
		s.respondError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var note models.SessionNote
	if ok, msg := s.decodeJSON(r, &note); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	note.ID = id

	if strings.TrimSpace(note.Content) == "" {
		s.respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	updated, err := s.svc.Notes.Update(r.Context(), &note)
	if err != nil {
		s.logger.WithError(err).Error("failed to update note")
		s.respondError(w, http.StatusInternalServerError, "failed to update note")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	if err := s.svc.Notes.Delete(r.Context(), id); err != nil {
		s.logger.WithError(err).Error("failed to delete note")
		s.respondError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetAnamnesis(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	record, err := s.svc.Anamnesis.GetByPatientID(r.Context(), patientID)
	if err != nil {
		s.logger.WithError(err).Error("failed to get anamnesis")
		s.respondError(w, http.StatusInternalServerError, "failed to get anamnesis")
		return
	}
	if record == nil {
		s.respondError(w, http.StatusNotFound, "anamnesis not found")
		return
	}

	s.respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleSaveAnamnesis(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}

	var record models.AnamnesisRecord
	if ok, msg := s.decodeJSON(r, &record); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	record.PatientID = patientID

	saved, err := s.svc.Anamnesis.Save(r.Context(), &record)
	if err != nil {
		s.logger.WithError(err).Error("failed to save anamnesis")
		s.respondError(w, http.StatusInternalServerError, "failed to save anamnesis")
		return
	}

	s.respondJSON(w, http.StatusOK, saved)
}

// ---------------------------------------------------------------------------
// Payments & finance
// ---------------------------------------------------------------------------

func (s *Server) handleGetPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters repository.PaymentFilters

	if patientID := q.Get("patient_id"); patientID != "" {
		filters.PatientID = &patientID
	}
	if status := q.Get("status"); status != "" {
		st := models.PaymentStatus(status)
		filters.Status = &st
	}
	if from := q.Get("from"); from != "" {
		t, err := parseTimeParam(from)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "from must be a date or RFC 3339 timestamp")
			return
		}
		filters.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := parseTimeParam(to)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "to must be a date or RFC 3339 timestamp")
			return
		}
		filters.To = &t
	}

	payments, err := s.svc.Payments.List(r.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("failed to list payments")
		s.respondError(w, http.StatusInternalServerError, "failed to list payments")
		return
	}

	s.respondJSON(w, http.StatusOK, payments)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var payment models.Payment
	if ok, msg := s.decodeJSON(r, &payment); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if payment.PatientID == "" {
		s.respondError(w, http.StatusBadRequest, "patientId is required")
		return
	}
	if payment.Amount <= 0 {
		s.respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	payment.ID = ""
	if payment.Status == "" {
		payment.Status = models.PaymentPaid
	}
	if payment.Date.IsZero() {
		payment.Date = time.Now()
	}

	created, err := s.svc.Payments.Create(r.Context(), &payment)
	if err != nil {
		s.logger.WithError(err).Error("failed to create payment")
		s.respondError(w, http.StatusInternalServerError, "failed to create payment")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	if err := s.svc.Payments.Delete(r.Context(), id); err != nil {
		s.logger.WithError(err).Error("failed to delete payment")
		s.respondError(w, http.StatusInternalServerError, "failed to delete payment")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters repository.FinanceFilters

	if txType := q.Get("type"); txType != "" {
		tt := models.TransactionType(txType)
		filters.Type = &tt
	}
	if from := q.Get("from"); from != "" {
		t, err := parseTimeParam(from)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "from must be a date or RFC 3339 timestamp")
			return
		}
		filters.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := parseTimeParam(to)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "to must be a date or RFC 3339 timestamp")
			return
		}
		filters.To = &t
	}

	transactions, err := s.svc.Finance.List(r.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("failed to list transactions")
		s.respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	s.respondJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx models.FinanceTransaction
	if ok, msg := s.decodeJSON(r, &tx); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if tx.Type != models.TransactionIncome && tx.Type != models.TransactionExpense {
		s.respondError(w, http.StatusBadRequest, "type must be income or expense")
		return
	}
	if tx.Amount <= 0 {
		s.respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	tx.ID = ""
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}

	created, err := s.svc.Finance.Create(r.Context(), &tx)
	if err != nil {
		s.logger.WithError(err).Error("failed to create transaction")
		s.respondError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.svc.Finance.Delete(r.Context(), id); err != nil {
		s.logger.WithError(err).Error("failed to delete transaction")
		s.respondError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	year, month, ok := s.yearMonthParams(w, r)
	if !ok {
		return
	}

	forecast, err := s.svc.ForecastMonth(r.Context(), year, month)
	if err != nil {
		s.logger.WithError(err).Error("failed to build forecast")
		s.respondError(w, http.StatusInternalServerError, "failed to build forecast")
		return
	}

	s.respondJSON(w, http.StatusOK, forecast)
}

// ---------------------------------------------------------------------------
// Health tracker & settings
// ---------------------------------------------------------------------------

func (s *Server) handleGetHealthRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters repository.HealthFilters

	if metric := q.Get("type"); metric != "" {
		m := models.HealthMetric(metric)
		filters.Metric = &m
	}
	if from := q.Get("from"); from != "" {
		t, err := parseTimeParam(from)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "from must be a date or RFC 3339 timestamp")
			return
		}
		filters.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := parseTimeParam(to)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "to must be a date or RFC 3339 timestamp")
			return
		}
		filters.To = &t
	}

	records, err := s.svc.Health.List(r.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("failed to list health records")
		s.respondError(w, http.StatusInternalServerError, "failed to list health records")
		return
	}

	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateHealthRecord(w http.ResponseWriter, r *http.Request) {
	var record models.HealthRecord
	if ok, msg := s.decodeJSON(r, &record); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	switch record.Type {
	case models.MetricWeight, models.MetricWater, models.MetricSleep, models.MetricMood:
	default:
		s.respondError(w, http.StatusBadRequest, "type must be weight, water, sleep or mood")
		return
	}
	record.ID = ""
	if record.Date.IsZero() {
		record.Date = time.Now()
	}

	created, err := s.svc.Health.Create(r.Context(), &record)
	if err != nil {
		s.logger.WithError(err).Error("failed to create health record")
		s.respondError(w, http.StatusInternalServerError, "failed to create health record")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateHealthRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid health record id")
		return
	}

	var record models.HealthRecord
	if ok, msg := s.decodeJSON(r, &record); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	record.ID = id

	updated, err := s.svc.Health.Update(r.Context(), &record)
	if err != nil {
		s.logger.WithError(err).Error("failed to update health record")
		s.respondError(w, http.StatusInternalServerError, "failed to update health record")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteHealthRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid health record id")
		return
	}

	if err := s.svc.Health.Delete(r.Context(), id); err != nil {
		s.logger.WithError(err).Error("failed to delete health record")
		s.respondError(w, http.StatusInternalServerError, "failed to delete health record")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings.Get(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to get settings")
		s.respondError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}

	s.respondJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.UserSettings
	if ok, msg := s.decodeJSON(r, &settings); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.svc.Settings.Save(r.Context(), &settings); err != nil {
		s.logger.WithError(err).Error("failed to save settings")
		s.respondError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	s.respondJSON(w, http.StatusOK, settings)
}

// ---------------------------------------------------------------------------
// Assistant & export
// ---------------------------------------------------------------------------

type assistantParseRequest struct {
	Text          string `json:"text"`
	ReferenceDate string `json:"referenceDate"` // RFC 3339, optional
}

func (s *Server) handleAssistantParse(w http.ResponseWriter, r *http.Request) {
	if s.parser == nil {
		s.respondError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var req assistantParseRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	referenceDate := time.Now()
	if req.ReferenceDate != "" {
		t, err := time.Parse(time.RFC3339, req.ReferenceDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "referenceDate must be RFC 3339 format")
			return
		}
		referenceDate = t
	}

	// The parser receives the upcoming events so the backend can flag
	// conflicts against the real schedule.
	nearby, err := s.svc.Events.List(r.Context(), repository.EventFilters{From: &referenceDate})
	if err != nil {
		s.logger.WithError(err).Error("failed to load events for assistant context")
		s.respondError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	result, err := s.parser.Parse(r.Context(), req.Text, referenceDate, nearby)
	if err != nil {
		s.logger.WithError(err).Error("assistant parse failed")
		s.respondError(w, http.StatusBadGateway, "assistant parse failed")
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.Events.List(r.Context(), repository.EventFilters{})
	if err != nil {
		s.logger.WithError(err).Error("failed to list events for export")
		s.respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	payload, err := ics.Export(events)
	if err != nil {
		s.logger.WithError(err).Error("failed to build ICS export")
		s.respondError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(payload)); err != nil {
		s.logger.WithError(err).Error("failed to write ICS response")
	}
}
