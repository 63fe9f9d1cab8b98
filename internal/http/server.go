package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"examdesk/seating/internal/allocate"
	"examdesk/seating/internal/attendance"
	"examdesk/seating/internal/catalog"
	"examdesk/seating/internal/config"
	"examdesk/seating/internal/export"
	"examdesk/seating/internal/model"
	"examdesk/seating/internal/roster"
	"examdesk/seating/internal/store"
)

type Server struct {
	cfg      config.Config
	store    store.Store
	catalog  catalog.Catalog
	recorder attendance.Recorder
	exporter *export.Exporter
	redis    *redis.Client
	logger   *zap.Logger
	metrics  *metrics

	reportMu sync.RWMutex
	reports  map[model.Slot]runReport
}

func NewServer(cfg config.Config, st store.Store, cat catalog.Catalog, recorder attendance.Recorder, redisClient *redis.Client, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		store:    st,
		catalog:  cat,
		recorder: recorder,
		exporter: export.NewExporter(st, cat),
		redis:    redisClient,
		logger:   logger,
		metrics:  newMetrics(),
		reports:  make(map[model.Slot]runReport),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.handler())

	r.Post("/allocations/{slot}", s.handleRunAllocation)
	r.Get("/allocations/{slot}/report", s.handleGetReport)
	r.Get("/allocations/{slot}/documents", s.handleGetDocuments)
	r.Get("/rooms/{roomNo}/students", s.handleGetRoomStudents)
	r.Get("/rooms/{roomNo}/attendance", s.handleGetRoomAttendance)

	return r
}

// Run report

type runReport struct {
	RunID     string                      `json:"run_id"`
	Slot      model.Slot                  `json:"slot"`
	Version   int64                       `json:"version"`
	CreatedAt time.Time                   `json:"created_at"`
	Accepted  int                         `json:"accepted_rows"`
	Rejects   []roster.RowError           `json:"rejected_rows"`
	Conflicts []allocate.Conflict         `json:"conflicts"`
	Adjacency []allocate.AdjacencyWarning `json:"adjacency_warnings"`
}

type errorPayload struct {
	Error   string            `json:"error"`
	Detail  string            `json:"detail,omitempty"`
	Rejects []roster.RowError `json:"rejected_rows,omitempty"`
}

// Handlers

func (s *Server) handleRunAllocation(w http.ResponseWriter, r *http.Request) {
	slot, err := model.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_slot")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file")
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := roster.DecodeRows(header.Filename, file)
	if err != nil {
		s.writeDecodeError(w, err)
		return
	}

	ctx := r.Context()
	exams, err := s.catalog.GetExamsInSlot(ctx, slot)
	if err != nil {
		s.logger.Error("exam lookup failed", zap.String("slot", string(slot)), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable")
		return
	}
	rooms, err := s.catalog.GetRoomsOrderedByNumber(ctx)
	if err != nil {
		s.logger.Error("room lookup failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable")
		return
	}

	enrollments, rejects := roster.NewIngestor(slot, exams).Ingest(rows)
	s.metrics.rejectedRows.Add(float64(len(rejects)))
	if len(enrollments) == 0 {
		s.metrics.observeRun(slot, "no_valid_rows")
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "no_valid_rows", Rejects: rejects})
		return
	}

	conflicts := allocate.DetectConflicts(enrollments)

	result, err := allocate.Allocate(enrollments, rooms, slot)
	if err != nil {
		var allocErr *allocate.Error
		if errors.As(err, &allocErr) {
			s.metrics.observeRun(slot, allocErr.Code)
			writeJSON(w, http.StatusConflict, errorPayload{Error: allocErr.Code, Detail: allocErr.Error(), Rejects: rejects})
			return
		}
		s.metrics.observeRun(slot, "server_error")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	// Client gone: discard the run before anything is written.
	if err := ctx.Err(); err != nil {
		s.metrics.observeRun(slot, "cancelled")
		return
	}

	version, err := s.store.Commit(ctx, slot, result.Assignments)
	if err != nil {
		s.logger.Error("commit failed", zap.String("slot", string(slot)), zap.Error(err))
		s.metrics.observeRun(slot, "store_error")
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}

	if s.recorder != nil {
		if err := s.recorder.Seed(ctx, slot, result.Assignments); err != nil {
			// The allocation is committed; check-in seeding can be redone.
			s.logger.Warn("attendance seeding failed", zap.String("slot", string(slot)), zap.Error(err))
		}
	}

	report := runReport{
		RunID:     uuid.NewString(),
		Slot:      slot,
		Version:   version,
		CreatedAt: time.Now().UTC(),
		Accepted:  len(enrollments),
		Rejects:   rejects,
		Conflicts: conflicts,
		Adjacency: result.Warnings,
	}
	s.saveReport(ctx, report)

	archive, err := s.exporter.Export(ctx, slot)
	if err != nil {
		s.logger.Error("export failed", zap.String("slot", string(slot)), zap.Error(err))
		s.metrics.observeRun(slot, "export_error")
		writeError(w, http.StatusInternalServerError, "export_failed")
		return
	}
	s.cacheArchive(ctx, slot, version, archive)
	s.metrics.observeRun(slot, "ok")

	s.logger.Info("allocation committed",
		zap.String("slot", string(slot)),
		zap.Int64("version", version),
		zap.Int("seated", len(result.Assignments)),
		zap.Int("rejected", len(rejects)),
		zap.Int("conflicts", len(conflicts)),
		zap.Int("adjacency_warnings", len(result.Warnings)),
	)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ArchiveName(slot)))
	w.Header().Set("X-Allocation-Version", strconv.FormatInt(version, 10))
	w.Header().Set("X-Rejected-Rows", strconv.Itoa(len(rejects)))
	w.Header().Set("X-Conflict-Students", strconv.Itoa(len(conflicts)))
	w.Header().Set("X-Adjacency-Warnings", strconv.Itoa(len(result.Warnings)))
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write(archive)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	slot, err := model.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_slot")
		return
	}
	report, ok := s.loadReport(r.Context(), slot)
	if !ok {
		writeError(w, http.StatusNotFound, "report_not_found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetDocuments(w http.ResponseWriter, r *http.Request) {
	slot, err := model.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_slot")
		return
	}
	ctx := r.Context()

	version, err := s.store.CurrentVersion(ctx, slot)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	if version == 0 {
		writeError(w, http.StatusNotFound, "no_allocation")
		return
	}

	archive, ok := s.cachedArchive(ctx, slot, version)
	if !ok {
		archive, err = s.exporter.Export(ctx, slot)
		if errors.Is(err, export.ErrNoAllocation) {
			writeError(w, http.StatusNotFound, "no_allocation")
			return
		}
		if err != nil {
			s.logger.Error("export failed", zap.String("slot", string(slot)), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "export_failed")
			return
		}
		s.cacheArchive(ctx, slot, version, archive)
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ArchiveName(slot)))
	w.Header().Set("X-Allocation-Version", strconv.FormatInt(version, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

type roomStudentEntry struct {
	SeatNo       int    `json:"seat_no"`
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	StudentBatch string `json:"student_batch"`
	CourseCode   string `json:"exam_course_code"`
}

func (s *Server) handleGetRoomStudents(w http.ResponseWriter, r *http.Request) {
	roomNo := chi.URLParam(r, "roomNo")
	slot, err := model.ParseSlot(r.URL.Query().Get("exam_time"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_slot")
		return
	}

	assignments, err := s.store.Lookup(r.Context(), roomNo, slot)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	if len(assignments) == 0 {
		writeError(w, http.StatusNotFound, "room_not_allocated")
		return
	}

	entries := make([]roomStudentEntry, 0, len(assignments))
	for _, a := range assignments {
		entries = append(entries, roomStudentEntry{
			SeatNo:       a.SeatNo,
			StudentID:    a.StudentID,
			StudentName:  a.StudentName,
			StudentBatch: a.StudentBatch,
			CourseCode:   a.CourseCode,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetRoomAttendance(w http.ResponseWriter, r *http.Request) {
	roomNo := chi.URLParam(r, "roomNo")
	slot, err := model.ParseSlot(r.URL.Query().Get("exam_time"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_slot")
		return
	}
	if s.recorder == nil {
		writeError(w, http.StatusNotFound, "attendance_not_available")
		return
	}
	records, err := s.recorder.ListByRoom(r.Context(), roomNo, slot)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "room_not_allocated")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Report storage. Redis carries reports across instances with a TTL; the
// in-process map keeps the latest run per slot when redis is not wired.

func (s *Server) saveReport(ctx context.Context, report runReport) {
	s.reportMu.Lock()
	s.reports[report.Slot] = report
	s.reportMu.Unlock()

	if s.redis == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, reportKey(report.Slot), data, s.cfg.ReportTTL).Err(); err != nil {
		s.logger.Warn("report cache write failed", zap.String("slot", string(report.Slot)), zap.Error(err))
	}
}

func (s *Server) loadReport(ctx context.Context, slot model.Slot) (runReport, bool) {
	if s.redis != nil {
		value, err := s.redis.Get(ctx, reportKey(slot)).Result()
		if err == nil {
			var report runReport
			if err := json.Unmarshal([]byte(value), &report); err == nil {
				return report, true
			}
		} else if err != redis.Nil {
			s.logger.Warn("report cache read failed", zap.String("slot", string(slot)), zap.Error(err))
		}
	}

	s.reportMu.RLock()
	defer s.reportMu.RUnlock()
	report, ok := s.reports[slot]
	return report, ok
}

func reportKey(slot model.Slot) string {
	return fmt.Sprintf("allocation_report:%s", slot)
}

// Archive cache, keyed by slot and version so a new commit invalidates
// prior entries without explicit deletes.

func (s *Server) cacheArchive(ctx context.Context, slot model.Slot, version int64, archive []byte) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, archiveKey(slot, version), archive, s.cfg.ArchiveCacheTTL).Err(); err != nil {
		s.logger.Warn("archive cache write failed", zap.String("slot", string(slot)), zap.Error(err))
	}
}

func (s *Server) cachedArchive(ctx context.Context, slot model.Slot, version int64) ([]byte, bool) {
	if s.redis == nil {
		return nil, false
	}
	value, err := s.redis.Get(ctx, archiveKey(slot, version)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("archive cache read failed", zap.String("slot", string(slot)), zap.Error(err))
		return nil, false
	}
	return value, true
}

func archiveKey(slot model.Slot, version int64) string {
	return fmt.Sprintf("seating_archive:%s:%d", slot, version)
}

// Utilities

func (s *Server) writeDecodeError(w http.ResponseWriter, err error) {
	var missing *roster.MissingColumnsError
	switch {
	case errors.Is(err, roster.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "unsupported_file_format")
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "missing_columns", Detail: missing.Error()})
	case errors.Is(err, roster.ErrNoRows):
		writeError(w, http.StatusBadRequest, "empty_roster")
	default:
		writeError(w, http.StatusBadRequest, "invalid_roster_file")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
