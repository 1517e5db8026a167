package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
	"github.com/eteeap/admissions-api/pkg/export"
	"github.com/eteeap/admissions-api/pkg/jobs"
	"github.com/eteeap/admissions-api/pkg/storage"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string) error
	MarkFailed(ctx context.Context, id, errorMessage string) error
}

type reportApplicantStore interface {
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
	List(ctx context.Context, filter models.ApplicantFilter) ([]models.Applicant, int, error)
}

type reportEvaluationStore interface {
	ListForApplicant(ctx context.Context, applicantID string) ([]models.Evaluation, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// ReportService orchestrates asynchronous evaluation-summary PDF generation
// and the synchronous roster CSV export.
type ReportService struct {
	reports    reportJobStore
	applicants reportApplicantStore
	queue      jobDispatcher
	store      *storage.LocalStorage
	signer     *storage.SignedURLSigner
	csv        *export.CSVExporter
	logger     *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(reports reportJobStore, applicants reportApplicantStore, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:    reports,
		applicants: applicants,
		store:      store,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		logger:     logger,
	}
}

// AttachQueue wires the dispatcher after construction; the queue handler
// needs the worker, which needs this service's stores.
func (s *ReportService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// Enqueue records a report job for the applicant and hands it to the worker
// pool.
func (s *ReportService) Enqueue(ctx context.Context, applicantID, requestedBy string) (*dto.ReportJobResponse, error) {
	if _, err := s.applicants.FindByID(ctx, applicantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "applicant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant")
	}

	job := &models.ReportJob{
		ApplicantID: applicantID,
		RequestedBy: requestedBy,
		Status:      models.ReportStatusQueued,
	}
	if err := s.reports.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	if s.queue == nil {
		return nil, appErrors.Wrap(fmt.Errorf("report queue not attached"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "report worker unavailable")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "evaluation_summary"}); err != nil {
		if markErr := s.reports.MarkFailed(ctx, job.ID, "failed to enqueue"); markErr != nil {
			s.logger.Warn("failed to mark report job failed", zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	return s.jobResponse(job), nil
}

// Status reports the job lifecycle; completed jobs include a signed download
// token.
func (s *ReportService) Status(ctx context.Context, jobID string) (*dto.ReportJobResponse, error) {
	job, err := s.reports.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return s.jobResponse(job), nil
}

// ResolveDownload validates a signed token and opens the stored PDF.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	job, err := s.reports.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.Status != models.ReportStatusCompleted || job.FilePath == nil || *job.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return &ReportDownload{File: file, Filename: filepath.Base(relPath), ExpiresAt: expiresAt}, nil
}

// RosterCSV renders the filtered applicant roster as CSV bytes. The export
// walks every page so rosters larger than one page are not truncated.
func (s *ReportService) RosterCSV(ctx context.Context, filter models.ApplicantFilter) ([]byte, error) {
	filter.Page = 1
	filter.PageSize = 200

	data := export.Dataset{
		Headers: []string{"Applicant No", "Name", "Course", "Status", "Final Score", "Applied"},
	}
	for {
		applicants, total, err := s.applicants.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
		}
		for i := range applicants {
			a := &applicants[i]
			score := ""
			if a.FinalScore != nil {
				score = fmt.Sprintf("%d", *a.FinalScore)
			}
			data.Rows = append(data.Rows, map[string]string{
				"Applicant No": a.ApplicantNo,
				"Name":         a.DisplayName(),
				"Course":       a.Course(),
				"Status":       string(a.Status),
				"Final Score":  score,
				"Applied":      a.CreatedAt.Format("2006-01-02"),
			})
		}
		if len(applicants) == 0 || len(data.Rows) >= total {
			break
		}
		filter.Page++
	}
	return s.csv.Render(data)
}

func (s *ReportService) jobResponse(job *models.ReportJob) *dto.ReportJobResponse {
	resp := &dto.ReportJobResponse{
		ID:          job.ID,
		ApplicantID: job.ApplicantID,
		Status:      job.Status,
		Error:       job.ErrorMessage,
		CreatedAt:   job.CreatedAt,
	}
	if job.Status == models.ReportStatusCompleted && job.FilePath != nil {
		token, expiresAt, err := s.signer.Generate(job.ID, *job.FilePath)
		if err != nil {
			s.logger.Warn("failed to sign download token", zap.Error(err))
		} else {
			resp.DownloadToken = token
			resp.ExpiresAt = &expiresAt
		}
	}
	return resp
}

// ReportWorker bridges queue jobs to PDF generation.
type ReportWorker struct {
	reports     reportJobStore
	applicants  reportApplicantStore
	evaluations reportEvaluationStore
	store       *storage.LocalStorage
	pdf         *export.PDFExporter
	logger      *zap.Logger
	maxRetries  int
}

// NewReportWorker constructs a worker.
func NewReportWorker(reports reportJobStore, applicants reportApplicantStore, evaluations reportEvaluationStore, store *storage.LocalStorage, maxRetries int, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReportWorker{
		reports:     reports,
		applicants:  applicants,
		evaluations: evaluations,
		store:       store,
		pdf:         export.NewPDFExporter(),
		logger:      logger,
		maxRetries:  maxRetries,
	}
}

// Handle renders the evaluation summary PDF for one queued job.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.reports.FindByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if err := w.reports.MarkProcessing(ctx, job.ID); err != nil {
		return err
	}

	data, err := w.render(ctx, record)
	if err != nil {
		if job.Attempt >= w.maxRetries {
			if markErr := w.reports.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
				w.logger.Warn("failed to mark report job failed", zap.Error(markErr))
			}
		}
		return err
	}

	relPath := fmt.Sprintf("reports/%s.pdf", record.ID)
	if _, err := w.store.Save(relPath, data); err != nil {
		if job.Attempt >= w.maxRetries {
			if markErr := w.reports.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
				w.logger.Warn("failed to mark report job failed", zap.Error(markErr))
			}
		}
		return err
	}

	if err := w.reports.MarkCompleted(ctx, job.ID, relPath); err != nil {
		return err
	}
	w.logger.Info("report generated", zap.String("job_id", job.ID), zap.String("path", relPath))
	return nil
}

func (w *ReportWorker) render(ctx context.Context, record *models.ReportJob) ([]byte, error) {
	applicant, err := w.applicants.FindByID(ctx, record.ApplicantID)
	if err != nil {
		return nil, fmt.Errorf("load applicant: %w", err)
	}
	evaluations, err := w.evaluations.ListForApplicant(ctx, record.ApplicantID)
	if err != nil {
		return nil, fmt.Errorf("load evaluations: %w", err)
	}

	summary := []export.SummaryLine{
		{Label: "Applicant No", Value: applicant.ApplicantNo},
		{Label: "Name", Value: applicant.DisplayName()},
		{Label: "Course", Value: applicant.Course()},
		{Label: "Status", Value: string(applicant.Status)},
	}
	if applicant.FinalScore != nil {
		summary = append(summary, export.SummaryLine{Label: "Final Score", Value: fmt.Sprintf("%d / 100", *applicant.FinalScore)})
	}

	data := export.Dataset{
		Headers: []string{"Evaluated", "Education", "Work", "Achievements", "Interview", "Total", "Result", "Status"},
	}
	for i := range evaluations {
		e := &evaluations[i]
		result := "Failed"
		if e.IsPassed {
			result = "Passed"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Evaluated":    e.EvaluatedAt.Format("2006-01-02"),
			"Education":    fmt.Sprintf("%d/%d", e.Education.Score, models.MaxEducationScore),
			"Work":         fmt.Sprintf("%d/%d", e.Work.Score, models.MaxWorkScore),
			"Achievements": fmt.Sprintf("%d/%d", e.Achievements.Score, models.MaxAchievementsScore),
			"Interview":    fmt.Sprintf("%d/%d", e.Interview.Score, models.MaxInterviewScore),
			"Total":        fmt.Sprintf("%d", e.TotalScore),
			"Result":       result,
			"Status":       string(e.Status),
		})
	}

	return w.pdf.Render("Evaluation Summary", summary, data)
}
