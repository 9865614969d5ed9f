package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cybershield/internal/importer"
	"cybershield/internal/metrics"
	"cybershield/internal/models"
	"cybershield/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrImportRunning = errors.New("import is already running")

// Result is what one import run produced.
type Result struct {
	Run    *models.ImportRun `json:"run"`
	Report importer.Report   `json:"report"`
}

// Notifier получает отчет о каждом завершенном импорте
type Notifier interface {
	NotifyImport(ctx context.Context, result *Result) error
}

// ImportService runs the importer, records every run and fans the result out to notifiers.
// Only one run executes at a time per process.
type ImportService struct {
	repo     *repository.Repository
	importer *importer.Importer
	metrics  *metrics.Metrics
	log      logrus.FieldLogger

	running   sync.Mutex
	mu        sync.RWMutex
	notifiers []Notifier
	now       func() time.Time
}

func NewImportService(repo *repository.Repository, im *importer.Importer, m *metrics.Metrics, log logrus.FieldLogger) *ImportService {
	return &ImportService{
		repo:     repo,
		importer: im,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Subscribe adds a notifier for later runs.
func (s *ImportService) Subscribe(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiers = append(s.notifiers, n)
}

// Run imports the workbooks once. A failed import still returns its Result with the failed run.
func (s *ImportService) Run(ctx context.Context, trigger string) (*Result, error) {
	if !s.running.TryLock() {
		return nil, ErrImportRunning
	}
	defer s.running.Unlock()

	opts := s.importer.Options()
	run := &models.ImportRun{
		ID:        uuid.New(),
		Trigger:   trigger,
		Source:    s.importer.Source().String(),
		Policy:    opts.Policy.String(),
		Status:    models.ImportRunning,
		StartedAt: s.now(),
	}
	if err := s.repo.CreateImportRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record import run: %w", err)
	}
	log := s.log.WithFields(logrus.Fields{"run": run.ID, "trigger": trigger})
	log.Info("import started")

	report, importErr := s.importer.Import(ctx)

	finished := s.now()
	run.FinishedAt = &finished
	if importErr != nil {
		run.Status = models.ImportFailed
		run.Error = importErr.Error()
		log.WithError(importErr).Error("import failed")
	} else {
		run.Status = models.ImportSucceeded
		run.Countries = report.Countries
		run.Cities = report.Cities
		run.Users = report.Users()
		run.Events = report.Events
		run.Activities = report.Activities
		run.Teams = report.Teams
		if report.Teams > 0 {
			log.WithField("teams", report.Teams).Warn("winner teams are inserted on every run; re-importing the same workbooks duplicates them")
		}
	}
	// The import context may already be cancelled; the run record must still be closed.
	if err := s.repo.UpdateImportRun(context.WithoutCancel(ctx), run); err != nil {
		log.WithError(err).Error("failed to update import run")
	}
	s.metrics.ObserveImport(trigger, finished.Sub(run.StartedAt), report.Counts(), importErr)

	result := &Result{Run: run, Report: report}
	s.notify(ctx, result, log)
	return result, importErr
}

func (s *ImportService) notify(ctx context.Context, result *Result, log logrus.FieldLogger) {
	s.mu.RLock()
	notifiers := append([]Notifier(nil), s.notifiers...)
	s.mu.RUnlock()

	for _, n := range notifiers {
		if err := n.NotifyImport(ctx, result); err != nil {
			log.WithError(err).Warnf("notifier %T failed", n)
		}
	}
}

// Runs returns the latest import runs, newest first.
func (s *ImportService) Runs(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListImportRuns(ctx, limit)
}

// GetRun returns one recorded run.
func (s *ImportService) GetRun(ctx context.Context, id uuid.UUID) (*models.ImportRun, error) {
	return s.repo.GetImportRun(ctx, id)
}

// Importer exposes the configured importer, for example to show its layouts.
func (s *ImportService) Importer() *importer.Importer {
	return s.importer
}
