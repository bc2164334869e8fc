package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"paydesk/internal/platform/config"
	"paydesk/internal/platform/metrics"
	"paydesk/internal/platform/querier"
)

const (
	JobSalaryGeneration = "salary_generation"
	JobMaintenance      = "maintenance"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunFunc performs one job and returns details stored alongside the run.
type RunFunc func(context.Context) (any, error)

type Service struct {
	DB      querier.Querier
	Cfg     config.Config
	Metrics *metrics.Collector

	queue     chan job
	scheduler *cron.Cron
	now       func() time.Time

	// Generate produces the payroll for a month token; used by the cron entry.
	Generate func(ctx context.Context, monthYear string) (any, error)

	// Maintenance runs on MaintenanceCron, e.g. purging expired idempotency keys.
	Maintenance RunFunc
}

type job struct {
	Type string
	Run  RunFunc
}

func New(db querier.Querier, cfg config.Config, collector *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Metrics: collector,
		queue:   make(chan job, 128),
		now:     time.Now,
	}
}

func (s *Service) Start(ctx context.Context) error {
	go s.worker(ctx)
	scheduler := cron.New()
	scheduled := 0
	if s.Cfg.SalaryCron != "" && s.Generate != nil {
		if _, err := scheduler.AddFunc(s.Cfg.SalaryCron, s.enqueueCurrentMonth); err != nil {
			return fmt.Errorf("schedule salary generation: %w", err)
		}
		slog.Info("salary generation scheduled", "cron", s.Cfg.SalaryCron)
		scheduled++
	}
	if s.Cfg.MaintenanceCron != "" && s.Maintenance != nil {
		if _, err := scheduler.AddFunc(s.Cfg.MaintenanceCron, func() { s.Enqueue(JobMaintenance, s.Maintenance) }); err != nil {
			return fmt.Errorf("schedule maintenance: %w", err)
		}
		slog.Info("maintenance scheduled", "cron", s.Cfg.MaintenanceCron)
		scheduled++
	}
	if scheduled == 0 {
		return nil
	}
	s.scheduler = scheduler
	s.scheduler.Start()
	return nil
}

// Stop halts the cron scheduler and waits for a running entry to return.
func (s *Service) Stop() {
	if s.scheduler == nil {
		return
	}
	<-s.scheduler.Stop().Done()
}

func (s *Service) enqueueCurrentMonth() {
	monthYear := s.now().Format("2006-01")
	generate := s.Generate
	s.Enqueue(JobSalaryGeneration, func(ctx context.Context) (any, error) {
		return generate(ctx, monthYear)
	})
}

func (s *Service) Enqueue(jobType string, run RunFunc) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
			INSERT INTO job_runs (job_type, status)
			VALUES ($1, $2)
			RETURNING id
		`, j.Type, StatusRunning).Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error()}
	}
	s.Metrics.RecordJob(j.Type, err != nil)

	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
			UPDATE job_runs
			SET status = $1, details_json = $2, completed_at = now()
			WHERE id = $3
		`, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}
