package jobs

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

type Run struct {
	ID          string          `json:"id"`
	JobType     string          `json:"jobType"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details,omitempty"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt"`
}

type RunFilter struct {
	JobType string
	Status  string
}

func buildRunsQuery(prefix string, filter RunFilter) (string, []any) {
	query := prefix + " FROM job_runs WHERE true"
	var args []any
	if filter.JobType != "" {
		args = append(args, filter.JobType)
		query += " AND job_type = $" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	return query, args
}

func (s *Service) CountRuns(ctx context.Context, filter RunFilter) (int, error) {
	if s.DB == nil {
		return 0, nil
	}
	query, args := buildRunsQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ListRuns returns recorded runs, newest first.
func (s *Service) ListRuns(ctx context.Context, filter RunFilter, limit, offset int) ([]Run, error) {
	if s.DB == nil {
		return []Run{}, nil
	}
	query, args := buildRunsQuery("SELECT id::text, job_type, status, details_json, started_at, completed_at", filter)
	query += " ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var details []byte
		if err := rows.Scan(&run.ID, &run.JobType, &run.Status, &details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			run.Details = json.RawMessage(details)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
