package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"paydesk/internal/domain/salary"
	"paydesk/internal/platform/cache"
)

const keyPrefix = "dashboard:"

// PayrollTotals sums net pay for a canonical month token.
type PayrollTotals interface {
	MonthTotal(ctx context.Context, monthYear string) (string, decimal.Decimal, error)
}

type Service struct {
	Store   StoreAPI
	Payroll PayrollTotals
	Cache   cache.Cache
	TTL     time.Duration
	now     func() time.Time
}

func NewService(store StoreAPI, payroll PayrollTotals, c cache.Cache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{Store: store, Payroll: payroll, Cache: c, TTL: ttl, now: time.Now}
}

func Key(metric, period string) string {
	return keyPrefix + metric + ":" + period
}

func (s *Service) today() time.Time {
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// cached loads key into dest, falling back to load and storing its result.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var out T
	err := s.Cache.GetJSON(ctx, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("dashboard cache read failed", "key", key, "err", err)
	}
	out, err = load()
	if err != nil {
		return out, err
	}
	if s.TTL > 0 {
		if err := s.Cache.SetJSON(ctx, key, out, s.TTL); err != nil {
			slog.Warn("dashboard cache write failed", "key", key, "err", err)
		}
	}
	return out, nil
}

func (s *Service) TotalEmployees(ctx context.Context) (int, error) {
	day := s.today().Format("2006-01-02")
	return cached(ctx, s, Key("total-employees", day), func() (int, error) {
		return s.Store.ActiveEmployees(ctx)
	})
}

func (s *Service) attendance(ctx context.Context) (AttendanceCounts, error) {
	day := s.today()
	return cached(ctx, s, Key("attendance", day.Format("2006-01-02")), func() (AttendanceCounts, error) {
		return s.Store.AttendanceCounts(ctx, day)
	})
}

func (s *Service) PresentToday(ctx context.Context) (int, error) {
	counts, err := s.attendance(ctx)
	if err != nil {
		return 0, err
	}
	return counts.Present, nil
}

// AbsentToday treats active employees without a Present row as absent.
func (s *Service) AbsentToday(ctx context.Context) (Absence, error) {
	total, err := s.TotalEmployees(ctx)
	if err != nil {
		return Absence{}, err
	}
	counts, err := s.attendance(ctx)
	if err != nil {
		return Absence{}, err
	}
	absent := total - counts.Present
	if absent < 0 {
		absent = 0
	}
	unmarked := absent - counts.Absent
	if unmarked < 0 {
		unmarked = 0
	}
	return Absence{Count: absent, Marked: counts.Absent, Unmarked: unmarked}, nil
}

// MonthlyPayroll totals net pay for monthYear, or the current month when empty.
func (s *Service) MonthlyPayroll(ctx context.Context, monthYear string) (Payroll, error) {
	if monthYear == "" {
		monthYear = salary.MonthOf(s.today())
	}
	monthYear, err := salary.NormalizeMonth(monthYear)
	if err != nil {
		return Payroll{}, err
	}
	return cached(ctx, s, Key("payroll", monthYear), func() (Payroll, error) {
		month, total, err := s.Payroll.MonthTotal(ctx, monthYear)
		if err != nil {
			return Payroll{}, err
		}
		return Payroll{MonthYear: month, Total: total}, nil
	})
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	total, err := s.TotalEmployees(ctx)
	if err != nil {
		return Summary{}, err
	}
	present, err := s.PresentToday(ctx)
	if err != nil {
		return Summary{}, err
	}
	absent, err := s.AbsentToday(ctx)
	if err != nil {
		return Summary{}, err
	}
	payroll, err := s.MonthlyPayroll(ctx, "")
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Date:           s.today().Format("2006-01-02"),
		TotalEmployees: total,
		PresentToday:   present,
		AbsentToday:    absent,
		MonthlyPayroll: payroll,
	}, nil
}

func (s *Service) invalidate(ctx context.Context, prefix string) {
	if err := s.Cache.DeletePrefix(ctx, prefix); err != nil {
		slog.Warn("dashboard cache invalidation failed", "prefix", prefix, "err", err)
	}
}

func (s *Service) InvalidateAttendance(ctx context.Context) {
	s.invalidate(ctx, keyPrefix+"attendance:")
}

func (s *Service) InvalidateSalary(ctx context.Context) {
	s.invalidate(ctx, keyPrefix+"payroll:")
}

func (s *Service) InvalidateEmployees(ctx context.Context) {
	s.invalidate(ctx, keyPrefix)
}
