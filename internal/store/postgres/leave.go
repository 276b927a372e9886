package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LeaveChecker answers leave questions from the leave_requests table.
type LeaveChecker struct {
	pool *pgxpool.Pool
}

// NewLeaveChecker returns a LeaveChecker on pool.
func NewLeaveChecker(pool *pgxpool.Pool) *LeaveChecker {
	return &LeaveChecker{pool: pool}
}

// IsOnLeave reports whether employeeID has an approved leave covering date,
// or a pending one as well when includePending is set.
func (l *LeaveChecker) IsOnLeave(ctx context.Context, employeeID string, date time.Time, includePending bool) (bool, error) {
	statuses := []string{"APPROVED"}
	if includePending {
		statuses = append(statuses, "PENDING")
	}

	var onLeave bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM leave_requests
		   WHERE employee_id = $1
		     AND status = ANY($2)
		     AND $3::date BETWEEN start_date AND end_date
		 )`,
		employeeID, statuses, date.UTC().Format(time.DateOnly),
	).Scan(&onLeave)
	if err != nil {
		return false, fmt.Errorf("leave lookup for %s: %w", employeeID, err)
	}
	return onLeave, nil
}
