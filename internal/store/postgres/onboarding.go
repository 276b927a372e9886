package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/onboarding"
)

const onboardingColumns = `id, employee_id, offer_id, contract_id, tasks, start_date,
	completed, completed_at, completion_notified_at, created_at, updated_at`

func scanOnboarding(row pgx.Row) (onboarding.Onboarding, error) {
	var (
		o     onboarding.Onboarding
		tasks []byte
	)
	err := row.Scan(
		&o.ID, &o.EmployeeID, &o.OfferID, &o.ContractID, &tasks, &o.StartDate,
		&o.Completed, &o.CompletedAt, &o.CompletionNotifiedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(tasks, &o.Tasks); err != nil {
		return o, fmt.Errorf("decode tasks: %w", err)
	}
	return o, nil
}

func encodeTasks(tasks []onboarding.Task) (string, error) {
	if tasks == nil {
		tasks = []onboarding.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	return string(b), nil
}

func (s *Store) CreateContract(ctx context.Context, c *onboarding.Contract) error {
	benefits := c.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	b, err := json.Marshal(benefits)
	if err != nil {
		return fmt.Errorf("encode benefits: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO contracts
		   (id, offer_id, candidate_id, role, gross_salary, bonus, benefits, start_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)`,
		c.ID, c.OfferID, c.CandidateID, c.Role, c.GrossSalary, c.Bonus, string(b), c.StartDate, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

func (s *Store) CreateOnboarding(ctx context.Context, o *onboarding.Onboarding) error {
	tasks, err := encodeTasks(o.Tasks)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO onboardings
		   (id, employee_id, offer_id, contract_id, tasks, start_date, completed, completed_at,
		    completion_notified_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.EmployeeID, o.OfferID, o.ContractID, tasks, o.StartDate,
		o.Completed, o.CompletedAt, o.CompletionNotifiedAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert onboarding: %w", err)
	}
	return nil
}

func (s *Store) GetOnboarding(ctx context.Context, id string) (*onboarding.Onboarding, error) {
	o, err := scanOnboarding(s.pool.QueryRow(ctx, `SELECT `+onboardingColumns+` FROM onboardings WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "onboarding", id, "get onboarding")
	}
	return &o, nil
}

func (s *Store) FindOnboardingByOffer(ctx context.Context, offerID string) (*onboarding.Onboarding, error) {
	o, err := scanOnboarding(s.pool.QueryRow(ctx, `SELECT `+onboardingColumns+` FROM onboardings WHERE offer_id = $1`, offerID))
	if err != nil {
		return nil, notFound(err, "onboarding for offer", offerID, "find onboarding")
	}
	return &o, nil
}

func (s *Store) UpdateOnboarding(ctx context.Context, o *onboarding.Onboarding) error {
	tasks, err := encodeTasks(o.Tasks)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE onboardings
		 SET tasks = $1::jsonb, start_date = $2, completed = $3, completed_at = $4,
		     completion_notified_at = $5, updated_at = $6
		 WHERE id = $7`,
		tasks, o.StartDate, o.Completed, o.CompletedAt, o.CompletionNotifiedAt, o.UpdatedAt, o.ID,
	)
	if err != nil {
		return fmt.Errorf("update onboarding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("onboarding", o.ID)
	}
	return nil
}

func (s *Store) ListOpenOnboardings(ctx context.Context) ([]onboarding.Onboarding, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+onboardingColumns+` FROM onboardings WHERE NOT completed ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list open onboardings: %w", err)
	}
	defer rows.Close()

	out := make([]onboarding.Onboarding, 0)
	for rows.Next() {
		o, err := scanOnboarding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan onboarding: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
