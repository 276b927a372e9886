package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"hrdesk/recruitment-service/internal/common"
	"hrdesk/recruitment-service/internal/domain/offer"
)

const offerColumns = `id, application_id, candidate_id, position, gross_salary, bonus, benefits,
	approvers, applicant_response, final_status, deadline, signed_at, response_reason,
	expiry_notified_at, COALESCE(created_by, ''), created_at, updated_at`

func scanOffer(row pgx.Row) (offer.Offer, error) {
	var (
		o                   offer.Offer
		benefits, approvers []byte
	)
	err := row.Scan(
		&o.ID, &o.ApplicationID, &o.CandidateID, &o.Position, &o.GrossSalary, &o.Bonus, &benefits,
		&approvers, &o.ApplicantResponse, &o.FinalStatus, &o.Deadline, &o.SignedAt, &o.ResponseReason,
		&o.ExpiryNotifiedAt, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(benefits, &o.Benefits); err != nil {
		return o, fmt.Errorf("decode benefits: %w", err)
	}
	if err := json.Unmarshal(approvers, &o.Approvers); err != nil {
		return o, fmt.Errorf("decode approvers: %w", err)
	}
	return o, nil
}

func encodeOfferJSON(o *offer.Offer) (benefits, approvers []byte, err error) {
	b := o.Benefits
	if b == nil {
		b = []string{}
	}
	a := o.Approvers
	if a == nil {
		a = []offer.Approver{}
	}
	if benefits, err = json.Marshal(b); err != nil {
		return nil, nil, fmt.Errorf("encode benefits: %w", err)
	}
	if approvers, err = json.Marshal(a); err != nil {
		return nil, nil, fmt.Errorf("encode approvers: %w", err)
	}
	return benefits, approvers, nil
}

func (s *Store) CreateOffer(ctx context.Context, o *offer.Offer) error {
	benefits, approvers, err := encodeOfferJSON(o)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO offers
		   (id, application_id, candidate_id, position, gross_salary, bonus, benefits, approvers,
		    applicant_response, final_status, deadline, signed_at, response_reason,
		    expiry_notified_at, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.ID, o.ApplicationID, o.CandidateID, o.Position, o.GrossSalary, o.Bonus, string(benefits), string(approvers),
		string(o.ApplicantResponse), string(o.FinalStatus), o.Deadline, o.SignedAt, o.ResponseReason,
		o.ExpiryNotifiedAt, nullIfEmpty(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func (s *Store) GetOffer(ctx context.Context, id string) (*offer.Offer, error) {
	o, err := scanOffer(s.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "offer", id, "get offer")
	}
	return &o, nil
}

func (s *Store) UpdateOffer(ctx context.Context, o *offer.Offer) error {
	benefits, approvers, err := encodeOfferJSON(o)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE offers
		 SET position = $1, gross_salary = $2, bonus = $3, benefits = $4::jsonb, approvers = $5::jsonb,
		     applicant_response = $6, final_status = $7, deadline = $8, signed_at = $9,
		     response_reason = $10, expiry_notified_at = $11, updated_at = $12
		 WHERE id = $13`,
		o.Position, o.GrossSalary, o.Bonus, string(benefits), string(approvers),
		string(o.ApplicantResponse), string(o.FinalStatus), o.Deadline, o.SignedAt,
		o.ResponseReason, o.ExpiryNotifiedAt, o.UpdatedAt, o.ID,
	)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("offer", o.ID)
	}
	return nil
}

// ListExpiredUnanswered returns approved offers still awaiting the candidate
// whose deadline is before now and that have not been flagged yet.
func (s *Store) ListExpiredUnanswered(ctx context.Context, now time.Time) ([]offer.Offer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+offerColumns+`
		 FROM offers
		 WHERE final_status = 'APPROVED'
		   AND applicant_response = 'PENDING'
		   AND deadline < $1
		   AND expiry_notified_at IS NULL
		 ORDER BY deadline`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("list expired offers: %w", err)
	}
	defer rows.Close()

	out := make([]offer.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
