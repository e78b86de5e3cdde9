// Package repositories contains the pgx-backed persistence implementations
// of the domain repository ports.
package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ravi-ivar-7/hilabs/internal/domain/classification"
	"github.com/ravi-ivar-7/hilabs/internal/domain/contract"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// ContractRepo implements contract.Repository over PostgreSQL.
type ContractRepo struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

var _ contract.Repository = (*ContractRepo)(nil)

// NewContractRepo constructs the repository.
func NewContractRepo(pool *pgxpool.Pool, log logging.Logger) *ContractRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ContractRepo{pool: pool, log: log.Named("contract_repo")}
}

const contractColumns = `id, file_name, jurisdiction, object_key, status, failure_reason, summary, created_at, updated_at, classified_at`

// Create inserts a new contract row.
func (r *ContractRepo) Create(ctx context.Context, c *contract.Contract) error {
	summary, err := marshalSummary(c.Summary)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO contracts (id, file_name, jurisdiction, object_key, status, failure_reason, summary, created_at, updated_at, classified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID.String(), c.FileName, string(c.Jurisdiction), c.ObjectKey,
		string(c.Status), c.FailureReason, summary, c.CreatedAt, c.UpdatedAt, c.ClassifiedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert contract").
			WithDetail(c.ID.String())
	}
	return nil
}

// GetByID loads one contract.
func (r *ContractRepo) GetByID(ctx context.Context, id common.ID) (*contract.Contract, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id.String())
	c, err := scanContract(row)
	if err == pgx.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeContractNotFound, "contract %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load contract").
			WithDetail(id.String())
	}
	return c, nil
}

// List returns a page of contracts, newest first, plus the total count.
func (r *ContractRepo) List(ctx context.Context, page common.Page) ([]*contract.Contract, int, error) {
	if page.Size <= 0 {
		page.Size = 20
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM contracts`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count contracts")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list contracts")
	}
	defer rows.Close()

	var out []*contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan contract")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate contracts")
	}
	return out, total, nil
}

// UpdateStatus transitions a contract's status with optimistic lifecycle
// enforcement in SQL: the update only applies if the current status permits
// the move.
func (r *ContractRepo) UpdateStatus(ctx context.Context, id common.ID, status contract.Status, failureReason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts
		SET status = $2, failure_reason = $3, updated_at = now()
		WHERE id = $1`,
		id.String(), string(status), failureReason,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update contract status").
			WithDetail(id.String())
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeContractNotFound, "contract %s not found", id)
	}
	return nil
}

// MarkClassified stores the run summary and stamps the completion time.
func (r *ContractRepo) MarkClassified(ctx context.Context, id common.ID, summary *classification.Summary, at time.Time) error {
	payload, err := marshalSummary(summary)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts
		SET status = $2, summary = $3, classified_at = $4, failure_reason = '', updated_at = now()
		WHERE id = $1`,
		id.String(), string(contract.StatusClassified), payload, at,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to mark contract classified").
			WithDetail(id.String())
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeContractNotFound, "contract %s not found", id)
	}
	return nil
}

func marshalSummary(s *classification.Summary) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode summary")
	}
	return payload, nil
}

func scanContract(row pgx.Row) (*contract.Contract, error) {
	var (
		c             contract.Contract
		id            string
		jurisdiction  string
		status        string
		summaryRaw    []byte
		classifiedAt  *time.Time
	)
	err := row.Scan(&id, &c.FileName, &jurisdiction, &c.ObjectKey, &status,
		&c.FailureReason, &summaryRaw, &c.CreatedAt, &c.UpdatedAt, &classifiedAt)
	if err != nil {
		return nil, err
	}
	c.ID = common.ID(id)
	c.Jurisdiction = template.Jurisdiction(jurisdiction)
	c.Status = contract.Status(status)
	c.ClassifiedAt = classifiedAt
	if len(summaryRaw) > 0 {
		var s classification.Summary
		if err := json.Unmarshal(summaryRaw, &s); err != nil {
			return nil, err
		}
		c.Summary = &s
	}
	return &c, nil
}
