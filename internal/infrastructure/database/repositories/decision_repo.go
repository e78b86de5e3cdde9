package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ravi-ivar-7/hilabs/internal/domain/classification"
	"github.com/ravi-ivar-7/hilabs/internal/domain/contract"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// DecisionRepo implements contract.DecisionRepository over PostgreSQL.
type DecisionRepo struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

var _ contract.DecisionRepository = (*DecisionRepo)(nil)

// NewDecisionRepo constructs the repository.
func NewDecisionRepo(pool *pgxpool.Pool, log logging.Logger) *DecisionRepo {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DecisionRepo{pool: pool, log: log.Named("decision_repo")}
}

// ReplaceForContract atomically swaps the contract's full decision set.
// Delete and insert share one transaction so a re-run can never leave the
// contract with a mix of old and new decisions.
func (r *DecisionRepo) ReplaceForContract(ctx context.Context, contractID common.ID, decisions []classification.Decision) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM clause_decisions WHERE contract_id = $1`, contractID.String()); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to clear previous decisions").
			WithDetail(contractID.String())
	}

	for _, d := range decisions {
		steps, err := json.Marshal(d.Steps)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode decision trace")
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO clause_decisions (contract_id, clause_id, clause_text, attribute, template_used, label, score, rule, steps)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			contractID.String(), d.ClauseID, d.Text, string(d.Attribute),
			d.TemplateUsed, string(d.Label), d.Score, d.Rule, steps,
		)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert decision").
				WithDetail(contractID.String())
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit decisions")
	}
	r.log.Debug("decisions replaced",
		logging.String("contract_id", contractID.String()),
		logging.Int("count", len(decisions)),
	)
	return nil
}

// ListByContract returns the contract's decisions in clause order.
func (r *DecisionRepo) ListByContract(ctx context.Context, contractID common.ID) ([]classification.Decision, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT clause_id, clause_text, attribute, template_used, label, score, rule, steps
		FROM clause_decisions
		WHERE contract_id = $1
		ORDER BY clause_id, attribute`, contractID.String())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query decisions").
			WithDetail(contractID.String())
	}
	defer rows.Close()

	var out []classification.Decision
	for rows.Next() {
		var (
			d         classification.Decision
			attribute string
			label     string
			stepsRaw  []byte
		)
		if err := rows.Scan(&d.ClauseID, &d.Text, &attribute, &d.TemplateUsed,
			&label, &d.Score, &d.Rule, &stepsRaw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan decision")
		}
		d.Attribute = template.Attribute(attribute)
		d.Label = classification.Label(label)
		if len(stepsRaw) > 0 {
			if err := json.Unmarshal(stepsRaw, &d.Steps); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode decision trace")
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate decisions")
	}
	return out, nil
}
