//go:build integration

// Integration tests for the PostgreSQL repositories.  Tests require Docker
// and are gated behind the "integration" build tag:
//
//	go test -tags integration ./internal/infrastructure/database/repositories/...
package repositories_test

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ravi-ivar-7/hilabs/internal/domain/classification"
	"github.com/ravi-ivar-7/hilabs/internal/domain/contract"
	"github.com/ravi-ivar-7/hilabs/internal/domain/template"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/database/repositories"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/migrations"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
	"github.com/ravi-ivar-7/hilabs/pkg/types/common"
)

// startPostgres launches a PostgreSQL 16 container, applies the embedded
// migrations, and returns a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "hilabs_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/hilabs_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applySchema(t, pool)
	return pool
}

// applySchema executes the embedded up migrations in lexical order.
func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)

	var ups []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	for _, name := range ups {
		ddl, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(ddl))
		require.NoError(t, err, name)
	}
}

func newContract() *contract.Contract {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &contract.Contract{
		ID:           common.ID(uuid.NewString()),
		FileName:     "tn_provider_agreement.pdf",
		Jurisdiction: template.JurisdictionTN,
		ObjectKey:    "contracts/tn_provider_agreement.pdf",
		Status:       contract.StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestContractRepo_CreateAndGet(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewContractRepo(pool, logging.NewNopLogger())
	ctx := context.Background()

	c := newContract()
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.FileName, got.FileName)
	assert.Equal(t, template.JurisdictionTN, got.Jurisdiction)
	assert.Equal(t, contract.StatusUploaded, got.Status)
	assert.Nil(t, got.Summary)
}

func TestContractRepo_GetMissing(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewContractRepo(pool, logging.NewNopLogger())

	_, err := repo.GetByID(context.Background(), common.ID(uuid.NewString()))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeContractNotFound))
}

func TestContractRepo_StatusAndSummary(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewContractRepo(pool, logging.NewNopLogger())
	ctx := context.Background()

	c := newContract()
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.UpdateStatus(ctx, c.ID, contract.StatusProcessing, ""))

	summary := &classification.Summary{
		TotalClauses:         3,
		ClassifiedClauses:    2,
		StandardCount:        1,
		NonStandardCount:     1,
		SkippedCount:         1,
		CompliancePercentage: 50.0,
		AverageConfidence:    0.8,
		RuleBreakdown:        map[string]int{classification.RuleExactNorm: 1},
	}
	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.MarkClassified(ctx, c.ID, summary, at))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusClassified, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, summary.StandardCount, got.Summary.StandardCount)
	require.NotNil(t, got.ClassifiedAt)
	assert.WithinDuration(t, at, *got.ClassifiedAt, time.Second)
}

func TestContractRepo_List(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewContractRepo(pool, logging.NewNopLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newContract()))
	}

	page, total, err := repo.List(ctx, common.Page{Number: 1, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 3)

	page2, _, err := repo.List(ctx, common.Page{Number: 2, Size: 3})
	require.NoError(t, err)
	assert.Len(t, page2, 2)
}

func TestDecisionRepo_ReplaceIsAtomicAndIdempotent(t *testing.T) {
	pool := startPostgres(t)
	contracts := repositories.NewContractRepo(pool, logging.NewNopLogger())
	decisions := repositories.NewDecisionRepo(pool, logging.NewNopLogger())
	ctx := context.Background()

	c := newContract()
	require.NoError(t, contracts.Create(ctx, c))

	first := []classification.Decision{
		{
			ClauseID:     1,
			Text:         "Provider shall submit Medicaid Claims within 120 days.",
			Attribute:    template.AttrMedicaidTimelyFiling,
			TemplateUsed: "TN_Medicaid_Timely_Filing",
			Label:        classification.LabelStandard,
			Score:        0.99,
			Rule:         classification.RuleExactNorm,
			Steps: []classification.Step{
				{Name: classification.StepExactNormMatch, Passed: true, Reason: "clause equals template after normalization"},
			},
		},
		{ClauseID: 2, Text: "Confidentiality.", Label: classification.LabelSkip, Rule: classification.RuleNoTargetAttribute},
	}
	require.NoError(t, decisions.ReplaceForContract(ctx, c.ID, first))

	got, err := decisions.ListByContract(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, classification.LabelStandard, got[0].Label)
	require.Len(t, got[0].Steps, 1)
	assert.Equal(t, classification.StepExactNormMatch, got[0].Steps[0].Name)

	// A re-run replaces the previous set entirely.
	second := []classification.Decision{
		{ClauseID: 1, Text: "Revised clause.", Attribute: template.AttrMedicaidTimelyFiling,
			Label: classification.LabelNonStandard, Score: 0.85, Rule: classification.RuleDifferentMethodology},
	}
	require.NoError(t, decisions.ReplaceForContract(ctx, c.ID, second))

	got, err = decisions.ListByContract(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, classification.LabelNonStandard, got[0].Label)
}
