package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

func TestParseJurisdiction(t *testing.T) {
	j, ok := ParseJurisdiction("TN")
	require.True(t, ok)
	assert.Equal(t, JurisdictionTN, j)

	_, ok = ParseJurisdiction("CA")
	assert.False(t, ok)
	_, ok = ParseJurisdiction("tn")
	assert.False(t, ok)
}

func TestParseAttribute(t *testing.T) {
	a, ok := ParseAttribute("No Steerage/SOC")
	require.True(t, ok)
	assert.Equal(t, AttrNoSteerageSOC, a)

	_, ok = ParseAttribute("Dental Fee Schedule")
	assert.False(t, ok)
}

func TestStore_CatalogComplete(t *testing.T) {
	store := NewStore(logging.NewNopLogger())

	// Every jurisdiction carries every audited attribute.
	require.Len(t, store.All(), len(Jurisdictions())*len(TargetAttributes()))

	for _, j := range Jurisdictions() {
		for _, a := range TargetAttributes() {
			c, err := store.Get(j, a)
			require.NoError(t, err, "%s/%s", j, a)
			assert.Equal(t, j, c.Jurisdiction)
			assert.Equal(t, a, c.Attribute)
			assert.NotEmpty(t, c.RawText)
			assert.NotEmpty(t, c.NormText)
			assert.Equal(t, strings.ToLower(c.NormText), c.NormText)
		}
	}
}

func TestStore_ClausePreprocessing(t *testing.T) {
	store := NewStore(logging.NewNopLogger())

	t.Run("names_are_unique_and_slugged", func(t *testing.T) {
		seen := map[string]bool{}
		for _, c := range store.All() {
			assert.False(t, seen[c.Name], "duplicate name %s", c.Name)
			seen[c.Name] = true
			assert.NotContains(t, c.Name, " ")
			assert.NotContains(t, c.Name, "/")
		}
		assert.True(t, seen["TN_Medicaid_Timely_Filing"])
		assert.True(t, seen["WA_No_Steerage_SOC"])
	})

	t.Run("exception_tokens_flagged", func(t *testing.T) {
		// The WA Medicaid timely-filing clause opens with "Unless otherwise
		// instructed", so its flag must be set; the TN equivalent is clean.
		wa, err := store.Get(JurisdictionWA, AttrMedicaidTimelyFiling)
		require.NoError(t, err)
		assert.True(t, wa.HasExceptionTokens)

		tn, err := store.Get(JurisdictionTN, AttrMedicaidTimelyFiling)
		require.NoError(t, err)
		assert.False(t, tn.HasExceptionTokens)
	})
}

func TestStore_MissingLookupsFailLoud(t *testing.T) {
	store := NewStore(logging.NewNopLogger())

	_, err := store.Get(Jurisdiction("CA"), AttrNoSteerageSOC)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeJurisdictionUnsupported))

	_, err = store.Get(JurisdictionTN, Attribute("Dental Fee Schedule"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateNotFound))
	assert.True(t, errors.IsNotFound(err))

	_, err = store.ForAttribute(JurisdictionWA, Attribute("Dental Fee Schedule"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTemplateNotFound))
}

func TestStore_ForAttribute(t *testing.T) {
	store := NewStore(logging.NewNopLogger())

	clauses, err := store.ForAttribute(JurisdictionTN, AttrMedicareFeeSchedule)
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Equal(t, "TN_Medicare_Fee_Schedule", clauses[0].Name)
}
