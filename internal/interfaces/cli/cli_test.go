package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hilabs")
}

func TestTemplatesCommand_ListsAll(t *testing.T) {
	out, err := runCommand(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "TN_Medicaid_Timely_Filing")
	assert.Contains(t, out, "WA_Medicare_Timely_Filing")
}

func TestTemplatesCommand_FilterAndFullText(t *testing.T) {
	out, err := runCommand(t, "templates", "--jurisdiction", "WA", "--full")
	require.NoError(t, err)
	assert.Contains(t, out, "WA_No_Steerage_SOC")
	assert.NotContains(t, out, "TN_Medicaid_Timely_Filing")
	assert.Contains(t, out, "Provider shall be eligible to participate")
}

func TestTemplatesCommand_RejectsUnknownJurisdiction(t *testing.T) {
	_, err := runCommand(t, "templates", "--jurisdiction", "NY")
	assert.Error(t, err)
}

func TestClassifyCommand_OfflineTable(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "contract.txt")
	text := "Provider shall be eligible to participate only in those Networks designated on the " +
		"Provider Networks Attachment of this Agreement"
	require.NoError(t, os.WriteFile(doc, []byte(text), 0o644))

	out, err := runCommand(t, "classify", "--file", doc, "--jurisdiction", "WA")
	require.NoError(t, err)
	assert.Contains(t, out, "No Steerage/SOC")
	assert.Contains(t, out, "Standard")
	assert.Contains(t, out, "WA_No_Steerage_SOC")
	assert.Contains(t, out, "Compliance:")
}

func TestClassifyCommand_JSONOutput(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "contract.txt")
	require.NoError(t, os.WriteFile(doc, []byte("Provider shall maintain confidentiality of records."), 0o644))

	out, err := runCommand(t, "classify", "--file", doc, "--jurisdiction", "TN", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"summary"`)
	assert.Contains(t, out, `"decisions"`)
}

func TestClassifyCommand_MissingFileFails(t *testing.T) {
	_, err := runCommand(t, "classify", "--file", "/nonexistent/contract.txt", "--jurisdiction", "TN")
	assert.Error(t, err)
}

func TestSegmentCommand(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "contract.txt")
	require.NoError(t, os.WriteFile(doc, []byte("First clause text here. Second clause follows.\n\nThird paragraph."), 0o644))

	out, err := runCommand(t, "segment", "--file", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "clauses")
}
