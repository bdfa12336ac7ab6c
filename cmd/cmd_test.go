package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config discovery at an empty directory and clears the
// variables that would reach a real provider or judge.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{"ADAPTUTOR_CONFIG", "ADAPTUTOR_DB", "ADAPTUTOR_LLM_PROVIDER", "ADAPTUTOR_JUDGE_URL", "ADAPTUTOR_LOCK_BACKEND"} {
		t.Setenv(k, "")
	}
	t.Setenv("ADAPTUTOR_LOG_MODE", "prod")
	return filepath.Join(t.TempDir(), "adaptutor.db")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSeedThenConcepts(t *testing.T) {
	db := isolate(t)

	out, err := run(t, "questions", "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded")

	out, err = run(t, "concepts", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "binary_search")
	assert.Contains(t, out, "stack")

	// Seeding twice inserts nothing new.
	out, err = run(t, "questions", "seed", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0 questions")
}

func TestConceptsOnEmptyBank(t *testing.T) {
	db := isolate(t)

	out, err := run(t, "concepts", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Question bank is empty")
}

func TestImportFile(t *testing.T) {
	db := isolate(t)
	file := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
questions:
  - concept: heaps
    difficulty: beginner
    type: short_answer
    prompt: What is the time complexity of peeking at the top of a binary heap?
    expected_answer: O(1)
`), 0o644))

	out, err := run(t, "questions", "import", file, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 questions")

	out, err = run(t, "questions", "list", "--concept", "heaps", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "short_answer")
}

func TestLearnerAndMastery(t *testing.T) {
	db := isolate(t)

	out, err := run(t, "learner", "set", "ada", "--name", "Ada", "--email", "ada@example.com", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "ada@example.com"`)

	out, err = run(t, "mastery", "ada", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No practice recorded yet.")

	out, err = run(t, "mastery", "ada", "graphs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, `"easiness": 2.5`)
}

func TestSelectAndEvaluate(t *testing.T) {
	db := isolate(t)
	_, err := run(t, "questions", "seed", "--db", db)
	require.NoError(t, err)

	out, err := run(t, "select", "ada", "stack", "-n", "1", "--db", db)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"questions"`), out)

	_, err = run(t, "evaluate", "--user", "ada", "--qid", "missing", "--answer", "x", "--db", db)
	require.Error(t, err)
}

func TestAuditListEmpty(t *testing.T) {
	db := isolate(t)

	out, err := run(t, "audit", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No evaluations recorded.")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "adaptutor")
}
