package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payAndRent = `
control:
  CURRENT: 500
  SET_ASIDE: 100
  NOW: 2025-01-01
  GENERATE_MONTHS: 1
  BIWEEKLY_START: 2025-01-03
  RETIREMENT_BALANCE: 1000
  GOAL_VALUE: 2240
definitions:
  biweekly:
    - {name: Pay, amount: 1000, day_offset: 0, class: salary}
  monthly:
    - {name: Rent, amount: -1200, day_of_month: 5, class: housing}
`

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budget.yaml")
	require.NoError(t, os.WriteFile(path, []byte(payAndRent), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestProjectCmd_FromInputFile(t *testing.T) {
	out, err := run(t, "project", "--input", writeInput(t), "--csv", "-")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "Spare Capital $200.00", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "DAY,KIND,NAME"))
	assert.Len(t, lines, 2+4)
}

func TestProductionCmd(t *testing.T) {
	out, err := run(t, "production", "--input", writeInput(t))

	require.NoError(t, err)
	assert.Equal(t, "Disposable Income above allocation\n"+
		"2025-01-03 $200.00 (2 days later)\n"+
		"2025-01-31 $2,200.00 (28 days later)\n", out)
}

func TestGoalCmd(t *testing.T) {
	input := writeInput(t)

	_, err := run(t, "goal", "--input", input)
	assert.Error(t, err)

	out, err := run(t, "goal", "--input", input, "--goal-date", "2026-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Goal $2,240.00 by 2026-01-01")
	assert.Contains(t, out, "Base production + retirement:")
}

func TestImportThenProjectFromDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cashflow.db")

	out, err := run(t, "import", writeInput(t), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 definitions")

	out, err = run(t, "project", "--db", db, "--input", "")
	require.NoError(t, err)
	assert.Equal(t, "Spare Capital $200.00\n", out)
}

func TestProjectCmd_BadEnd(t *testing.T) {
	_, err := run(t, "project", "--input", writeInput(t), "--end", "soon")

	assert.Error(t, err)
}
