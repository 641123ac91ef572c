package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidPlan(t *testing.T) {
	path := writePlan(t, "plan.yaml", simplePlan)

	out, _, err := runCommand(t, "validate", path)

	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)
}

func TestValidate_InvalidPlanListsProblems(t *testing.T) {
	path := writePlan(t, "plan.yaml", `query:
  from: users
  wheres:
    - type: between
      column: age
      values: [18]
`)

	out, _, err := runCommand(t, "validate", path)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "invalid: 1 problem(s)")
	assert.Contains(t, out, "wheres[0]")
}

func TestValidate_InvalidPlanJSON(t *testing.T) {
	path := writePlan(t, "plan.yaml", "query:\n  from: \"\"\n")

	out, _, err := runCommand(t, "validate", path, "--format", "json")

	require.Error(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["valid"])
	problems, ok := data["problems"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, problems)
}

func TestValidate_BadExtension(t *testing.T) {
	path := writePlan(t, "plan.txt", "query:\n  from: users\n")

	out, _, err := runCommand(t, "validate", path)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E003")
}
