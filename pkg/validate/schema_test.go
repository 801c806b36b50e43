package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/gigmarket/internal/dto"
)

func findField(fields []Field, name string) *Field {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i]
		}
	}
	return nil
}

func TestDescribe(t *testing.T) {
	schema := Describe("contract_create", dto.CreateContractRequestDTO{}, BudgetRule)

	assert.Equal(t, "contract_create", schema.Name)
	require.Len(t, schema.Rules, 1)
	assert.Equal(t, "budget", schema.Rules[0].Name)

	title := findField(schema.Fields, "title")
	require.NotNil(t, title)
	assert.Equal(t, "string", title.Type)
	assert.True(t, title.Required)
	require.NotNil(t, title.Min)
	assert.Equal(t, 3.0, *title.Min)
	require.NotNil(t, title.Max)
	assert.Equal(t, 200.0, *title.Max)

	budget := findField(schema.Fields, "budget")
	require.NotNil(t, budget)
	assert.Equal(t, "number", budget.Type)
	assert.Equal(t, []string{"money"}, budget.Rules)

	start := findField(schema.Fields, "start_date")
	require.NotNil(t, start)
	assert.Equal(t, "datetime", start.Type)
	assert.False(t, start.Required)

	milestones := findField(schema.Fields, "milestones")
	require.NotNil(t, milestones)
	assert.Equal(t, "array", milestones.Type)
	require.NotNil(t, milestones.Max)
	assert.Equal(t, 50.0, *milestones.Max)

	cost := findField(milestones.Items, "cost")
	require.NotNil(t, cost)
	assert.True(t, cost.Required)
	assert.Equal(t, []string{"money"}, cost.Rules)
}

func TestDescribe_PrimitiveItems(t *testing.T) {
	schema := Describe("milestone_submit", &dto.SubmitMilestoneRequestDTO{})

	files := findField(schema.Fields, "files")
	require.NotNil(t, files)
	require.Len(t, files.Items, 1)
	assert.Equal(t, "string", files.Items[0].Type)
	assert.True(t, files.Items[0].Required)
	require.NotNil(t, files.Items[0].Max)
	assert.Equal(t, 2048.0, *files.Items[0].Max)

	role := findField(Describe("register", dto.RegisterRequestDTO{}).Fields, "role")
	require.NotNil(t, role)
	assert.Equal(t, []string{"client", "freelancer"}, role.OneOf)

	_, err := json.Marshal(schema)
	assert.NoError(t, err)
}
