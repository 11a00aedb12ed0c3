package scenarios

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/planner"
)

func TestScenarios(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		sc, err := Load(f)
		require.NoError(t, err, f)
		t.Run(sc.Name, func(t *testing.T) {
			violations, err := Run(context.Background(), sc)
			require.NoError(t, err)
			for _, v := range violations {
				t.Error(v)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"no-problem.yaml":    "name: x\nstrategies: [greedy]\n",
		"no-strategies.yaml": "name: x\nproblem_file: p.yaml\n",
		"broken.yaml":        "name: [\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := Load(path)
		assert.Error(t, err, name)
	}
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_DefaultsName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "night-shift.yaml")
	require.NoError(t, os.WriteFile(path, []byte("problem_file: p.yaml\nstrategies: [greedy]\n"), 0o644))
	sc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "night-shift", sc.Name)
}

func TestRun_ReportsViolations(t *testing.T) {
	sc, err := Load("01_reference_week.yaml")
	require.NoError(t, err)
	zero := 0
	sc.Expected.MaxPenalty = &zero
	sc.Expected.MaxCost = &zero
	violations, err := Run(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, violations, 2)
	assert.Equal(t, "greedy", violations[0].Strategy)
	assert.Equal(t, "reference", violations[0].Line)
	assert.Equal(t, model.ObjectiveTime, violations[0].Objective)
	assert.Contains(t, violations[0].String(), "penalty 830 > 0")
}

func TestRun_BadScenario(t *testing.T) {
	sc, err := Load("01_reference_week.yaml")
	require.NoError(t, err)
	sc.Strategies = []string{"annealing"}
	_, err = Run(context.Background(), sc)
	assert.ErrorIs(t, err, model.ErrConfiguration)

	sc.Strategies = []string{"greedy"}
	sc.Objectives = []string{"speed"}
	_, err = Run(context.Background(), sc)
	assert.Error(t, err)
}

func TestDominance(t *testing.T) {
	plan := &planner.Plan{Results: []planner.LineResult{
		{Line: "a", Objective: model.ObjectiveTime, Result: model.ScheduleResult{TotalLostSales: 10}},
		{Line: "a", Objective: model.ObjectiveLostSales, Result: model.ScheduleResult{TotalLostSales: 20}},
		{Line: "b", Objective: model.ObjectiveTime, Result: model.ScheduleResult{TotalLostSales: 30}},
		{Line: "b", Objective: model.ObjectiveLostSales, Result: model.ScheduleResult{TotalLostSales: 20}},
	}}
	v := dominance("greedy", plan)
	require.Len(t, v, 1)
	assert.Equal(t, "a", v[0].Line)
}
