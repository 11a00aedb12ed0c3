package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kilianp07/prodseq/core/model"
	"github.com/kilianp07/prodseq/core/planner"
)

func samplePlan() *planner.Plan {
	days := []model.DayResult{
		{Day: 0, Events: []model.Event{{Product: 0, Amount: 100}, {Product: 1, Amount: 50}}},
		{Day: 1, Events: []model.Event{{Product: 1, Amount: 80}}},
	}
	return &planner.Plan{
		RunID: "r1",
		Lines: 1,
		Results: []planner.LineResult{
			{Line: "north", Objective: model.ObjectiveTime, Result: model.ScheduleResult{Strategy: "greedy", Days: days, EndingBacklog: []int{0, 20}, TotalLostSales: 5}},
			{Line: "north", Objective: model.ObjectiveCost, Err: errors.New("boom"), Error: "boom"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, samplePlan(), []string{"bolts"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeader, ",") {
		t.Fatalf("header %v", rows[0])
	}
	if got := strings.Join(rows[1], ","); got != "r1,north,time,greedy,0,0,bolts,100" {
		t.Fatalf("row 1 %s", got)
	}
	if got := strings.Join(rows[3], ","); got != "r1,north,time,greedy,1,0,1,80" {
		t.Fatalf("row 3 %s", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, samplePlan()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got struct {
		RunID   string `json:"run_id"`
		Results []struct {
			Objective string `json:"objective"`
			Error     string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "r1" || len(got.Results) != 2 || got.Results[0].Objective != "time" || got.Results[1].Error != "boom" {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, samplePlan(), []string{"bolts", "nuts"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"<html", "Plan r1", "north / time", "bolts", "nuts"} {
		if !strings.Contains(html, want) {
			t.Fatalf("report misses %q", want)
		}
	}
	if strings.Contains(html, "north / cost") {
		t.Fatal("failed result should not be charted")
	}
}
