// internal/ledger/greenfield_test.go
package ledger

import (
	"reflect"
	"testing"
	"time"
)

var (
	plantDate  = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	matureDate = plantDate.AddDate(3, 0, 0)
)

func mustCreateProject(t *testing.T, l *Ledger, yield int64) uint64 {
	t.Helper()
	id, err := l.CreateProject("alice", "sha256:proj", plantDate, matureDate, yield, 10000)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return id
}

// Scenario C: tạo project, tiến lên stage 1, rồi thử lùi về stage 0.
func TestProjectStageProgression(t *testing.T) {
	l, rec := testLedger()
	id := mustCreateProject(t, l, 5000)

	p, err := l.GetProject(id)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if p.Stage != StagePlanning {
		t.Fatalf("new project stage = %s, want Planning", p.Stage)
	}

	if err := l.AdvanceStage("alice", id, StageLandPreparation, 5000, "sha256:ev1"); err != nil {
		t.Fatalf("advance to LandPreparation failed: %v", err)
	}

	err = l.AdvanceStage("alice", id, StagePlanning, 5000, "sha256:ev2")
	if KindOf(err) != KindState {
		t.Fatalf("stage regression: got %v, want StateError", err)
	}

	p, _ = l.GetProject(id)
	if p.Stage != StageLandPreparation {
		t.Errorf("stage after rejected regression = %s, want LandPreparation", p.Stage)
	}

	advanced, ok := rec.events[1].(StageAdvanced)
	if !ok {
		t.Fatalf("second event is %T, want StageAdvanced", rec.events[1])
	}
	if advanced.PreviousStage != StagePlanning || advanced.NewStage != StageLandPreparation {
		t.Errorf("unexpected StageAdvanced payload: %+v", advanced)
	}
	if advanced.EvidenceRef != "sha256:ev1" {
		t.Errorf("evidenceRef = %q, want sha256:ev1", advanced.EvidenceRef)
	}
}

// Stage được phép nhảy cóc miễn là đi tiến, nhưng không vượt quá
// FullProduction, và FullProduction là terminal.
func TestStageBoundsAndTerminal(t *testing.T) {
	l, _ := testLedger()
	id := mustCreateProject(t, l, 5000)

	if err := l.AdvanceStage("alice", id, StageGrowth, 5200, "sha256:ev"); err != nil {
		t.Fatalf("skip to Growth failed: %v", err)
	}

	if err := l.AdvanceStage("alice", id, StageFullProduction+1, 5200, "sha256:ev"); KindOf(err) != KindState {
		t.Fatalf("past-terminal stage: got %v, want StateError", err)
	}

	if err := l.AdvanceStage("alice", id, StageFullProduction, 6000, "sha256:ev"); err != nil {
		t.Fatalf("advance to FullProduction failed: %v", err)
	}
	// Terminal: không còn stage nào hợp lệ sau FullProduction.
	if err := l.AdvanceStage("alice", id, StageFullProduction, 6000, "sha256:ev"); KindOf(err) != KindState {
		t.Fatalf("advance at terminal stage: got %v, want StateError", err)
	}

	p, _ := l.GetProject(id)
	if p.Stage != StageFullProduction || p.ProjectedYield != 6000 {
		t.Errorf("terminal project = %+v", p)
	}
}

func TestAdvanceStageValidation(t *testing.T) {
	l, _ := testLedger()
	id := mustCreateProject(t, l, 5000)

	before := snapshot(l)

	if err := l.AdvanceStage("alice", id, StagePlanting, 0, "sha256:ev"); KindOf(err) != KindValidation {
		t.Errorf("zero yield: got %v, want ValidationError", err)
	}
	if err := l.AdvanceStage("alice", id, StagePlanting, 5000, ""); KindOf(err) != KindValidation {
		t.Errorf("empty evidenceRef: got %v, want ValidationError", err)
	}
	if err := l.AdvanceStage("alice", 404, StagePlanting, 5000, "sha256:ev"); KindOf(err) != KindNotFound {
		t.Errorf("missing project: got %v, want NotFoundError", err)
	}

	if !reflect.DeepEqual(before, snapshot(l)) {
		t.Error("rejected advance mutated state")
	}
}

func TestCreateProjectValidation(t *testing.T) {
	l, _ := testLedger()

	if _, err := l.CreateProject("alice", "sha256:p", matureDate, plantDate, 5000, 0); KindOf(err) != KindValidation {
		t.Errorf("inverted dates: got %v, want ValidationError", err)
	}
	if _, err := l.CreateProject("alice", "sha256:p", plantDate, matureDate, 0, 0); KindOf(err) != KindValidation {
		t.Errorf("zero yield: got %v, want ValidationError", err)
	}
	if _, err := l.CreateProject("alice", "", plantDate, matureDate, 5000, 0); KindOf(err) != KindValidation {
		t.Errorf("empty metadataRef: got %v, want ValidationError", err)
	}
	if l.NextProjectID() != 1 {
		t.Error("rejected creates advanced project counter")
	}
}

// Batch và project dùng hai dãy id độc lập; tạo xen kẽ không được làm
// lệch counter của nhau.
func TestSeparateCounterSpaces(t *testing.T) {
	l, _ := testLedger()

	b1 := mustCreateBatch(t, l, 100, 5, 100)
	p1 := mustCreateProject(t, l, 5000)
	b2 := mustCreateBatch(t, l, 100, 5, 100)
	p2 := mustCreateProject(t, l, 4000)

	if b1 != 1 || b2 != 2 {
		t.Errorf("batch ids = %d,%d, want 1,2", b1, b2)
	}
	if p1 != 1 || p2 != 2 {
		t.Errorf("project ids = %d,%d, want 1,2", p1, p2)
	}
}

func TestProjectBatchView(t *testing.T) {
	l, _ := testLedger()
	id := mustCreateProject(t, l, 5000)

	view, err := l.ProjectBatchView(id)
	if err != nil {
		t.Fatalf("ProjectBatchView failed: %v", err)
	}
	if view.CurrentQuantity != 0 {
		t.Errorf("project view quantity = %d, want 0", view.CurrentQuantity)
	}
	if view.CollateralValue != 10000 {
		t.Errorf("project view collateral = %d, want 10000", view.CollateralValue)
	}
	if !view.ProductionDate.Equal(plantDate) || !view.ExpiryDate.Equal(matureDate) {
		t.Error("project view should map planting/maturity dates")
	}

	if _, err := l.ProjectBatchView(99); KindOf(err) != KindNotFound {
		t.Errorf("missing project view: got %v, want NotFoundError", err)
	}
}
