package salary

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elchinm/attendance-gate/internal/database"
	"github.com/elchinm/attendance-gate/internal/database/mock"
	"github.com/xuri/excelize/v2"
)

func day(d int, hour int) time.Time {
	return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
}

func appendEntry(t *testing.T, events *mock.MockEventStore, workerID int64, site string, at time.Time) {
	t.Helper()
	id := workerID
	_, err := events.Append(context.Background(), &database.AttendanceEvent{
		WorkerID:  &id,
		Site:      site,
		Kind:      database.KindEntry,
		Outcome:   database.OutcomeOK,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func TestCompute(t *testing.T) {
	workers := mock.NewMockWorkerStore()
	aliID := workers.AddWorker(database.Worker{Name: "Ali", Surname: "Valiyev", Role: "welder", Active: true})
	aysID := workers.AddWorker(database.Worker{Name: "Aysel", Surname: "Mammadova", Role: "painter", Active: true})

	events := mock.NewMockEventStore()
	// Ali: three days at north-yard, two entries on day 2 still count once.
	appendEntry(t, events, aliID, "north-yard", day(2, 8))
	appendEntry(t, events, aliID, "north-yard", day(2, 13))
	appendEntry(t, events, aliID, "north-yard", day(3, 8))
	appendEntry(t, events, aliID, "north-yard", day(4, 8))
	// Aysel: two days, no matching rule so the default rate applies.
	appendEntry(t, events, aysID, "south-yard", day(2, 9))
	appendEntry(t, events, aysID, "south-yard", day(5, 9))

	rules := mock.NewMockSalaryRuleStore()
	if err := rules.Upsert(context.Background(), "north-yard", "welder", 45); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	calc := NewCalculator(workers, events, rules)
	summary, err := calc.Compute(context.Background(), day(1, 0), day(31, 23))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summary.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(summary.Lines))
	}

	// Sorted by surname: Mammadova before Valiyev.
	aysel := summary.Lines[0]
	if aysel.Surname != "Mammadova" {
		t.Fatalf("unexpected sort order: %+v", summary.Lines)
	}
	if aysel.DaysPresent != 2 || aysel.DailyRate != DefaultDailyRate || aysel.Amount != 60 {
		t.Errorf("aysel line wrong: %+v", aysel)
	}
	if aysel.Site != "south-yard" {
		t.Errorf("expected dominant site south-yard, got %q", aysel.Site)
	}

	ali := summary.Lines[1]
	if ali.DaysPresent != 3 || ali.DailyRate != 45 || ali.Amount != 135 {
		t.Errorf("ali line wrong: %+v", ali)
	}

	if summary.Total != 195 {
		t.Errorf("expected total 195, got %v", summary.Total)
	}
}

func TestCompute_RejectedAndExitEventsDoNotCount(t *testing.T) {
	workers := mock.NewMockWorkerStore()
	id := workers.AddWorker(database.Worker{Name: "Ali", Surname: "Valiyev", Role: "welder", Active: true})

	events := mock.NewMockEventStore()
	wid := id
	for _, e := range []database.AttendanceEvent{
		{WorkerID: &wid, Site: "north-yard", Kind: database.KindExit, Outcome: database.OutcomeOK, CreatedAt: day(2, 17)},
		{WorkerID: &wid, Site: "north-yard", Kind: database.KindEntry, Outcome: database.OutcomeRejected, CreatedAt: day(3, 8)},
	} {
		ev := e
		if _, err := events.Append(context.Background(), &ev); err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	calc := NewCalculator(workers, events, mock.NewMockSalaryRuleStore())
	summary, err := calc.Compute(context.Background(), day(1, 0), day(31, 23))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Lines) != 0 {
		t.Errorf("expected empty summary, got %+v", summary.Lines)
	}
}

func TestCompute_PeriodBounds(t *testing.T) {
	workers := mock.NewMockWorkerStore()
	id := workers.AddWorker(database.Worker{Name: "Ali", Surname: "Valiyev", Role: "welder", Active: true})

	events := mock.NewMockEventStore()
	appendEntry(t, events, id, "north-yard", day(5, 8))  // inside
	appendEntry(t, events, id, "north-yard", day(20, 8)) // outside

	calc := NewCalculator(workers, events, mock.NewMockSalaryRuleStore())
	summary, err := calc.Compute(context.Background(), day(1, 0), day(10, 23))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Lines) != 1 || summary.Lines[0].DaysPresent != 1 {
		t.Fatalf("expected 1 day inside the period, got %+v", summary.Lines)
	}
}

func TestCompute_RuleMatchIsCaseInsensitive(t *testing.T) {
	workers := mock.NewMockWorkerStore()
	id := workers.AddWorker(database.Worker{Name: "Ali", Surname: "Valiyev", Role: "Welder", Active: true})

	events := mock.NewMockEventStore()
	appendEntry(t, events, id, "North-Yard", day(2, 8))

	rules := mock.NewMockSalaryRuleStore()
	if err := rules.Upsert(context.Background(), "north-yard", "welder", 50); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	calc := NewCalculator(workers, events, rules)
	summary, err := calc.Compute(context.Background(), day(1, 0), day(31, 23))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Lines[0].DailyRate != 50 {
		t.Errorf("expected rule rate 50, got %v", summary.Lines[0].DailyRate)
	}
}

func TestCompute_StoreErrors(t *testing.T) {
	workers := mock.NewMockWorkerStore()
	events := mock.NewMockEventStore()
	events.QueryError = errors.New("connection refused")

	calc := NewCalculator(workers, events, mock.NewMockSalaryRuleStore())
	if _, err := calc.Compute(context.Background(), day(1, 0), day(31, 23)); err == nil {
		t.Error("expected error when the event store fails")
	}
}

func TestWriteXLSX(t *testing.T) {
	summary := &Summary{
		Lines: []Line{
			{Name: "Ali", Surname: "Valiyev", Role: "welder", Site: "north-yard", DaysPresent: 3, DailyRate: 45, Amount: 135},
			{Name: "Aysel", Surname: "Mammadova", Role: "painter", Site: "south-yard", DaysPresent: 2, DailyRate: 30, Amount: 60},
		},
		Total: 195,
	}

	var buf bytes.Buffer
	if err := summary.WriteXLSX(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("workbook unreadable: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Salary", "A2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Ali Valiyev" {
		t.Errorf("expected first row worker name, got %q", got)
	}

	total, err := f.GetCellValue("Salary", "F4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != "195" {
		t.Errorf("expected total 195, got %q", total)
	}
}
