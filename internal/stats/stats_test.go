package stats

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"OrandaBot/internal/models"
)

func TestBounds(t *testing.T) {
	bratislava, err := time.LoadLocation("Europe/Bratislava")
	if err != nil {
		t.Skipf("tzdata недоступна: %v", err)
	}
	cases := []struct {
		period     Period
		now        time.Time
		start, end time.Time
	}{
		{Month, time.Date(2024, 2, 15, 13, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Month, time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC),
			time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Day, time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Year, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		// Переход на летнее время: сутки короче 24 часов.
		{Day, time.Date(2024, 3, 31, 12, 0, 0, 0, bratislava),
			time.Date(2024, 3, 31, 0, 0, 0, 0, bratislava), time.Date(2024, 4, 1, 0, 0, 0, 0, bratislava)},
	}
	for _, c := range cases {
		start, end, err := Bounds(c.period, c.now)
		if err != nil {
			t.Fatalf("Bounds(%s, %v): %v", c.period, c.now, err)
		}
		if !start.Equal(c.start) || !end.Equal(c.end) {
			t.Fatalf("Bounds(%s, %v) = [%v, %v), want [%v, %v)", c.period, c.now, start, end, c.start, c.end)
		}
	}

	if _, _, err := Bounds(Period("week"), time.Now()); err == nil {
		t.Fatal("Bounds accepted an unknown period")
	}
}

func TestAggregate(t *testing.T) {
	rows := []models.StatusCount{
		{Status: models.StatusActive, Actor: "alice", Count: 1},
		{Status: models.StatusReserved, Actor: "alice", Count: 1},
		{Status: models.StatusActive, Actor: "bob", Count: 1},
	}
	r := Aggregate(Day, time.Time{}, time.Time{}, rows)

	wantTotals := map[models.Status]int{
		models.StatusActive: 2, models.StatusReserved: 1, models.StatusWithdrawn: 0, models.StatusClosed: 0,
	}
	if !reflect.DeepEqual(r.Totals, wantTotals) {
		t.Fatalf("totals = %v, want %v", r.Totals, wantTotals)
	}
	wantByActor := map[string]map[models.Status]int{
		"alice": {models.StatusActive: 1, models.StatusReserved: 1},
		"bob":   {models.StatusActive: 1},
	}
	if !reflect.DeepEqual(r.ByActor, wantByActor) {
		t.Fatalf("by actor = %v, want %v", r.ByActor, wantByActor)
	}
	if got := r.Actors(); !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Fatalf("actors = %v", got)
	}
}

func TestAggregateAnonymousAndUnknown(t *testing.T) {
	rows := []models.StatusCount{
		{Status: models.StatusClosed, Actor: "", Count: 3},
		{Status: models.Status("ARCHIVED"), Actor: "alice", Count: 5},
	}
	r := Aggregate(Month, time.Time{}, time.Time{}, rows)
	if r.Totals[models.StatusClosed] != 3 {
		t.Fatalf("closed = %d, want 3", r.Totals[models.StatusClosed])
	}
	if _, ok := r.ByActor["alice"]; ok {
		t.Fatal("unknown status was counted")
	}
	if r.ByActor["—"][models.StatusClosed] != 3 {
		t.Fatalf("anonymous = %v", r.ByActor)
	}
	if Aggregate(Day, time.Time{}, time.Time{}, nil).Empty() != true {
		t.Fatal("report without rows is not empty")
	}
}

type fakeSource struct {
	start, end time.Time
	rows       []models.StatusCount
	err        error
}

func (f *fakeSource) CountStatusEvents(_ context.Context, start, end time.Time) ([]models.StatusCount, error) {
	f.start, f.end = start, end
	return f.rows, f.err
}

func TestCompute(t *testing.T) {
	src := &fakeSource{rows: []models.StatusCount{{Status: models.StatusActive, Actor: "bob", Count: 2}}}
	now := time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)
	r, err := Compute(context.Background(), src, Month, now)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !src.start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) || !src.end.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("source queried [%v, %v)", src.start, src.end)
	}
	if r.Totals[models.StatusActive] != 2 {
		t.Fatalf("active = %d, want 2", r.Totals[models.StatusActive])
	}

	src.err = errors.New("disk I/O error")
	if _, err := Compute(context.Background(), src, Day, now); !errors.Is(err, src.err) {
		t.Fatalf("err = %v, want wrapped source error", err)
	}
}

func TestParsePeriod(t *testing.T) {
	for _, p := range Periods {
		if got, err := ParsePeriod(string(p)); err != nil || got != p {
			t.Fatalf("ParsePeriod(%s) = %s, %v", p, got, err)
		}
	}
	if _, err := ParsePeriod("week"); err == nil {
		t.Fatal("ParsePeriod accepted week")
	}
}
