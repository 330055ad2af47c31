package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/makarovada/legal-time/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "legaltime.db")
	storage, err := Open(dsn)
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return storage
}

var baseTime = time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

func strPtr(v string) *string { return &v }

type graph struct {
	employee persistence.Employee
	client   persistence.Client
	contract persistence.Contract
	matter   persistence.Matter
	activity persistence.ActivityType
}

func seedGraph(t *testing.T, s *Storage, suffix string) graph {
	t.Helper()
	ctx := context.Background()

	g := graph{
		employee: persistence.Employee{ID: "emp-" + suffix, Name: "Employee " + suffix, Email: suffix + "@firm.test", PasswordHash: "hash", Role: "lawyer", CreatedAt: baseTime, UpdatedAt: baseTime},
		client:   persistence.Client{ID: "client-" + suffix, Name: "Client " + suffix, Type: "legal", CreatedAt: baseTime, UpdatedAt: baseTime},
		contract: persistence.Contract{ID: "contract-" + suffix, ClientID: "client-" + suffix, Number: "N-" + suffix, Date: baseTime, CreatedAt: baseTime, UpdatedAt: baseTime},
		matter:   persistence.Matter{ID: "matter-" + suffix, ContractID: "contract-" + suffix, Code: "M-" + suffix, Name: "Matter " + suffix, CreatedAt: baseTime, UpdatedAt: baseTime},
		activity: persistence.ActivityType{ID: "act-" + suffix, Name: "Activity " + suffix, CreatedAt: baseTime, UpdatedAt: baseTime},
	}

	if err := s.CreateEmployee(ctx, g.employee); err != nil {
		t.Fatalf("CreateEmployee failed: %v", err)
	}
	if err := s.CreateClient(ctx, g.client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if err := s.CreateContract(ctx, g.contract); err != nil {
		t.Fatalf("CreateContract failed: %v", err)
	}
	if err := s.CreateMatter(ctx, g.matter); err != nil {
		t.Fatalf("CreateMatter failed: %v", err)
	}
	if err := s.CreateActivityType(ctx, g.activity); err != nil {
		t.Fatalf("CreateActivityType failed: %v", err)
	}
	return g
}

func newEntry(id string, g graph, date time.Time, status string, created time.Time) persistence.TimeEntry {
	return persistence.TimeEntry{
		ID:             id,
		EmployeeID:     g.employee.ID,
		MatterID:       g.matter.ID,
		ActivityTypeID: g.activity.ID,
		Hours:          2,
		Description:    "drafting " + id,
		Date:           date,
		Status:         status,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	if err := storage.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	status, err := storage.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("MigrationStatus failed: %v", err)
	}
	if status.CurrentVersion != "001" || len(status.Pending) != 0 {
		t.Fatalf("unexpected migration status: %+v", status)
	}
}

func TestEmployeeRepository(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	employee := persistence.Employee{
		ID:           "emp-1",
		Name:         "Alice",
		Email:        " Alice@Firm.Test ",
		PasswordHash: "hash",
		Role:         "senior_lawyer",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	if err := storage.CreateEmployee(ctx, employee); err != nil {
		t.Fatalf("CreateEmployee failed: %v", err)
	}

	fetched, err := storage.GetEmployeeByEmail(ctx, "ALICE@firm.test")
	if err != nil {
		t.Fatalf("GetEmployeeByEmail failed: %v", err)
	}
	if fetched.ID != employee.ID || fetched.Email != "alice@firm.test" || fetched.CalendarToken != nil {
		t.Fatalf("unexpected employee: %#v", fetched)
	}
	if !fetched.CreatedAt.Equal(baseTime) {
		t.Fatalf("expected created_at %v, got %v", baseTime, fetched.CreatedAt)
	}

	duplicate := employee
	duplicate.ID = "emp-2"
	if err := storage.CreateEmployee(ctx, duplicate); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	fetched.CalendarToken = []byte{1, 2, 3}
	fetched.CalendarID = "team@group.calendar.google.com"
	fetched.UpdatedAt = baseTime.Add(time.Hour)
	if err := storage.UpdateEmployee(ctx, fetched); err != nil {
		t.Fatalf("UpdateEmployee failed: %v", err)
	}
	fetched, err = storage.GetEmployee(ctx, employee.ID)
	if err != nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if len(fetched.CalendarToken) != 3 || fetched.CalendarID == "" {
		t.Fatalf("calendar link not persisted: %#v", fetched)
	}

	if err := storage.DeleteEmployee(ctx, employee.ID); err != nil {
		t.Fatalf("DeleteEmployee failed: %v", err)
	}
	if _, err := storage.GetEmployee(ctx, employee.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := storage.DeleteEmployee(ctx, employee.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestClientDeleteRestrictedByContracts(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	g := seedGraph(t, storage, "a")

	if err := storage.DeleteClient(ctx, g.client.ID); !errors.Is(err, persistence.ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}

	count, err := storage.CountContractsForClient(ctx, g.client.ID)
	if err != nil || count != 1 {
		t.Fatalf("expected one contract, got %d (%v)", count, err)
	}

	if err := storage.DeleteContract(ctx, g.contract.ID); err != nil {
		t.Fatalf("DeleteContract failed: %v", err)
	}
	if _, err := storage.GetMatter(ctx, g.matter.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected matter to be removed with its contract, got %v", err)
	}
	if err := storage.DeleteClient(ctx, g.client.ID); err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}
}

func TestContractDeleteBlockedByTimeEntries(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	g := seedGraph(t, storage, "a")

	if err := storage.CreateTimeEntry(ctx, newEntry("te-1", g, baseTime, "draft", baseTime)); err != nil {
		t.Fatalf("CreateTimeEntry failed: %v", err)
	}

	if err := storage.DeleteContract(ctx, g.contract.ID); !errors.Is(err, persistence.ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}
	if err := storage.DeleteMatter(ctx, g.matter.ID); !errors.Is(err, persistence.ErrReferenced) {
		t.Fatalf("expected ErrReferenced deleting matter, got %v", err)
	}
	if err := storage.DeleteActivityType(ctx, g.activity.ID); !errors.Is(err, persistence.ErrReferenced) {
		t.Fatalf("expected ErrReferenced deleting activity type, got %v", err)
	}
	if _, err := storage.GetContract(ctx, g.contract.ID); err != nil {
		t.Fatalf("contract should still exist: %v", err)
	}
}

func TestRateRepository(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	g := seedGraph(t, storage, "a")

	contractRate := persistence.Rate{ID: "rate-contract", Value: 4500, ContractID: strPtr(g.contract.ID), CreatedAt: baseTime, UpdatedAt: baseTime}
	employeeRate := persistence.Rate{ID: "rate-employee", Value: 4000, EmployeeID: strPtr(g.employee.ID), CreatedAt: baseTime, UpdatedAt: baseTime}
	for _, rate := range []persistence.Rate{contractRate, employeeRate} {
		if err := storage.CreateRate(ctx, rate); err != nil {
			t.Fatalf("CreateRate(%s) failed: %v", rate.ID, err)
		}
	}

	t.Run("scoped lookups", func(t *testing.T) {
		rate, err := storage.FindContractRate(ctx, g.contract.ID)
		if err != nil || rate.ID != contractRate.ID {
			t.Fatalf("FindContractRate = %#v, %v", rate, err)
		}
		rate, err = storage.FindEmployeeRate(ctx, g.employee.ID)
		if err != nil || rate.ID != employeeRate.ID || rate.ContractID != nil {
			t.Fatalf("FindEmployeeRate = %#v, %v", rate, err)
		}
		if _, err := storage.FindEmployeeRate(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("one rate per contract and employee", func(t *testing.T) {
		second := contractRate
		second.ID = "rate-contract-2"
		if err := storage.CreateRate(ctx, second); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate for contract rate, got %v", err)
		}
		second = employeeRate
		second.ID = "rate-employee-2"
		if err := storage.CreateRate(ctx, second); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate for employee rate, got %v", err)
		}
	})

	t.Run("default rate get or create", func(t *testing.T) {
		first, err := storage.GetOrCreateDefaultRate(ctx, persistence.Rate{ID: "default-1", Value: 3000, CreatedAt: baseTime, UpdatedAt: baseTime})
		if err != nil {
			t.Fatalf("GetOrCreateDefaultRate failed: %v", err)
		}
		second, err := storage.GetOrCreateDefaultRate(ctx, persistence.Rate{ID: "default-2", Value: 3000, CreatedAt: baseTime, UpdatedAt: baseTime})
		if err != nil {
			t.Fatalf("second GetOrCreateDefaultRate failed: %v", err)
		}
		if first.ID != "default-1" || second.ID != first.ID || first.Value != 3000 {
			t.Fatalf("expected the same default rate, got %#v and %#v", first, second)
		}
		if err := storage.CreateRate(ctx, persistence.Rate{ID: "default-3", Value: 10, CreatedAt: baseTime, UpdatedAt: baseTime}); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected a second default to be rejected, got %v", err)
		}
	})
}

func TestGetOrCreateDefaultRateConcurrent(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rate, err := storage.GetOrCreateDefaultRate(ctx, persistence.Rate{
				ID: fmt.Sprintf("default-%d", i), Value: 3000, CreatedAt: baseTime, UpdatedAt: baseTime,
			})
			ids[i], errs[i] = rate.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("workers observed different default rates: %v", ids)
		}
	}

	rates, err := storage.ListRates(ctx)
	if err != nil {
		t.Fatalf("ListRates failed: %v", err)
	}
	if len(rates) != 1 {
		t.Fatalf("expected exactly one default rate, got %d", len(rates))
	}
}

func TestTimeEntryRepository(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	g := seedGraph(t, storage, "a")
	other := seedGraph(t, storage, "b")

	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }
	entries := []persistence.TimeEntry{
		newEntry("te-3", g, day(5), "draft", baseTime.Add(3*time.Second)),
		newEntry("te-1", g, day(4), "approved", baseTime.Add(time.Second)),
		newEntry("te-2", g, day(4), "draft", baseTime.Add(2*time.Second)),
		newEntry("te-4", other, day(6), "draft", baseTime.Add(4*time.Second)),
	}
	for _, entry := range entries {
		if err := storage.CreateTimeEntry(ctx, entry); err != nil {
			t.Fatalf("CreateTimeEntry(%s) failed: %v", entry.ID, err)
		}
	}

	t.Run("filters and ordering", func(t *testing.T) {
		listed, err := storage.ListTimeEntries(ctx, persistence.TimeEntryFilter{EmployeeID: g.employee.ID})
		if err != nil {
			t.Fatalf("ListTimeEntries failed: %v", err)
		}
		want := []string{"te-1", "te-2", "te-3"}
		if len(listed) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(listed))
		}
		for i, id := range want {
			if listed[i].ID != id {
				t.Fatalf("position %d: expected %s, got %s", i, id, listed[i].ID)
			}
		}

		start := day(5)
		listed, err = storage.ListTimeEntries(ctx, persistence.TimeEntryFilter{Status: "draft", StartDate: &start})
		if err != nil {
			t.Fatalf("ListTimeEntries failed: %v", err)
		}
		if len(listed) != 2 || listed[0].ID != "te-3" || listed[1].ID != "te-4" {
			t.Fatalf("unexpected filtered entries: %#v", listed)
		}

		listed, err = storage.ListTimeEntries(ctx, persistence.TimeEntryFilter{Limit: 1, Offset: 1})
		if err != nil || len(listed) != 1 || listed[0].ID != "te-2" {
			t.Fatalf("unexpected page: %#v (%v)", listed, err)
		}
	})

	t.Run("rate and calendar updates", func(t *testing.T) {
		rate, err := storage.GetOrCreateDefaultRate(ctx, persistence.Rate{ID: "default", Value: 3000, CreatedAt: baseTime, UpdatedAt: baseTime})
		if err != nil {
			t.Fatalf("GetOrCreateDefaultRate failed: %v", err)
		}
		if err := storage.SetTimeEntryRate(ctx, "te-1", &rate.ID, baseTime.Add(time.Hour)); err != nil {
			t.Fatalf("SetTimeEntryRate failed: %v", err)
		}
		if err := storage.SetCalendarEventID(ctx, "te-1", strPtr("evt-1")); err != nil {
			t.Fatalf("SetCalendarEventID failed: %v", err)
		}

		entry, err := storage.GetTimeEntry(ctx, "te-1")
		if err != nil {
			t.Fatalf("GetTimeEntry failed: %v", err)
		}
		if entry.RateID == nil || *entry.RateID != rate.ID || entry.CalendarEventID == nil || *entry.CalendarEventID != "evt-1" {
			t.Fatalf("unexpected entry: %#v", entry)
		}

		unsynced, err := storage.ListTimeEntries(ctx, persistence.TimeEntryFilter{EmployeeID: g.employee.ID, Unsynced: true})
		if err != nil || len(unsynced) != 2 {
			t.Fatalf("expected two unsynced entries, got %d (%v)", len(unsynced), err)
		}

		if err := storage.DeleteRate(ctx, rate.ID); !errors.Is(err, persistence.ErrReferenced) {
			t.Fatalf("expected referenced rate delete to fail, got %v", err)
		}
	})

	t.Run("update keeps the owner", func(t *testing.T) {
		entry, err := storage.GetTimeEntry(ctx, "te-2")
		if err != nil {
			t.Fatalf("GetTimeEntry failed: %v", err)
		}
		entry.EmployeeID = other.employee.ID
		entry.MatterID = other.matter.ID
		entry.Hours = 3.5
		if err := storage.UpdateTimeEntry(ctx, entry); err != nil {
			t.Fatalf("UpdateTimeEntry failed: %v", err)
		}
		entry, err = storage.GetTimeEntry(ctx, "te-2")
		if err != nil {
			t.Fatalf("GetTimeEntry failed: %v", err)
		}
		if entry.EmployeeID != g.employee.ID || entry.MatterID != other.matter.ID || entry.Hours != 3.5 {
			t.Fatalf("unexpected updated entry: %#v", entry)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := storage.DeleteTimeEntry(ctx, "te-4"); err != nil {
			t.Fatalf("DeleteTimeEntry failed: %v", err)
		}
		if _, err := storage.GetTimeEntry(ctx, "te-4"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestReportReturnsApprovedOnly(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	g := seedGraph(t, storage, "a")
	other := seedGraph(t, storage, "b")

	rate := persistence.Rate{ID: "rate-a", Value: 4500, ContractID: strPtr(g.contract.ID), CreatedAt: baseTime, UpdatedAt: baseTime}
	if err := storage.CreateRate(ctx, rate); err != nil {
		t.Fatalf("CreateRate failed: %v", err)
	}

	day := func(d int) time.Time { return time.Date(2024, time.April, d, 0, 0, 0, 0, time.UTC) }
	approvedLate := newEntry("te-late", g, day(10), "approved", baseTime.Add(time.Second))
	approvedLate.RateID = &rate.ID
	approvedEarly := newEntry("te-early", g, day(2), "approved", baseTime.Add(2*time.Second))
	draft := newEntry("te-draft", g, day(1), "draft", baseTime)
	otherApproved := newEntry("te-other", other, day(3), "approved", baseTime.Add(3*time.Second))

	for _, entry := range []persistence.TimeEntry{approvedLate, approvedEarly, draft, otherApproved} {
		if err := storage.CreateTimeEntry(ctx, entry); err != nil {
			t.Fatalf("CreateTimeEntry(%s) failed: %v", entry.ID, err)
		}
	}

	rows, err := storage.Report(ctx, persistence.ReportFilter{ClientID: g.client.ID})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if len(rows) != 2 || rows[0].EntryID != "te-early" || rows[1].EntryID != "te-late" {
		t.Fatalf("unexpected report rows: %#v", rows)
	}
	late := rows[1]
	if late.RateValue == nil || *late.RateValue != 4500 || late.ClientName != g.client.Name || late.MatterCode != g.matter.Code || late.ContractNumber != g.contract.Number {
		t.Fatalf("unexpected joined row: %#v", late)
	}
	if rows[0].RateValue != nil {
		t.Fatalf("expected nil rate value for entry without rate")
	}

	start, end := day(3), day(3)
	rows, err = storage.Report(ctx, persistence.ReportFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	if len(rows) != 1 || rows[0].EntryID != "te-other" {
		t.Fatalf("unexpected date-filtered rows: %#v", rows)
	}

	rows, err = storage.Report(ctx, persistence.ReportFilter{EmployeeID: g.employee.ID, MatterID: g.matter.ID, ContractID: g.contract.ID})
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}
	for _, row := range rows {
		if row.Status != "approved" {
			t.Fatalf("report returned non-approved row: %#v", row)
		}
	}
}

func TestWithPragmas(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"legaltime.db", "file:legaltime.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:x.db?_pragma=foreign_keys(1)", "file:x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:y.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(100)", "file:y.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(100)"},
	}
	for _, tc := range cases {
		if got := withPragmas(tc.in); got != tc.want {
			t.Fatalf("withPragmas(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
