package application

import (
	"testing"

	"github.com/makarovada/legal-time/internal/access"
)

// testWorld is a small catalog: two contracts with one matter each, three
// employees of increasing privilege and a single activity type.
type testWorld struct {
	store *memoryStore

	lawyer, senior, admin Employee
	contractA, contractB  Contract
	matterA, matterB      Matter
	activity              ActivityType
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()

	store := newMemoryStore()
	now := fixedNow()
	w := &testWorld{store: store}

	w.lawyer = Employee{ID: "emp-lawyer", Name: "Lena Lawyer", Email: "lena@example.com", Role: access.RoleLawyer, CreatedAt: now, UpdatedAt: now}
	w.senior = Employee{ID: "emp-senior", Name: "Sam Senior", Email: "sam@example.com", Role: access.RoleSeniorLawyer, CreatedAt: now, UpdatedAt: now}
	w.admin = Employee{ID: "emp-admin", Name: "Ada Admin", Email: "ada@example.com", Role: access.RoleAdmin, CreatedAt: now, UpdatedAt: now}
	for _, e := range []Employee{w.lawyer, w.senior, w.admin} {
		store.employees[e.ID] = e
	}

	store.clients["client-1"] = Client{ID: "client-1", Name: "Acme LLC", Type: ClientTypeLegal}
	w.contractA = Contract{ID: "contract-a", ClientID: "client-1", Number: "C-001", Date: now}
	w.contractB = Contract{ID: "contract-b", ClientID: "client-1", Number: "C-002", Date: now}
	store.contracts[w.contractA.ID] = w.contractA
	store.contracts[w.contractB.ID] = w.contractB

	w.matterA = Matter{ID: "matter-a", ContractID: w.contractA.ID, Code: "M-A", Name: "Merger review"}
	w.matterB = Matter{ID: "matter-b", ContractID: w.contractB.ID, Code: "M-B", Name: "Lease dispute"}
	store.matters[w.matterA.ID] = w.matterA
	store.matters[w.matterB.ID] = w.matterB

	w.activity = ActivityType{ID: "activity-1", Name: "Consultation"}
	store.activities[w.activity.ID] = w.activity

	return w
}

func principalOf(e Employee) Principal {
	return Principal{EmployeeID: e.ID, Role: e.Role}
}

func strPtr(value string) *string { return &value }

func (w *testWorld) addRate(id string, value float64, employeeID, contractID *string) Rate {
	rate := Rate{ID: id, Value: value, EmployeeID: employeeID, ContractID: contractID}
	w.store.rates = append(w.store.rates, rate)
	return rate
}

func (w *testWorld) resolver() *RateResolver {
	return NewRateResolver(w.store, w.store, sequence("rate"), fixedNow)
}

func (w *testWorld) timeEntries() *TimeEntryService {
	return NewTimeEntryService(w.store, w.store, w.store, w.resolver(), sequence("entry"), fixedNow)
}

func (w *testWorld) entryInput(matter Matter, hours float64) TimeEntryInput {
	return TimeEntryInput{
		MatterID:       matter.ID,
		ActivityTypeID: w.activity.ID,
		Hours:          hours,
		Description:    "drafting",
		Date:           "2024-05-06",
	}
}
