package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/makarovada/legal-time/internal/access"
	"github.com/makarovada/legal-time/internal/application"
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// FixturePassword is the plaintext password of every seeded employee.
const FixturePassword = "correct horse battery staple"

// Graph is a minimal catalog: one employee per role and a single
// client > contract > matter chain with one activity type.
type Graph struct {
	Lawyer       application.Employee
	Senior       application.Employee
	Admin        application.Employee
	Client       application.Client
	Contract     application.Contract
	Matter       application.Matter
	ActivityType application.ActivityType
}

// PrincipalFor returns the principal acting as employee.
func PrincipalFor(employee application.Employee) application.Principal {
	return application.Principal{EmployeeID: employee.ID, Role: employee.Role}
}

// Seed builds the catalog through the services so every write passes the same
// validation and access checks as production traffic.
func Seed(tb testing.TB, services *Services) Graph {
	tb.Helper()
	ctx := context.Background()

	var graph Graph
	var err error

	graph.Admin, err = services.Employees.Bootstrap(ctx, application.EmployeeInput{
		Name: "Ada Admin", Email: "admin@firm.test", Role: string(access.RoleAdmin), Password: FixturePassword,
	})
	if err != nil {
		tb.Fatalf("bootstrap admin: %v", err)
	}
	admin := PrincipalFor(graph.Admin)

	graph.Senior, err = services.Employees.Create(ctx, admin, application.EmployeeInput{
		Name: "Sam Senior", Email: "senior@firm.test", Role: string(access.RoleSeniorLawyer), Password: FixturePassword,
	})
	if err != nil {
		tb.Fatalf("create senior lawyer: %v", err)
	}

	graph.Lawyer, err = services.Employees.Create(ctx, admin, application.EmployeeInput{
		Name: "Lee Lawyer", Email: "lawyer@firm.test", Role: string(access.RoleLawyer), Password: FixturePassword,
	})
	if err != nil {
		tb.Fatalf("create lawyer: %v", err)
	}

	graph.Client, err = services.Clients.Create(ctx, admin, application.ClientInput{Name: "Acme LLC", Type: string(application.ClientTypeLegal)})
	if err != nil {
		tb.Fatalf("create client: %v", err)
	}

	graph.Contract, err = services.Contracts.Create(ctx, admin, application.ContractInput{
		ClientID: graph.Client.ID, Number: "C-2024-01", Date: "2024-01-01",
	})
	if err != nil {
		tb.Fatalf("create contract: %v", err)
	}

	graph.Matter, err = services.Matters.Create(ctx, admin, application.MatterInput{
		ContractID: graph.Contract.ID, Code: "ACME-1", Name: "Supply dispute",
	})
	if err != nil {
		tb.Fatalf("create matter: %v", err)
	}

	graph.ActivityType, err = services.ActivityTypes.Create(ctx, admin, "Court hearing")
	if err != nil {
		tb.Fatalf("create activity type: %v", err)
	}

	return graph
}
