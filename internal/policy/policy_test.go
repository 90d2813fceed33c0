package policy

import (
	"testing"
	"time"

	"timetrack/internal/apperror"
	"timetrack/internal/model"
)

func fixedNow() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

func TestAuthorize(t *testing.T) {
	p := New(fixedNow)

	emp := Actor{ID: "E1", Role: model.RoleEmployee, Department: "Eng"}
	mgr := Actor{ID: "M1", Role: model.RoleManager, Department: "Eng"}
	orphanMgr := Actor{ID: "M2", Role: model.RoleManager}
	admin := Actor{ID: "A1", Role: model.RoleAdministrator}

	ownEng := Target{EmployeeID: "E1", Department: "Eng"}
	otherEng := Target{EmployeeID: "E2", Department: "Eng"}
	otherOps := Target{EmployeeID: "E3", Department: "Ops"}
	today := fixedNow()
	tomorrow := today.Add(24 * time.Hour)

	cases := []struct {
		name   string
		actor  Actor
		action Action
		target Target
		want   bool
	}{
		{"admin creates employee", admin, CreateEmployee, Target{}, true},
		{"manager cannot create employee", mgr, CreateEmployee, Target{}, false},
		{"employee cannot list everyone", emp, ViewAllEmployees, Target{}, false},
		{"admin lists everyone", admin, ViewAllEmployees, Target{}, true},
		{"manager lists own department", mgr, ViewEmployees, Target{Department: "Eng"}, true},
		{"manager cannot list other department", mgr, ViewEmployees, Target{Department: "Ops"}, false},
		{"employee views self", emp, ViewEmployees, ownEng, true},
		{"employee cannot view colleague", emp, ViewEmployees, otherEng, false},
		{"employee updates self", emp, UpdateEmployee, ownEng, true},
		{"employee cannot update colleague", emp, UpdateEmployee, otherEng, false},
		{"only admin changes roles", mgr, UpdateEmployeeRole, otherEng, false},

		{"employee creates own timesheet today", emp, CreateTimesheet, Target{EmployeeID: "E1", Date: today}, true},
		{"employee cannot create for colleague", emp, CreateTimesheet, Target{EmployeeID: "E2", Date: today}, false},
		{"manager cannot create timesheet", mgr, CreateTimesheet, Target{EmployeeID: "M1", Date: today}, false},
		{"admin cannot create timesheet", admin, CreateTimesheet, Target{EmployeeID: "A1", Date: today}, false},
		{"future date rejected", emp, CreateTimesheet, Target{EmployeeID: "E1", Date: tomorrow}, false},

		{"employee views own timesheet", emp, ViewTimesheet, ownEng, true},
		{"employee cannot view colleague timesheet", emp, ViewTimesheet, otherEng, false},
		{"employee edits own timesheet", emp, UpdateTimesheet, ownEng, true},
		{"manager views department timesheet", mgr, ViewTimesheet, otherEng, true},
		{"manager cannot view other department", mgr, ViewTimesheet, otherOps, false},
		{"manager without department denied", orphanMgr, ViewTimesheet, Target{EmployeeID: "E9"}, false},
		{"admin views anything", admin, ViewTimesheet, otherOps, true},

		{"employee cannot change status", emp, UpdateTimesheetStatus, ownEng, false},
		{"manager approves in department", mgr, UpdateTimesheetStatus, otherEng, true},
		{"manager cannot approve other department", mgr, UpdateTimesheetStatus, otherOps, false},
		{"admin approves anywhere", admin, UpdateTimesheetStatus, otherOps, true},
		{"employee cannot bulk update", emp, BulkUpdateStatus, ownEng, false},
		{"manager bulk updates in department", mgr, BulkUpdateStatus, otherEng, true},
		{"manager cannot bulk update other department", mgr, BulkUpdateStatus, otherOps, false},
		{"manager approves onboarding in department", mgr, UpdateEmployeeStatus, Target{EmployeeID: "E2", Department: "Eng", Role: model.RoleEmployee}, true},
		{"manager cannot approve onboarding elsewhere", mgr, UpdateEmployeeStatus, Target{EmployeeID: "E3", Department: "Ops", Role: model.RoleEmployee}, false},
		{"manager cannot approve own onboarding", mgr, UpdateEmployeeStatus, Target{EmployeeID: "M1", Department: "Eng", Role: model.RoleManager}, false},
		{"manager cannot approve fellow manager", mgr, UpdateEmployeeStatus, Target{EmployeeID: "M3", Department: "Eng", Role: model.RoleManager}, false},
		{"manager cannot approve administrator", mgr, UpdateEmployeeStatus, Target{EmployeeID: "A2", Department: "Eng", Role: model.RoleAdministrator}, false},
		{"admin approves a manager", admin, UpdateEmployeeStatus, Target{EmployeeID: "M3", Department: "Eng", Role: model.RoleManager}, true},
		{"admin cannot approve self", admin, UpdateEmployeeStatus, Target{EmployeeID: "A1", Role: model.RoleAdministrator}, false},
		{"employee cannot approve onboarding", emp, UpdateEmployeeStatus, Target{EmployeeID: "E2", Department: "Eng", Role: model.RoleEmployee}, false},

		{"unknown role denied", Actor{ID: "X", Role: "intern"}, ViewTimesheet, Target{EmployeeID: "X"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := p.Authorize(tc.actor, tc.action, tc.target)
			if d.Allowed != tc.want {
				t.Fatalf("allowed = %v, want %v (reason %q)", d.Allowed, tc.want, d.Reason)
			}
			if !tc.want && d.Err() == nil {
				t.Fatal("denied decision must produce an error")
			}
			if tc.want && d.Err() != nil {
				t.Fatalf("allowed decision produced error %v", d.Err())
			}
		})
	}
}

func TestFutureDateIsValidationFailure(t *testing.T) {
	p := New(fixedNow)
	d := p.Authorize(
		Actor{ID: "E1", Role: model.RoleEmployee},
		CreateTimesheet,
		Target{EmployeeID: "E1", Date: fixedNow().AddDate(0, 0, 1)},
	)
	if got := apperror.GetCode(d.Err()); got != apperror.CodeValidation {
		t.Fatalf("code = %q, want %q", got, apperror.CodeValidation)
	}
}

func TestDepartmentMismatchIsForbidden(t *testing.T) {
	p := New(fixedNow)
	d := p.Authorize(
		Actor{ID: "M1", Role: model.RoleManager, Department: "Eng"},
		UpdateTimesheetStatus,
		Target{EmployeeID: "E3", Department: "Ops"},
	)
	if got := apperror.GetCode(d.Err()); got != apperror.CodeForbidden {
		t.Fatalf("code = %q, want %q", got, apperror.CodeForbidden)
	}
}
