package catalog

import "github.com/perspectra/portal/internal/model"

// roster is the static org membership used for role validation and team
// grouping. Individual learners are not roster members.
var roster = []model.RosterEntry{
	{ID: "u-001", Email: "maya.chen@perspectra.example", Name: "Maya Chen", Role: model.RoleHR},
	{ID: "u-002", Email: "daniel.okafor@perspectra.example", Name: "Daniel Okafor", Role: model.RoleManager, TeamID: "t-product"},
	{ID: "u-003", Email: "sofia.reyes@perspectra.example", Name: "Sofia Reyes", Role: model.RoleManager, TeamID: "t-platform"},
	{ID: "u-101", Email: "liam.park@perspectra.example", Name: "Liam Park", Role: model.RoleEmployee, TeamID: "t-product", ManagerID: "u-002"},
	{ID: "u-102", Email: "amara.diallo@perspectra.example", Name: "Amara Diallo", Role: model.RoleEmployee, TeamID: "t-product", ManagerID: "u-002"},
	{ID: "u-103", Email: "jonas.weber@perspectra.example", Name: "Jonas Weber", Role: model.RoleEmployee, TeamID: "t-product", ManagerID: "u-002"},
	{ID: "u-104", Email: "priya.nair@perspectra.example", Name: "Priya Nair", Role: model.RoleEmployee, TeamID: "t-platform", ManagerID: "u-003"},
	{ID: "u-105", Email: "tomas.silva@perspectra.example", Name: "Tomas Silva", Role: model.RoleEmployee, TeamID: "t-platform", ManagerID: "u-003"},
}

// Roster returns every roster entry
func Roster() []model.RosterEntry {
	out := make([]model.RosterEntry, len(roster))
	copy(out, roster)
	return out
}

// RosterByEmail looks up a roster member by email, case-insensitively
func RosterByEmail(email string) (model.RosterEntry, bool) {
	norm := model.NormalizeEmail(email)
	for _, r := range roster {
		if model.NormalizeEmail(r.Email) == norm {
			return r, true
		}
	}
	return model.RosterEntry{}, false
}

// Employees returns every roster member with the employee role
func Employees() []model.RosterEntry {
	var out []model.RosterEntry
	for _, r := range roster {
		if r.Role == model.RoleEmployee {
			out = append(out, r)
		}
	}
	return out
}

// EmployeesOfManager returns the employees reporting to the given manager.
// An unknown manager ID yields an empty slice, not an error.
func EmployeesOfManager(managerID string) []model.RosterEntry {
	out := []model.RosterEntry{}
	for _, r := range roster {
		if r.Role == model.RoleEmployee && r.ManagerID == managerID {
			out = append(out, r)
		}
	}
	return out
}
