package middleware

import (
	"testing"

	"github.com/twoschool/twoschool-api/internal/models"
)

// every protected route the router registers must be reachable by at least
// one role, otherwise the gate locks it out entirely
var registeredRoutes = []string{
	"signup",
	"getUser",
	"modifyUser",
	"deleteUser",
	"getAllUsers",
	"getClasses",
	"getClass",
	"createClass",
	"addUserToClass",
	"exportClass",
	"createSubject",
	"getSubjects",
	"addSubjectToTeacher",
	"addHomeworkToClass",
	"getHomeworks",
	"addReport",
	"getReports",
	"modifyItem",
	"deleteItem",
	"addGrade",
	"getGrades",
}

func TestDefaultPermissionsCoverRegisteredRoutes(t *testing.T) {
	routes := DefaultPermissions().Routes()
	for _, name := range registeredRoutes {
		if !routes[name] {
			t.Fatalf("route %q is not reachable by any role", name)
		}
	}
	if len(routes) != len(registeredRoutes) {
		t.Fatalf("permission table names %d routes, router registers %d", len(routes), len(registeredRoutes))
	}
}

func TestRoleDenials(t *testing.T) {
	table := DefaultPermissions()

	cases := []struct {
		category models.Category
		route    string
		allowed  bool
	}{
		{models.CategoryStudent, "getHomeworks", true},
		{models.CategoryStudent, "modifyItem", false},
		{models.CategoryStudent, "addGrade", false},
		{models.CategoryStudent, "signup", false},
		{models.CategoryStudent, "deleteUser", false},
		{models.CategoryTeacher, "addHomeworkToClass", true},
		{models.CategoryTeacher, "addGrade", true},
		{models.CategoryTeacher, "signup", false},
		{models.CategoryTeacher, "createClass", false},
		{models.CategoryTeacher, "exportClass", false},
		{models.CategoryAdmin, "signup", true},
		{models.CategoryAdmin, "exportClass", true},
		{models.CategoryAdmin, "addHomeworkToClass", false},
		{models.CategoryAdmin, "addReport", false},
		{models.CategoryAdmin, "addGrade", false},
		{models.CategoryUnknown, "getUser", false},
	}
	for _, tc := range cases {
		if got := table.Allows(tc.category, tc.route); got != tc.allowed {
			t.Fatalf("%s on %s: got %v, want %v", tc.category, tc.route, got, tc.allowed)
		}
	}
}

func TestRouteName(t *testing.T) {
	cases := map[string]string{
		"/getUser/123":     "getUser",
		"/getHomeworks/c1": "getHomeworks",
		"/signup":          "signup",
		"/":                "",
		"/exportClass/c1":  "exportClass",
		"/modifyUser/s1/x": "modifyUser",
	}
	for path, want := range cases {
		if got := RouteName(path); got != want {
			t.Fatalf("RouteName(%q) = %q, want %q", path, got, want)
		}
	}
}
