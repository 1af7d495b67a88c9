package middleware

import (
	"strings"

	"github.com/twoschool/twoschool-api/internal/models"
)

// PermissionTable maps each role to the set of route names it may call.
// Route names are the first path segment of the request URL, so every
// operation the API exposes must appear here to be reachable.
type PermissionTable map[models.Category]map[string]bool

// Allows reports whether the role may call the named route.
func (t PermissionTable) Allows(category models.Category, route string) bool {
	perms, ok := t[category]
	if !ok {
		return false
	}
	return perms[route]
}

// Routes returns the union of route names across all roles.
func (t PermissionTable) Routes() map[string]bool {
	routes := map[string]bool{}
	for _, perms := range t {
		for route := range perms {
			routes[route] = true
		}
	}
	return routes
}

// DefaultPermissions is the authorization matrix for the three roles.
func DefaultPermissions() PermissionTable {
	return PermissionTable{
		models.CategoryTeacher: {
			"getUser":            true,
			"modifyUser":         true,
			"getClasses":         true,
			"getClass":           true,
			"getSubjects":        true,
			"addHomeworkToClass": true,
			"getHomeworks":       true,
			"addReport":          true,
			"getReports":         true,
			"modifyItem":         true,
			"deleteItem":         true,
			"addGrade":           true,
			"getGrades":          true,
		},
		models.CategoryStudent: {
			"getUser":      true,
			"modifyUser":   true,
			"getClasses":   true,
			"getClass":     true,
			"getSubjects":  true,
			"getHomeworks": true,
			"getReports":   true,
			"getGrades":    true,
		},
		models.CategoryAdmin: {
			"signup":              true,
			"getUser":             true,
			"modifyUser":          true,
			"deleteUser":          true,
			"getAllUsers":         true,
			"getClasses":          true,
			"getClass":            true,
			"createClass":         true,
			"addUserToClass":      true,
			"createSubject":       true,
			"getSubjects":         true,
			"addSubjectToTeacher": true,
			"getHomeworks":        true,
			"getReports":          true,
			"modifyItem":          true,
			"deleteItem":          true,
			"getGrades":           true,
			"exportClass":         true,
		},
	}
}

// RouteName extracts the permission key from a request path: the first
// segment, with any query string already stripped by the router.
func RouteName(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}
