package rbac

// RolePermissions is the declarative policy table mapping each role to the
// actions it may take. Route handlers never check roles directly; they
// declare a permission and the middleware evaluates it once per request.
var RolePermissions = map[string][]string{
	"student": {
		"test:view",
		"test:list-available",
		"attempt:create",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"session:create",
		"session:view-own",
	},
	"teacher": {
		"test:create",
		"test:edit-own",
		"test:delete-own",
		"test:view",
		"test:list-own",
		"test:export",
		"attempt:view-all",
		"session:view-all",
	},
	"admin": {
		"*", // everything
	},
}
