// Filename: angular/members.go
// Package angular provides lint rules for AngularJS 1.x application code.
// This file contains the definitions of the $scope members a controller may
// still use directly.
package angular

// ScopeIdentifier is the local name the injected scope object is bound to.
const ScopeIdentifier = "$scope"

// allowedScopeMembers are the lifecycle, event and watcher members of a
// scope. They have no equivalent on the controller instance, so using them
// inside a controller is not a controllerAs violation.
var allowedScopeMembers = map[string]bool{
	"$id":              true,
	"$parent":          true,
	"$root":            true,
	"$destroy":         true,
	"$broadcast":       true,
	"$emit":            true,
	"$on":              true,
	"$applyAsync":      true,
	"$apply":           true,
	"$evalAsync":       true,
	"$eval":            true,
	"$digest":          true,
	"$watch":           true,
	"$watchCollection": true,
	"$watchGroup":      true,
	"$new":             true,
}

// IsAllowedScopeMember reports whether name may be used on $scope inside a controller.
func IsAllowedScopeMember(name string) bool {
	return allowedScopeMembers[name]
}
