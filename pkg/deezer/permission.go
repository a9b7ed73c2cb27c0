package deezer

import "strings"

// Permission is a capability the end user grants to the application.
type Permission string

const (
	PermissionBasicAccess      Permission = "basic_access"
	PermissionEmail            Permission = "email"
	PermissionOfflineAccess    Permission = "offline_access"
	PermissionManageLibrary    Permission = "manage_library"
	PermissionManageCommunity  Permission = "manage_community"
	PermissionDeleteLibrary    Permission = "delete_library"
	PermissionListeningHistory Permission = "listening_history"
)

// DefaultPermissions is used when the caller does not ask for any permission.
var DefaultPermissions = []Permission{PermissionBasicAccess}

// AllPermissions lists every permission Deezer knows about.
var AllPermissions = []Permission{
	PermissionBasicAccess,
	PermissionEmail,
	PermissionOfflineAccess,
	PermissionManageLibrary,
	PermissionManageCommunity,
	PermissionDeleteLibrary,
	PermissionListeningHistory,
}

// String returns the wire representation of the permission.
func (p Permission) String() string {
	return string(p)
}

// IsValid returns true if the permission is one of AllPermissions.
func (p Permission) IsValid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePermissions converts raw strings into permissions, keeping order.
// Unknown values are passed through; Deezer decides what it accepts.
func ParsePermissions(values []string) []Permission {
	perms := make([]Permission, 0, len(values))
	for _, v := range values {
		perms = append(perms, Permission(v))
	}
	return perms
}

// ToCommaSeparatedValues joins values with "," in input order.
// An empty slice yields an empty string.
func ToCommaSeparatedValues(values []string) string {
	return strings.Join(values, ",")
}

func joinPermissions(perms []Permission) string {
	values := make([]string, 0, len(perms))
	for _, p := range perms {
		values = append(values, p.String())
	}
	return ToCommaSeparatedValues(values)
}
