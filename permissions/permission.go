package permissions

import (
	"context"
	_ "embed"
	"encoding/json"
	"slices"

	"github.com/rs/zerolog/log"

	"orzu/shared/constant"
	"orzu/shared/failure"
)

//go:embed permissions.json
var permissionsData []byte

// Capability is a single permitted action within the system.
type Capability string

const (
	CapabilityCreate    Capability = "create"
	CapabilityRead      Capability = "read"
	CapabilityUpdate    Capability = "update"
	CapabilityDelete    Capability = "delete"
	CapabilityDeleteOwn Capability = "delete_own"
	CapabilityAnalytics Capability = "analytics"
	CapabilityExport    Capability = "export"
	CapabilitySettings  Capability = "settings"
)

// roleCapabilities is the static role matrix. Administrators hold every
// capability; managers may delete only bookings they created themselves.
var roleCapabilities = map[string][]Capability{
	constant.RoleAdministrator: {
		CapabilityCreate, CapabilityRead, CapabilityUpdate, CapabilityDelete,
		CapabilityDeleteOwn, CapabilityAnalytics, CapabilityExport, CapabilitySettings,
	},
	constant.RoleManager: {
		CapabilityCreate, CapabilityRead, CapabilityUpdate,
		CapabilityDeleteOwn, CapabilityAnalytics, CapabilityExport,
	},
	constant.RoleOperator: {
		CapabilityCreate, CapabilityRead, CapabilityUpdate,
	},
	constant.RoleViewer: {
		CapabilityRead,
	},
}

// Can reports whether the given role holds the capability. Unknown roles
// hold nothing.
func Can(role string, capability Capability) bool {
	return slices.Contains(roleCapabilities[role], capability)
}

// Roles lists every role that holds the given capability.
func Roles(capability Capability) []string {
	roles := []string{}

	for role, capabilities := range roleCapabilities {
		if slices.Contains(capabilities, capability) {
			roles = append(roles, role)
		}
	}

	slices.Sort(roles)

	return roles
}

// Require checks the capability against the role stored in the request
// context. It fails closed: a missing or unknown role is denied before
// any store access happens.
func Require(ctx context.Context, capability Capability) error {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	if !Can(role, capability) {
		return failure.ForbiddenError
	}

	return nil
}

type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

func (r *PermissionData) FindPermissions(path, method string) Permission {
	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && rp.Method == method
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

func Get() *PermissionData {
	var permissions PermissionData

	err := json.Unmarshal(permissionsData, &permissions)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return &permissions
}
