package rbac

// Role constants
const (
	RoleCreator = "creator"
	RoleBrand   = "brand"
	RoleAdmin   = "admin"
)

// Permission constants
const (
	PermApplyToCampaign    = "apply_to_campaign"
	PermViewApplications   = "view_applications"
	PermDecideApplication  = "decide_application"
	PermCreateCampaign     = "create_campaign"
	PermViewContracts      = "view_contracts"
	PermSendMessage        = "send_message"
	PermManageNotification = "manage_notification"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleCreator: {
		PermApplyToCampaign, PermViewContracts, PermSendMessage, PermManageNotification,
	},
	RoleBrand: {
		PermCreateCampaign, PermViewApplications, PermDecideApplication,
		PermViewContracts, PermSendMessage, PermManageNotification,
		// Brand CANNOT: PermApplyToCampaign
	},
	RoleAdmin: {
		PermApplyToCampaign, PermViewApplications, PermDecideApplication,
		PermCreateCampaign, PermViewContracts, PermSendMessage, PermManageNotification,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
