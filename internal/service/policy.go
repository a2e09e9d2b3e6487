package service

// Role is a staff role. Farmers do not log in; staff act on their behalf.
type Role string

// Operation names a state-changing or reporting action a role may perform.
type Operation string

const (
	RoleBrooderManager Role = "brooder_manager"
	RoleSalesRep       Role = "sales_rep"
)

const (
	OpManageStock    Operation = "manage_stock"
	OpManageFeed     Operation = "manage_feed"
	OpApproveRequest Operation = "approve_request"
	OpRejectRequest  Operation = "reject_request"
	OpCancelRequest  Operation = "cancel_request"
	OpManagerReport  Operation = "manager_report"

	OpManageFarmers Operation = "manage_farmers"
	OpSubmitRequest Operation = "submit_request"
	OpProcessSale   Operation = "process_sale"
	OpSalesReport   Operation = "sales_report"

	OpViewRequests Operation = "view_requests"
	OpViewSales    Operation = "view_sales"
)

// capabilities maps (role, operation) to allowed. Handlers consult it once at
// dispatch instead of repeating role comparisons per endpoint.
var capabilities = map[Role]map[Operation]bool{
	RoleBrooderManager: {
		OpManageStock:    true,
		OpManageFeed:     true,
		OpApproveRequest: true,
		OpRejectRequest:  true,
		OpCancelRequest:  true,
		OpManagerReport:  true,
		OpViewRequests:   true,
		OpViewSales:      true,
	},
	RoleSalesRep: {
		OpManageFarmers: true,
		OpSubmitRequest: true,
		OpProcessSale:   true,
		OpSalesReport:   true,
		OpViewRequests:  true,
		OpViewSales:     true,
	},
}

// Allowed reports whether the role may perform the operation.
func Allowed(role Role, op Operation) bool {
	return capabilities[role][op]
}

// ParseRole validates a role string coming from a token or registration form.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleBrooderManager, RoleSalesRep:
		return Role(raw), true
	}
	return "", false
}
