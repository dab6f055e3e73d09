package roles

// Role is the permission level carried by the current actor.
type Role string

const (
	Technician Role = "technician"
	Supervisor Role = "supervisor"
	Admin      Role = "admin"
)

type HierarchyLevel int

const (
	TechnicianLevel HierarchyLevel = 1
	SupervisorLevel HierarchyLevel = 2
	AdminLevel      HierarchyLevel = 3
)

func (r Role) GetHierarchyLevel() HierarchyLevel {
	switch r {
	case Technician:
		return TechnicianLevel
	case Supervisor:
		return SupervisorLevel
	case Admin:
		return AdminLevel
	default:
		return TechnicianLevel
	}
}

// HasPermission reports whether r sits at or above requiredRole.
func (r Role) HasPermission(requiredRole Role) bool {
	return r.IsValid() && r.GetHierarchyLevel() >= requiredRole.GetHierarchyLevel()
}

func (r Role) IsValid() bool {
	switch r {
	case Technician, Supervisor, Admin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// CanApprove is the capability gate for reviewing inventory requests.
func CanApprove(r Role) bool {
	return r.HasPermission(Supervisor)
}
