package models

import "fieldstock/pkg/roles"

// Actor is the authenticated caller as handed over by the auth boundary.
type Actor struct {
	ID       int64      `json:"id"`
	Role     roles.Role `json:"role"`
	RegionID *int64     `json:"region_id,omitempty"`
}
