package signatures

// IsFullySigned reports whether records cover every required role. Arrival
// order does not matter.
func IsFullySigned(records []Record) bool {
	return len(MissingRoles(records)) == 0
}

// MissingRoles lists the required roles with no record, in display order.
func MissingRoles(records []Record) []Role {
	have := make(map[Role]bool, len(records))
	for _, rec := range records {
		have[rec.Role] = true
	}
	missing := make([]Role, 0, len(RequiredRoles))
	for _, role := range RequiredRoles {
		if !have[role] {
			missing = append(missing, role)
		}
	}
	return missing
}
