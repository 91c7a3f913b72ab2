package signatures

import "testing"

func permutations(roles []Role) [][]Role {
	if len(roles) <= 1 {
		return [][]Role{append([]Role{}, roles...)}
	}
	var out [][]Role
	for i := range roles {
		rest := make([]Role, 0, len(roles)-1)
		rest = append(rest, roles[:i]...)
		rest = append(rest, roles[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Role{roles[i]}, p...))
		}
	}
	return out
}

func TestIsFullySignedIndependentOfOrder(t *testing.T) {
	for _, order := range permutations(RequiredRoles) {
		var records []Record
		for i, role := range order {
			records = append(records, Record{ID: string(role), Role: role})
			complete := IsFullySigned(records)
			if i < len(order)-1 && complete {
				t.Fatalf("order %v: complete after %d records", order, i+1)
			}
			if i == len(order)-1 && !complete {
				t.Fatalf("order %v: not complete after all roles", order)
			}
		}
	}
}

func TestMissingRoles(t *testing.T) {
	missing := MissingRoles([]Record{{Role: RoleArchitect}})
	if len(missing) != 2 || missing[0] != RoleContractor || missing[1] != RoleOwner {
		t.Fatalf("unexpected missing roles %v", missing)
	}
	if got := MissingRoles(nil); len(got) != 3 {
		t.Fatalf("expected all roles missing, got %v", got)
	}
}
