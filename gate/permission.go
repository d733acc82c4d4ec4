package gate

import "strings"

// Permission has the form "resource:action". Either half may be "*".
type Permission string

const (
	WildcardAll                     = "*"
	PermissionSuperAdmin Permission = "*:*"
)

func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits p into its halves; malformed permissions yield empty strings.
func (p Permission) Parse() (string, Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok || res == "" || act == "" {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether p grants requested.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, reqAct := requested.Parse()
	if res == "" || reqRes == "" {
		return false
	}
	resOK := res == WildcardAll || res == reqRes
	actOK := string(act) == WildcardAll || act == reqAct
	return resOK && actOK
}

// ParsePermissions converts raw strings, skipping malformed entries.
func ParsePermissions(raw ...string) []Permission {
	out := make([]Permission, 0, len(raw))
	for _, s := range raw {
		p := Permission(strings.TrimSpace(s))
		if res, _ := p.Parse(); res == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
