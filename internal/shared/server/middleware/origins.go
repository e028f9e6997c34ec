package middleware

import "strings"

// Origins is a normalised CORS_ALLOW_ORIGINS list shared by the CORS
// middleware and the websocket upgrader.
type Origins struct {
	any  bool
	list map[string]struct{}
}

// ParseOrigins trims whitespace and trailing slashes. A "*" entry allows any
// origin; blank entries are ignored.
func ParseOrigins(allowed []string) Origins {
	o := Origins{list: make(map[string]struct{}, len(allowed))}
	for _, raw := range allowed {
		switch v := normalizeOrigin(raw); v {
		case "":
		case "*":
			o.any = true
		default:
			o.list[v] = struct{}{}
		}
	}
	return o
}

// Empty reports whether no usable entry was configured.
func (o Origins) Empty() bool {
	return !o.any && len(o.list) == 0
}

// Allows reports whether origin matches the list.
func (o Origins) Allows(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	if o.any {
		return true
	}
	_, ok := o.list[origin]
	return ok
}

func normalizeOrigin(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}
