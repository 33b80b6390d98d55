package server

import "strings"

// Routes served by RegisterDefaultEndpoints.
var systemPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/info":   true,
}

// formatHandlerName turns Gin's handler path into a short name.
//
//	"github.com/org/svc/messaging.(*Handler).Send-fm" -> "Handler.Send"
//	"github.com/org/svc/server/endpoint.Health.func1" -> "health"
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}

	// Drop a lowercase package prefix.
	pkg, rest, ok := strings.Cut(name, ".")
	if ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

// methodOrder returns a sort key for HTTP methods (GET first, DELETE last).
func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
