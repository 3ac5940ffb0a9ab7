package brief

import "sort"

// Transform normalizes an incoming timesheet payload before it is handed to
// the model. The upstream workflow sends each project's priorities either as
// an object keyed by priority id or as a plain list; the model prompt expects
// a list, so object values are flattened (sorted by key for a stable order)
// and anything else becomes an empty list.
func Transform(payload map[string]any) map[string]any {
	transformed := map[string]any{
		"date":       payload["date"],
		"users":      []any{},
		"priorities": getOr(payload, "priorities", []any{}),
		"errors":     getOr(payload, "errors", map[string]any{}),
	}

	users, _ := payload["users"].([]any)
	transformedUsers := make([]any, 0, len(users))
	for _, u := range users {
		user, ok := u.(map[string]any)
		if !ok {
			continue
		}

		userData := map[string]any{
			"user":            user["user"],
			"total_hours":     user["total_hours"],
			"morning_hours":   user["morning_hours"],
			"afternoon_hours": user["afternoon_hours"],
			"projects":        []any{},
			"blocks":          getOr(user, "blocks", []any{}),
		}

		projects, _ := user["projects"].([]any)
		transformedProjects := make([]any, 0, len(projects))
		for _, p := range projects {
			project, ok := p.(map[string]any)
			if !ok {
				continue
			}
			transformedProjects = append(transformedProjects, map[string]any{
				"project":             project["project"],
				"total_block_hours":   project["total_block_hours"],
				"priorities":          normalizePriorities(project["priorities"]),
				"unprioritized_tasks": getOr(project, "unprioritized_tasks", []any{}),
			})
		}
		userData["projects"] = transformedProjects
		transformedUsers = append(transformedUsers, userData)
	}
	transformed["users"] = transformedUsers

	return transformed
}

func normalizePriorities(v any) []any {
	switch priorities := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(priorities))
		for k := range priorities {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]any, 0, len(priorities))
		for _, k := range keys {
			values = append(values, priorities[k])
		}
		return values
	case []any:
		return priorities
	default:
		return []any{}
	}
}

func getOr(m map[string]any, key string, fallback any) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return fallback
}
