package gitlab

import "strings"

const pathSegmentSeparatorConstant = "/"

// NormalizeProject maps a raw API record into the canonical Project shape.
// Missing optional fields become empty strings so downstream code never
// branches on field presence. The group prefers the namespace full path,
// falling back to the namespace name and then the namespace path; a missing
// project name falls back to the last path segment.
func NormalizeProject(record ProjectRecord) Project {
	group := record.Namespace.FullPath
	if len(group) == 0 {
		group = record.Namespace.Name
	}
	if len(group) == 0 {
		group = record.Namespace.Path
	}

	name := record.Name
	if len(name) == 0 && len(record.PathWithNamespace) > 0 {
		segments := strings.Split(record.PathWithNamespace, pathSegmentSeparatorConstant)
		name = segments[len(segments)-1]
	}

	return Project{
		ID:         record.ID,
		Name:       name,
		Group:      group,
		Path:       record.PathWithNamespace,
		WebURL:     record.WebURL,
		Visibility: record.Visibility,
	}
}
