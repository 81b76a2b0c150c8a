package compare

import "github.com/temirov/gitlab_compare/internal/gitlab"

// CommonEntry pairs the two full project records that share one path. Fields
// are held side by side, never merged.
type CommonEntry struct {
	Path      string
	Instance1 gitlab.Project
	Instance2 gitlab.Project
}

// Summary holds the per-run counts surfaced in every report.
type Summary struct {
	Count1      int `json:"count1"`
	Count2      int `json:"count2"`
	CommonCount int `json:"common_count"`
}

// Result is the immutable outcome of one comparison run.
type Result struct {
	List1   []gitlab.Project
	List2   []gitlab.Project
	Common  []CommonEntry
	Summary Summary
}

// Compare computes the common-by-path intersection of two project lists. The
// common sequence follows list1 order. Projects with empty paths never match.
// When list2 contains duplicate paths the last occurrence wins; paths are
// expected to be unique per instance, so the tie-break exists only to keep
// the mapping construction explicit. Compare performs no I/O and does not
// mutate its inputs.
func Compare(list1 []gitlab.Project, list2 []gitlab.Project) Result {
	pathIndex := make(map[string]gitlab.Project, len(list2))
	for _, project := range list2 {
		if len(project.Path) == 0 {
			continue
		}
		pathIndex[project.Path] = project
	}

	common := make([]CommonEntry, 0)
	for _, project := range list1 {
		if len(project.Path) == 0 {
			continue
		}
		counterpart, found := pathIndex[project.Path]
		if !found {
			continue
		}
		common = append(common, CommonEntry{
			Path:      project.Path,
			Instance1: project,
			Instance2: counterpart,
		})
	}

	return Result{
		List1:  list1,
		List2:  list2,
		Common: common,
		Summary: Summary{
			Count1:      len(list1),
			Count2:      len(list2),
			CommonCount: len(common),
		},
	}
}
