package compare_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitlab_compare/internal/compare"
	"github.com/temirov/gitlab_compare/internal/gitlab"
)

func comparatorProject(projectID int64, path string) gitlab.Project {
	return gitlab.Project{
		ID:         projectID,
		Name:       path,
		Group:      "grupo-a",
		Path:       path,
		WebURL:     "https://gitlab.example.com/" + path,
		Visibility: "private",
	}
}

func TestCompareCommonByPath(testInstance *testing.T) {
	list1 := []gitlab.Project{
		comparatorProject(1, "grupo-a/proj-a"),
		comparatorProject(2, "grupo-a/proj-b"),
		comparatorProject(3, "grupo-a/proj-c"),
	}
	list2 := []gitlab.Project{
		comparatorProject(20, "grupo-a/proj-c"),
		comparatorProject(21, "grupo-a/proj-a"),
		comparatorProject(22, "grupo-a/proj-z"),
	}

	result := compare.Compare(list1, list2)

	require.Equal(testInstance, 3, result.Summary.Count1)
	require.Equal(testInstance, 3, result.Summary.Count2)
	require.Equal(testInstance, 2, result.Summary.CommonCount)
	require.Len(testInstance, result.Common, result.Summary.CommonCount)

	// Common ordering follows list1, not list2.
	require.Equal(testInstance, "grupo-a/proj-a", result.Common[0].Path)
	require.Equal(testInstance, "grupo-a/proj-c", result.Common[1].Path)
	require.Equal(testInstance, int64(1), result.Common[0].Instance1.ID)
	require.Equal(testInstance, int64(21), result.Common[0].Instance2.ID)
}

func TestCompareIsDeterministic(testInstance *testing.T) {
	list1 := []gitlab.Project{comparatorProject(1, "grupo-a/proj-a"), comparatorProject(2, "grupo-a/proj-b")}
	list2 := []gitlab.Project{comparatorProject(9, "grupo-a/proj-b"), comparatorProject(10, "grupo-a/proj-a")}

	firstResult := compare.Compare(list1, list2)
	secondResult := compare.Compare(list1, list2)
	require.Equal(testInstance, firstResult, secondResult)
}

func TestCompareDoesNotMutateInputs(testInstance *testing.T) {
	list1 := []gitlab.Project{comparatorProject(1, "grupo-a/proj-a")}
	list2 := []gitlab.Project{comparatorProject(2, "grupo-a/proj-a")}
	originalList1 := append([]gitlab.Project{}, list1...)
	originalList2 := append([]gitlab.Project{}, list2...)

	_ = compare.Compare(list1, list2)

	require.Equal(testInstance, originalList1, list1)
	require.Equal(testInstance, originalList2, list2)
}

func TestCompareSingleMatchPairsFullRecords(testInstance *testing.T) {
	list1 := []gitlab.Project{comparatorProject(123, "grupo-a/proj-a")}
	list2 := []gitlab.Project{comparatorProject(999, "grupo-a/proj-a")}

	result := compare.Compare(list1, list2)

	require.Len(testInstance, result.Common, 1)
	require.Equal(testInstance, int64(123), result.Common[0].Instance1.ID)
	require.Equal(testInstance, int64(999), result.Common[0].Instance2.ID)
	require.Equal(testInstance, "grupo-a/proj-a", result.Common[0].Path)
	require.Equal(testInstance, compare.Summary{Count1: 1, Count2: 1, CommonCount: 1}, result.Summary)
}

func TestCompareEmptyFirstInstance(testInstance *testing.T) {
	list2 := []gitlab.Project{comparatorProject(5, "grupo-a/proj-a")}

	result := compare.Compare(nil, list2)

	require.Empty(testInstance, result.Common)
	require.Equal(testInstance, compare.Summary{Count1: 0, Count2: 1, CommonCount: 0}, result.Summary)
}

func TestCompareDuplicatePathsInSecondListLastWins(testInstance *testing.T) {
	list1 := []gitlab.Project{comparatorProject(1, "grupo-a/proj-a")}
	list2 := []gitlab.Project{
		comparatorProject(50, "grupo-a/proj-a"),
		comparatorProject(51, "grupo-a/proj-a"),
	}

	result := compare.Compare(list1, list2)

	require.Len(testInstance, result.Common, 1)
	require.Equal(testInstance, int64(51), result.Common[0].Instance2.ID)
}

func TestCompareSkipsEmptyPaths(testInstance *testing.T) {
	list1 := []gitlab.Project{{ID: 1}, comparatorProject(2, "grupo-a/proj-a")}
	list2 := []gitlab.Project{{ID: 3}, comparatorProject(4, "grupo-a/proj-a")}

	result := compare.Compare(list1, list2)

	require.Len(testInstance, result.Common, 1)
	require.Equal(testInstance, "grupo-a/proj-a", result.Common[0].Path)
}
