package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/temirov/gitlab_compare/internal/compare"
	"github.com/temirov/gitlab_compare/internal/gitlab"
)

const (
	jsonIndentConstant                = "  "
	jsonPrefixConstant                = ""
	sectionDiscriminatorListConstant  = "LIST"
	sectionDiscriminatorCommonValue   = "COMMON_BY_PATH"
	originInstance1Constant           = "1"
	originInstance2Constant           = "2"
	blankSeparatorRowConstant         = "\n"
	splitInstance1FileTemplate        = "%s_gitlab1.%s"
	splitInstance2FileTemplate        = "%s_gitlab2.%s"
	splitCommonFileTemplate           = "%s_common.%s"
	jsonExtensionConstant             = "json"
	csvExtensionConstant              = "csv"
	combinedJSONBuildTemplateConstant = "unable to build combined JSON report: %w"
	combinedCSVBuildTemplateConstant  = "unable to build combined CSV report: %w"
	splitJSONBuildTemplateConstant    = "unable to build split JSON reports: %w"
	splitCSVBuildTemplateConstant     = "unable to build split CSV reports: %w"
)

var (
	combinedSectionHeader = []string{"SECTION", "id", "name", "group", "path", "web_url", "visibility", "origin"}
	combinedCommonHeader  = []string{"COMMON_BY_PATH", "id_1", "name_1", "group_1", "path", "web_url_1", "visibility_1", "id_2", "name_2", "group_2", "web_url_2", "visibility_2"}
	splitListHeader       = []string{"id", "name", "group", "path", "web_url", "visibility"}
	splitCommonHeader     = []string{"path", "1_id", "1_name", "1_group", "1_path", "1_web_url", "1_visibility", "2_id", "2_name", "2_group", "2_path", "2_web_url", "2_visibility"}
)

type commonEntryDocument struct {
	Path    string         `json:"path"`
	GitLab1 gitlab.Project `json:"gitlab1"`
	GitLab2 gitlab.Project `json:"gitlab2"`
}

type combinedDocument struct {
	List1        []gitlab.Project      `json:"list1"`
	List2        []gitlab.Project      `json:"list2"`
	CommonByPath []commonEntryDocument `json:"common_by_path"`
	Summary      compare.Summary       `json:"summary"`
}

// SplitArtifacts groups the three payloads produced in split mode.
type SplitArtifacts struct {
	Instance1 []byte
	Instance2 []byte
	Common    []byte
}

// BuildCombinedJSON serializes the full comparison result as one JSON
// document: {list1, list2, common_by_path, summary}.
func BuildCombinedJSON(result compare.Result) ([]byte, error) {
	document := combinedDocument{
		List1:        ensureProjects(result.List1),
		List2:        ensureProjects(result.List2),
		CommonByPath: commonEntryDocuments(result.Common),
		Summary:      result.Summary,
	}
	return json.MarshalIndent(document, jsonPrefixConstant, jsonIndentConstant)
}

// BuildCombinedCSV serializes the full comparison result as one CSV stream
// holding LIST rows for both instances followed by COMMON_BY_PATH rows. The
// header strings and column ordering are fixed for downstream consumers.
func BuildCombinedCSV(result compare.Result) ([]byte, error) {
	buffer := &bytes.Buffer{}

	sectionWriter := csv.NewWriter(buffer)
	if writeError := sectionWriter.Write(combinedSectionHeader); writeError != nil {
		return nil, writeError
	}
	for _, project := range result.List1 {
		if writeError := sectionWriter.Write(combinedListRow(project, originInstance1Constant)); writeError != nil {
			return nil, writeError
		}
	}
	for _, project := range result.List2 {
		if writeError := sectionWriter.Write(combinedListRow(project, originInstance2Constant)); writeError != nil {
			return nil, writeError
		}
	}
	sectionWriter.Flush()
	if flushError := sectionWriter.Error(); flushError != nil {
		return nil, flushError
	}

	buffer.WriteString(blankSeparatorRowConstant)

	commonWriter := csv.NewWriter(buffer)
	if writeError := commonWriter.Write(combinedCommonHeader); writeError != nil {
		return nil, writeError
	}
	for _, entry := range result.Common {
		if writeError := commonWriter.Write(combinedCommonRow(entry)); writeError != nil {
			return nil, writeError
		}
	}
	commonWriter.Flush()
	if flushError := commonWriter.Error(); flushError != nil {
		return nil, flushError
	}

	return buffer.Bytes(), nil
}

// BuildSplitJSON produces the three split-mode JSON payloads: the plain
// project lists of both instances and the paired common entries.
func BuildSplitJSON(result compare.Result) (SplitArtifacts, error) {
	instance1Payload, instance1Error := json.MarshalIndent(ensureProjects(result.List1), jsonPrefixConstant, jsonIndentConstant)
	if instance1Error != nil {
		return SplitArtifacts{}, instance1Error
	}
	instance2Payload, instance2Error := json.MarshalIndent(ensureProjects(result.List2), jsonPrefixConstant, jsonIndentConstant)
	if instance2Error != nil {
		return SplitArtifacts{}, instance2Error
	}
	commonPayload, commonError := json.MarshalIndent(commonEntryDocuments(result.Common), jsonPrefixConstant, jsonIndentConstant)
	if commonError != nil {
		return SplitArtifacts{}, commonError
	}
	return SplitArtifacts{Instance1: instance1Payload, Instance2: instance2Payload, Common: commonPayload}, nil
}

// BuildSplitCSV produces the three split-mode CSV payloads. The record kind
// is implicit in the artifact, so no discriminator column is emitted.
func BuildSplitCSV(result compare.Result) (SplitArtifacts, error) {
	instance1Payload, instance1Error := buildProjectListCSV(result.List1)
	if instance1Error != nil {
		return SplitArtifacts{}, instance1Error
	}
	instance2Payload, instance2Error := buildProjectListCSV(result.List2)
	if instance2Error != nil {
		return SplitArtifacts{}, instance2Error
	}
	commonPayload, commonError := buildCommonCSV(result.Common)
	if commonError != nil {
		return SplitArtifacts{}, commonError
	}
	return SplitArtifacts{Instance1: instance1Payload, Instance2: instance2Payload, Common: commonPayload}, nil
}

// Builder implements compare.ReportBuilder over the pure build functions.
type Builder struct{}

// BuildArtifacts assembles every artifact the output options request.
func (Builder) BuildArtifacts(result compare.Result, outputs compare.OutputOptions) ([]compare.Artifact, error) {
	artifacts := make([]compare.Artifact, 0)

	if len(outputs.CombinedJSONPath) > 0 {
		content, buildError := BuildCombinedJSON(result)
		if buildError != nil {
			return nil, fmt.Errorf(combinedJSONBuildTemplateConstant, buildError)
		}
		artifacts = append(artifacts, compare.Artifact{Path: outputs.CombinedJSONPath, Content: content})
	}

	if len(outputs.CombinedCSVPath) > 0 {
		content, buildError := BuildCombinedCSV(result)
		if buildError != nil {
			return nil, fmt.Errorf(combinedCSVBuildTemplateConstant, buildError)
		}
		artifacts = append(artifacts, compare.Artifact{Path: outputs.CombinedCSVPath, Content: content})
	}

	if len(outputs.SplitJSONPrefix) > 0 {
		splitPayloads, buildError := BuildSplitJSON(result)
		if buildError != nil {
			return nil, fmt.Errorf(splitJSONBuildTemplateConstant, buildError)
		}
		artifacts = append(artifacts, splitArtifactSet(outputs.SplitJSONPrefix, jsonExtensionConstant, splitPayloads)...)
	}

	if len(outputs.SplitCSVPrefix) > 0 {
		splitPayloads, buildError := BuildSplitCSV(result)
		if buildError != nil {
			return nil, fmt.Errorf(splitCSVBuildTemplateConstant, buildError)
		}
		artifacts = append(artifacts, splitArtifactSet(outputs.SplitCSVPrefix, csvExtensionConstant, splitPayloads)...)
	}

	return artifacts, nil
}

func splitArtifactSet(prefix string, extension string, payloads SplitArtifacts) []compare.Artifact {
	return []compare.Artifact{
		{Path: fmt.Sprintf(splitInstance1FileTemplate, prefix, extension), Content: payloads.Instance1},
		{Path: fmt.Sprintf(splitInstance2FileTemplate, prefix, extension), Content: payloads.Instance2},
		{Path: fmt.Sprintf(splitCommonFileTemplate, prefix, extension), Content: payloads.Common},
	}
}

func buildProjectListCSV(projects []gitlab.Project) ([]byte, error) {
	buffer := &bytes.Buffer{}
	listWriter := csv.NewWriter(buffer)
	if writeError := listWriter.Write(splitListHeader); writeError != nil {
		return nil, writeError
	}
	for _, project := range projects {
		if writeError := listWriter.Write(projectFields(project)); writeError != nil {
			return nil, writeError
		}
	}
	listWriter.Flush()
	if flushError := listWriter.Error(); flushError != nil {
		return nil, flushError
	}
	return buffer.Bytes(), nil
}

func buildCommonCSV(entries []compare.CommonEntry) ([]byte, error) {
	buffer := &bytes.Buffer{}
	commonWriter := csv.NewWriter(buffer)
	if writeError := commonWriter.Write(splitCommonHeader); writeError != nil {
		return nil, writeError
	}
	for _, entry := range entries {
		row := make([]string, 0, len(splitCommonHeader))
		row = append(row, entry.Path)
		row = append(row, projectFields(entry.Instance1)...)
		row = append(row, projectFields(entry.Instance2)...)
		if writeError := commonWriter.Write(row); writeError != nil {
			return nil, writeError
		}
	}
	commonWriter.Flush()
	if flushError := commonWriter.Error(); flushError != nil {
		return nil, flushError
	}
	return buffer.Bytes(), nil
}

func combinedListRow(project gitlab.Project, origin string) []string {
	row := make([]string, 0, len(combinedSectionHeader))
	row = append(row, sectionDiscriminatorListConstant)
	row = append(row, projectFields(project)...)
	row = append(row, origin)
	return row
}

func combinedCommonRow(entry compare.CommonEntry) []string {
	return []string{
		sectionDiscriminatorCommonValue,
		strconv.FormatInt(entry.Instance1.ID, 10),
		entry.Instance1.Name,
		entry.Instance1.Group,
		entry.Instance1.Path,
		entry.Instance1.WebURL,
		entry.Instance1.Visibility,
		strconv.FormatInt(entry.Instance2.ID, 10),
		entry.Instance2.Name,
		entry.Instance2.Group,
		entry.Instance2.WebURL,
		entry.Instance2.Visibility,
	}
}

func projectFields(project gitlab.Project) []string {
	return []string{
		strconv.FormatInt(project.ID, 10),
		project.Name,
		project.Group,
		project.Path,
		project.WebURL,
		project.Visibility,
	}
}

func commonEntryDocuments(entries []compare.CommonEntry) []commonEntryDocument {
	documents := make([]commonEntryDocument, 0, len(entries))
	for _, entry := range entries {
		documents = append(documents, commonEntryDocument{
			Path:    entry.Path,
			GitLab1: entry.Instance1,
			GitLab2: entry.Instance2,
		})
	}
	return documents
}

func ensureProjects(projects []gitlab.Project) []gitlab.Project {
	if projects == nil {
		return make([]gitlab.Project, 0)
	}
	return projects
}
