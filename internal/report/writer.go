package report

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	artifactDirectoryPermissions         = 0o755
	artifactFilePermissions              = 0o644
	currentDirectoryConstant             = "."
	directoryCreationTemplateConstant    = "unable to create report directory %s: %w"
	artifactWriteFailureTemplateConstant = "unable to write report artifact %s: %w"
)

// FilesystemArtifactWriter persists artifacts that were fully built in
// memory, creating parent directories as needed. Each artifact is written in
// one call so a failure never leaves a partially assembled report behind.
type FilesystemArtifactWriter struct{}

// WriteArtifact stores one artifact at the requested path.
func (FilesystemArtifactWriter) WriteArtifact(artifactPath string, content []byte) error {
	parentDirectory := filepath.Dir(artifactPath)
	if len(parentDirectory) > 0 && parentDirectory != currentDirectoryConstant {
		if directoryError := os.MkdirAll(parentDirectory, artifactDirectoryPermissions); directoryError != nil {
			return fmt.Errorf(directoryCreationTemplateConstant, parentDirectory, directoryError)
		}
	}
	if writeError := os.WriteFile(artifactPath, content, artifactFilePermissions); writeError != nil {
		return fmt.Errorf(artifactWriteFailureTemplateConstant, artifactPath, writeError)
	}
	return nil
}
