package application

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/appack/internal/manifest"
)

const (
	// LockFileName is the dependency lockfile copied alongside the skeleton.
	LockFileName = "yarn.lock"

	outputResetErrorTemplateConstant   = "unable to reset output directory %s: %w"
	skeletonCopyErrorTemplateConstant  = "unable to copy application skeleton %s: %w"
	lockFileCopyErrorTemplateConstant  = "unable to copy lock file %s: %w"
	manifestMergeErrorTemplateConstant = "unable to merge resolutions into %s: %w"
	materializedMessageConstant        = "Application skeleton materialized"
	resolutionsMergedMessageConstant   = "Dependency resolutions merged"
	sourceFieldNameConstant            = "source"
	destinationFieldNameConstant       = "destination"
	directoryPermissionsConstant       = 0o755
)

// Materializer copies an application skeleton into a fresh output directory
// and aligns its manifest with the root manifest's dependency resolutions.
type Materializer struct {
	logger *zap.Logger
}

// NewMaterializer assembles a Materializer.
func NewMaterializer(logger *zap.Logger) *Materializer {
	return &Materializer{logger: logger}
}

// Materialize resets the output directory, copies the application skeleton
// into it, copies the working directory's lock file alongside, and merges the
// root manifest's resolutions into the copied manifest. Root resolutions win
// on key collision; a root manifest without resolutions leaves the copied
// manifest untouched.
func (materializer *Materializer) Materialize(applicationDirectory string, outputDirectory string, workingDirectory string) error {
	if resetError := os.RemoveAll(outputDirectory); resetError != nil {
		return fmt.Errorf(outputResetErrorTemplateConstant, outputDirectory, resetError)
	}

	if copyError := copyDirectory(applicationDirectory, outputDirectory); copyError != nil {
		return fmt.Errorf(skeletonCopyErrorTemplateConstant, applicationDirectory, copyError)
	}

	lockFileSource := filepath.Join(workingDirectory, LockFileName)
	if copyError := copyFile(lockFileSource, filepath.Join(outputDirectory, LockFileName)); copyError != nil {
		return fmt.Errorf(lockFileCopyErrorTemplateConstant, lockFileSource, copyError)
	}

	materializer.logger.Debug(materializedMessageConstant,
		zap.String(sourceFieldNameConstant, applicationDirectory),
		zap.String(destinationFieldNameConstant, outputDirectory),
	)

	return materializer.mergeRootResolutions(workingDirectory, outputDirectory)
}

func (materializer *Materializer) mergeRootResolutions(workingDirectory string, outputDirectory string) error {
	rootManifest, rootManifestError := manifest.LoadFromDirectory(workingDirectory)
	if rootManifestError != nil {
		return fmt.Errorf(manifestMergeErrorTemplateConstant, outputDirectory, rootManifestError)
	}

	outputManifest, outputManifestError := manifest.LoadFromDirectory(outputDirectory)
	if outputManifestError != nil {
		return fmt.Errorf(manifestMergeErrorTemplateConstant, outputDirectory, outputManifestError)
	}

	if !outputManifest.MergeResolutions(rootManifest.Resolutions()) {
		return nil
	}

	if writeError := outputManifest.Write(); writeError != nil {
		return fmt.Errorf(manifestMergeErrorTemplateConstant, outputDirectory, writeError)
	}

	materializer.logger.Debug(resolutionsMergedMessageConstant, zap.String(destinationFieldNameConstant, outputManifest.Path()))
	return nil
}

func copyDirectory(sourceDirectory string, destinationDirectory string) error {
	return filepath.WalkDir(sourceDirectory, func(currentPath string, directoryEntry os.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}

		relativePath, relativeError := filepath.Rel(sourceDirectory, currentPath)
		if relativeError != nil {
			return relativeError
		}
		destinationPath := filepath.Join(destinationDirectory, relativePath)

		if directoryEntry.IsDir() {
			return os.MkdirAll(destinationPath, directoryPermissionsConstant)
		}

		if directoryEntry.Type()&os.ModeSymlink != 0 {
			linkTarget, linkError := os.Readlink(currentPath)
			if linkError != nil {
				return linkError
			}
			return os.Symlink(linkTarget, destinationPath)
		}

		return copyFile(currentPath, destinationPath)
	})
}

func copyFile(sourcePath string, destinationPath string) error {
	sourceInfo, statError := os.Stat(sourcePath)
	if statError != nil {
		return statError
	}

	sourceFile, openError := os.Open(sourcePath)
	if openError != nil {
		return openError
	}
	defer sourceFile.Close()

	destinationFile, createError := os.OpenFile(destinationPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceInfo.Mode().Perm())
	if createError != nil {
		return createError
	}

	if _, copyError := io.Copy(destinationFile, sourceFile); copyError != nil {
		_ = destinationFile.Close()
		return copyError
	}
	return destinationFile.Close()
}
