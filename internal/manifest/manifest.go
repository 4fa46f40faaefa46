package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

const (
	// FileName is the canonical manifest file name inside a package directory.
	FileName = "package.json"

	versionFieldNameConstant     = "version"
	resolutionsFieldNameConstant = "resolutions"

	manifestReadErrorTemplateConstant   = "unable to read manifest %s: %w"
	manifestParseErrorTemplateConstant  = "unable to parse manifest %s: %w"
	manifestEncodeErrorTemplateConstant = "unable to encode manifest %s: %w"
	manifestWriteErrorTemplateConstant  = "unable to write manifest %s: %w"
	missingVersionErrorTemplateConstant = "manifest %s declares no version"
	manifestIndentationConstant         = "  "
	manifestTrailingNewlineConstant     = "\n"
	manifestFilePermissionsConstant     = 0o644
	emptyJSONEncodingPrefixConstant     = ""
)

// Document is a decoded package manifest retaining every field.
type Document struct {
	filePath string
	fields   map[string]any
}

// Load reads and decodes the manifest stored at the provided path.
func Load(manifestPath string) (*Document, error) {
	manifestBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return nil, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}

	var decodedFields map[string]any
	if unmarshalError := json.Unmarshal(jsonc.ToJSON(manifestBytes), &decodedFields); unmarshalError != nil {
		return nil, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, unmarshalError)
	}

	return &Document{filePath: manifestPath, fields: decodedFields}, nil
}

// LoadFromDirectory reads the package.json stored in the provided directory.
func LoadFromDirectory(directoryPath string) (*Document, error) {
	return Load(filepath.Join(directoryPath, FileName))
}

// Path returns the manifest's file path.
func (document *Document) Path() string {
	return document.filePath
}

// Version returns the manifest's declared semantic version string.
func (document *Document) Version() (string, error) {
	versionValue, versionPresent := document.fields[versionFieldNameConstant].(string)
	if !versionPresent || len(versionValue) == 0 {
		return "", fmt.Errorf(missingVersionErrorTemplateConstant, document.filePath)
	}
	return versionValue, nil
}

// Resolutions returns the manifest's dependency-resolution overrides, or nil when absent.
func (document *Document) Resolutions() map[string]any {
	resolutionsValue, resolutionsPresent := document.fields[resolutionsFieldNameConstant].(map[string]any)
	if !resolutionsPresent {
		return nil
	}
	return resolutionsValue
}

// MergeResolutions unions the provided overrides into the manifest's resolutions mapping.
//
// Overrides win on key collision. A nil or empty override map leaves the
// manifest untouched and reports no modification.
func (document *Document) MergeResolutions(overrides map[string]any) bool {
	if len(overrides) == 0 {
		return false
	}

	mergedResolutions := map[string]any{}
	for existingKey, existingValue := range document.Resolutions() {
		mergedResolutions[existingKey] = existingValue
	}
	for overrideKey, overrideValue := range overrides {
		mergedResolutions[overrideKey] = overrideValue
	}

	document.fields[resolutionsFieldNameConstant] = mergedResolutions
	return true
}

// Write re-serializes the manifest to its original path with two-space indentation.
func (document *Document) Write() error {
	encodedManifest, encodeError := json.MarshalIndent(document.fields, emptyJSONEncodingPrefixConstant, manifestIndentationConstant)
	if encodeError != nil {
		return fmt.Errorf(manifestEncodeErrorTemplateConstant, document.filePath, encodeError)
	}

	manifestContent := append(encodedManifest, []byte(manifestTrailingNewlineConstant)...)
	if writeError := os.WriteFile(document.filePath, manifestContent, manifestFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(manifestWriteErrorTemplateConstant, document.filePath, writeError)
	}

	return nil
}
