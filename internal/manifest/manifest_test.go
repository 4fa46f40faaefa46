package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/appack/internal/manifest"
)

const (
	testManifestWithResolutionsConstant = `{
  "name": "browser-app",
  "version": "1.4.0",
  "resolutions": {
    "x": "0.9",
    "y": "2.0"
  }
}
`
	testManifestWithCommentsConstant = `{
  // packaged application manifest
  "name": "browser-app",
  "version": "2.0.1"
}
`
	testManifestWithoutVersionConstant = `{"name": "versionless"}`
)

func writeManifestFixture(testInstance *testing.T, manifestContent string) string {
	testInstance.Helper()

	manifestPath := filepath.Join(testInstance.TempDir(), manifest.FileName)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(manifestContent), 0o644))
	return manifestPath
}

func TestLoadReadsVersion(testInstance *testing.T) {
	testCases := []struct {
		name            string
		manifestContent string
		expectedVersion string
	}{
		{name: "PlainManifest", manifestContent: testManifestWithResolutionsConstant, expectedVersion: "1.4.0"},
		{name: "CommentedManifest", manifestContent: testManifestWithCommentsConstant, expectedVersion: "2.0.1"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			document, loadError := manifest.Load(writeManifestFixture(testInstance, testCase.manifestContent))
			require.NoError(testInstance, loadError)

			versionValue, versionError := document.Version()
			require.NoError(testInstance, versionError)
			require.Equal(testInstance, testCase.expectedVersion, versionValue)
		})
	}
}

func TestVersionReportsMissingField(testInstance *testing.T) {
	document, loadError := manifest.Load(writeManifestFixture(testInstance, testManifestWithoutVersionConstant))
	require.NoError(testInstance, loadError)

	_, versionError := document.Version()
	require.Error(testInstance, versionError)
}

func TestMergeResolutionsOverridesCollidingKeys(testInstance *testing.T) {
	manifestPath := writeManifestFixture(testInstance, testManifestWithResolutionsConstant)
	document, loadError := manifest.Load(manifestPath)
	require.NoError(testInstance, loadError)

	modified := document.MergeResolutions(map[string]any{"x": "1.0"})
	require.True(testInstance, modified)
	require.NoError(testInstance, document.Write())

	rewrittenBytes, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)

	var rewrittenManifest map[string]any
	require.NoError(testInstance, json.Unmarshal(rewrittenBytes, &rewrittenManifest))
	require.Equal(testInstance, map[string]any{"x": "1.0", "y": "2.0"}, rewrittenManifest["resolutions"])
}

func TestMergeResolutionsWithoutOverridesLeavesManifestUntouched(testInstance *testing.T) {
	manifestPath := writeManifestFixture(testInstance, testManifestWithResolutionsConstant)
	originalBytes, readError := os.ReadFile(manifestPath)
	require.NoError(testInstance, readError)

	document, loadError := manifest.Load(manifestPath)
	require.NoError(testInstance, loadError)

	modified := document.MergeResolutions(nil)
	require.False(testInstance, modified)

	currentBytes, rereadError := os.ReadFile(manifestPath)
	require.NoError(testInstance, rereadError)
	require.Equal(testInstance, originalBytes, currentBytes)
}

func TestLoadFromDirectoryResolvesManifestPath(testInstance *testing.T) {
	packageDirectory := testInstance.TempDir()
	manifestPath := filepath.Join(packageDirectory, manifest.FileName)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(testManifestWithCommentsConstant), 0o644))

	document, loadError := manifest.LoadFromDirectory(packageDirectory)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, manifestPath, document.Path())
}
