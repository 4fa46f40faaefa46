package extensions

import (
	"fmt"
	"path/filepath"
	"sort"
)

const (
	globExpansionErrorTemplateConstant     = "unable to expand include pattern %s: %w"
	pathResolutionErrorTemplateConstant    = "unable to resolve extension path %s: %w"
	excludeEvaluationErrorTemplateConstant = "unable to evaluate exclude pattern %s: %w"
)

// DiscoverPackageDirectories expands the include patterns against the
// filesystem, drops matches hit by any exclude pattern, and returns the
// deduplicated union as sorted absolute real paths. A path matched by several
// include patterns appears once.
func DiscoverPackageDirectories(includePatterns []string, excludePatterns []string) ([]string, error) {
	discoveredPaths := map[string]struct{}{}

	for _, includePattern := range includePatterns {
		matchedPaths, globError := filepath.Glob(includePattern)
		if globError != nil {
			return nil, fmt.Errorf(globExpansionErrorTemplateConstant, includePattern, globError)
		}

		for _, matchedPath := range matchedPaths {
			excluded, excludeError := isExcluded(matchedPath, excludePatterns)
			if excludeError != nil {
				return nil, excludeError
			}
			if excluded {
				continue
			}

			resolvedPath, resolutionError := resolveRealPath(matchedPath)
			if resolutionError != nil {
				return nil, resolutionError
			}
			discoveredPaths[resolvedPath] = struct{}{}
		}
	}

	uniquePaths := make([]string, 0, len(discoveredPaths))
	for discoveredPath := range discoveredPaths {
		uniquePaths = append(uniquePaths, discoveredPath)
	}
	sort.Strings(uniquePaths)
	return uniquePaths, nil
}

func isExcluded(candidatePath string, excludePatterns []string) (bool, error) {
	for _, excludePattern := range excludePatterns {
		pathMatched, pathMatchError := filepath.Match(excludePattern, candidatePath)
		if pathMatchError != nil {
			return false, fmt.Errorf(excludeEvaluationErrorTemplateConstant, excludePattern, pathMatchError)
		}
		baseMatched, baseMatchError := filepath.Match(excludePattern, filepath.Base(candidatePath))
		if baseMatchError != nil {
			return false, fmt.Errorf(excludeEvaluationErrorTemplateConstant, excludePattern, baseMatchError)
		}
		if pathMatched || baseMatched {
			return true, nil
		}
	}
	return false, nil
}

func resolveRealPath(candidatePath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(candidatePath)
	if absoluteError != nil {
		return "", fmt.Errorf(pathResolutionErrorTemplateConstant, candidatePath, absoluteError)
	}

	realPath, symlinkError := filepath.EvalSymlinks(absolutePath)
	if symlinkError != nil {
		return "", fmt.Errorf(pathResolutionErrorTemplateConstant, candidatePath, symlinkError)
	}
	return realPath, nil
}
