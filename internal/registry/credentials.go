package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// CredentialFileName is the npm credential file the pipeline writes next to
	// the root manifest.
	CredentialFileName = ".npmrc"

	credentialTokenConstant               = "appack"
	credentialLineTemplateConstant        = "%s/:_authToken=\"%s\"\n"
	credentialTokenSuffixTemplateConstant = "/:_authToken=\"%s\""
	endpointSchemePrefixConstant          = "http:"
	credentialFilePermissionConstant      = 0o600

	credentialReadErrorTemplateConstant    = "unable to read credential file %s: %w"
	credentialWriteErrorTemplateConstant   = "unable to write credential file %s: %w"
	credentialRestoreErrorTemplateConstant = "unable to restore credential file %s: %w"
	credentialRemoveErrorTemplateConstant  = "unable to remove credential file %s: %w"

	credentialWrittenMessageConstant  = "Credential file written"
	credentialRestoredMessageConstant = "Credential file restored"
	credentialRemovedMessageConstant  = "Credential file removed"
	credentialPathFieldNameConstant   = "path"
)

// CredentialProvisioner writes a temporary registry auth token file and
// captures how to undo the write.
type CredentialProvisioner struct {
	logger        *zap.Logger
	directoryPath string
}

// NewCredentialProvisioner creates a provisioner managing the credential file
// inside the provided directory.
func NewCredentialProvisioner(logger *zap.Logger, directoryPath string) *CredentialProvisioner {
	return &CredentialProvisioner{logger: logger, directoryPath: directoryPath}
}

// CredentialHandle undoes a credential provisioning. The restore behavior is
// fixed at provisioning time: files that existed beforehand get their original
// bytes back, files that did not are deleted.
type CredentialHandle struct {
	logger          *zap.Logger
	filePath        string
	originalContent []byte
	existedBefore   bool
}

// Restore reverts the credential file to its pre-provisioning state.
func (handle *CredentialHandle) Restore() error {
	if handle.existedBefore {
		if writeError := os.WriteFile(handle.filePath, handle.originalContent, credentialFilePermissionConstant); writeError != nil {
			return fmt.Errorf(credentialRestoreErrorTemplateConstant, handle.filePath, writeError)
		}
		handle.logger.Debug(credentialRestoredMessageConstant, zap.String(credentialPathFieldNameConstant, handle.filePath))
		return nil
	}

	if removeError := os.Remove(handle.filePath); removeError != nil && !os.IsNotExist(removeError) {
		return fmt.Errorf(credentialRemoveErrorTemplateConstant, handle.filePath, removeError)
	}
	handle.logger.Debug(credentialRemovedMessageConstant, zap.String(credentialPathFieldNameConstant, handle.filePath))
	return nil
}

// Provision overwrites the credential file with an auth token line scoped to
// the provided registry endpoint, retaining any pre-existing content for the
// returned handle's Restore.
func (provisioner *CredentialProvisioner) Provision(registryEndpoint string) (*CredentialHandle, error) {
	credentialFilePath := filepath.Join(provisioner.directoryPath, CredentialFileName)

	credentialHandle := &CredentialHandle{logger: provisioner.logger, filePath: credentialFilePath}
	originalContent, readError := os.ReadFile(credentialFilePath)
	switch {
	case readError == nil:
		credentialHandle.originalContent = originalContent
		credentialHandle.existedBefore = true
	case os.IsNotExist(readError):
	default:
		return nil, fmt.Errorf(credentialReadErrorTemplateConstant, credentialFilePath, readError)
	}

	credentialLine := BuildCredentialLine(registryEndpoint)
	if writeError := os.WriteFile(credentialFilePath, []byte(credentialLine), credentialFilePermissionConstant); writeError != nil {
		return nil, fmt.Errorf(credentialWriteErrorTemplateConstant, credentialFilePath, writeError)
	}

	provisioner.logger.Debug(credentialWrittenMessageConstant, zap.String(credentialPathFieldNameConstant, credentialFilePath))
	return credentialHandle, nil
}

// BuildCredentialLine formats the npm auth token line for a registry endpoint.
// The URL scheme is stripped so the line matches npm's registry-scoped token
// syntax.
func BuildCredentialLine(registryEndpoint string) string {
	schemelessEndpoint := strings.TrimPrefix(registryEndpoint, endpointSchemePrefixConstant)
	return fmt.Sprintf(credentialLineTemplateConstant, schemelessEndpoint, credentialTokenConstant)
}

// IsManagedCredentialContent reports whether credential file content carries
// the auth token this tool writes. Used to avoid deleting user-owned files.
func IsManagedCredentialContent(content []byte) bool {
	return strings.Contains(string(content), fmt.Sprintf(credentialTokenSuffixTemplateConstant, credentialTokenConstant))
}
