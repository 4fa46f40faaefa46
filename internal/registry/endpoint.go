package registry

import "fmt"

const (
	endpointTemplateConstant    = "http://localhost:%d"
	dialAddressTemplateConstant = "localhost:%d"
)

// Endpoint returns the HTTP URL of a registry listening on the provided port.
func Endpoint(portNumber int) string {
	return fmt.Sprintf(endpointTemplateConstant, portNumber)
}

// DialAddress returns the TCP address used to probe registry readiness.
func DialAddress(portNumber int) string {
	return fmt.Sprintf(dialAddressTemplateConstant, portNumber)
}
