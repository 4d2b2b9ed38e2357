// Package auxiliary reads and writes the metadata auxiliary services publish
// to task containers through environment variables.
package auxiliary

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// EnvPrefix precedes the service name in the environment variable name.
const EnvPrefix = "NM_AUX_SERVICE_"

// EnvName returns the environment variable carrying serviceName's metadata.
func EnvName(serviceName string) string {
	return EnvPrefix + serviceName
}

// ServiceDataFromEnv decodes serviceName's metadata from env. It returns nil
// without error when the service published nothing.
func ServiceDataFromEnv(serviceName string, env map[string]string) ([]byte, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("service name is required")
	}
	encoded, ok := env[EnvName(serviceName)]
	if !ok {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode metadata of service %s: %w", serviceName, err)
	}
	return data, nil
}

// SetServiceDataIntoEnv encodes data under serviceName into env.
func SetServiceDataIntoEnv(serviceName string, data []byte, env map[string]string) {
	env[EnvName(serviceName)] = base64.StdEncoding.EncodeToString(data)
}

// ProcessEnv returns the auxiliary service entries of the current process environment.
func ProcessEnv() map[string]string {
	ret := map[string]string{}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(name, EnvPrefix) {
			ret[name] = value
		}
	}
	return ret
}
