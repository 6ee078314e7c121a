package google

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Environment variables overriding the default credential file locations.
const (
	EnvClientSecretFile = "GOOGLE_CLIENT_SECRET_FILE"
	EnvTokenFile        = "GOOGLE_TOKEN_FILE"
)

// Default file names inside the config directory.
const (
	clientSecretFileName = "credentials.json"
	tokenFileName        = "token.json"
)

// ClientSecretPath returns the path of the operator-supplied OAuth client
// secret file (the "installed app" JSON downloaded from the Google Cloud
// console).
func ClientSecretPath() string {
	if p := os.Getenv(EnvClientSecretFile); p != "" {
		return p
	}
	return filepath.Join(configDir(), clientSecretFileName)
}

// TokenPath returns the path of the persisted token bundle. The file is
// created on first authorization and rewritten on every refresh.
func TokenPath() string {
	if p := os.Getenv(EnvTokenFile); p != "" {
		return p
	}
	return filepath.Join(configDir(), tokenFileName)
}

// LoadConfig reads the client-secret file and builds the OAuth2 config with
// the default Calendar scopes. The redirect URL is set per-flow by the
// consent listener, not here.
func LoadConfig(clientSecretFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(clientSecretFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("client secret file not found at %s: download the OAuth client JSON from the Google Cloud console and place it there, or set %s", clientSecretFile, EnvClientSecretFile)
		}
		return nil, fmt.Errorf("failed to read client secret file: %w", err)
	}

	conf, err := google.ConfigFromJSON(b, DefaultScopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file: %w", err)
	}
	return conf, nil
}

func configDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "calmcp")
	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, "calmcp")
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "calmcp")
	}
	return filepath.Join(homeDir(), ".config", "calmcp")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
