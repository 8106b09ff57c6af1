package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Settings is the top-level configuration for modelgit.
type Settings struct {
	User     UserSettings   `yaml:"user"`
	Remote   RemoteSettings `yaml:"remote"`
	Branches BranchSettings `yaml:"branches"`
	Merge    MergeSettings  `yaml:"merge"`
	Watch    WatchSettings  `yaml:"watch"`
}

// UserSettings is the identity written into commits.
type UserSettings struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// RemoteSettings describes the shared remote and how to authenticate against it.
type RemoteSettings struct {
	Name         string `yaml:"name"`
	URL          string `yaml:"url"`
	Username     string `yaml:"username"`
	Token        string `yaml:"token"`         // Inline, ${ENV_VAR}, or file path
	PasswordFile string `yaml:"password_file"` // Optional, absent file means no password
	SSHKey       string `yaml:"ssh_key"`
}

// BranchSettings names the trunk branches.
type BranchSettings struct {
	Trunk       string `yaml:"trunk"`
	LegacyTrunk string `yaml:"legacy_trunk"`
}

// MergeSettings tunes the merge engine.
type MergeSettings struct {
	// PreferOurs is the only supported conflict policy for now.
	PreferOurs bool `yaml:"prefer_ours"`
}

// WatchSettings tunes the working copy watcher.
type WatchSettings struct {
	DebounceMillis int `yaml:"debounce_millis"`
}

// ConfigEnvVar names an explicit configuration file, taking precedence over
// the standard locations.
const ConfigEnvVar = "MODELGIT_CONFIG"

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the settings used when no file is found.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

// NewSettings reads and parses a configuration file, expanding environment
// variables and resolving token file paths.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.Remote.URL = expandEnv(settings.Remote.URL)
	settings.Remote.Username = expandEnv(settings.Remote.Username)
	settings.Remote.Token = ResolveToken(settings.Remote.Token)
	settings.applyDefaults()

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}
	return &settings, nil
}

// LoadDefaultSettings loads the first config file found in the standard
// locations, falling back to defaults when there is none.
func LoadDefaultSettings() (*Settings, error) {
	path, err := FindConfigFile()
	if err != nil && os.Getenv(ConfigEnvVar) != "" {
		return nil, err
	}
	if err != nil {
		logger.Debugf("No config file found, using defaults: %v", err)
		return DefaultSettings(), nil
	}
	logger.Debugf("Using config file: %s", path)
	return NewSettings(path)
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	if explicit := os.Getenv(ConfigEnvVar); explicit != "" {
		if _, statErr := os.Stat(explicit); statErr != nil {
			return "", fmt.Errorf("config file from %s: %w", ConfigEnvVar, statErr)
		}
		return explicit, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".modelgit.yaml",
		".modelgit.yml",
		"modelgit.yaml",
		"modelgit.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// Credentials builds the credentials for network operations. The password
// comes from the token, or from the password file when one is configured
// and present. A missing password file is not an error.
func (s *Settings) Credentials() *Credentials {
	creds := &Credentials{
		Username:       s.Remote.Username,
		Password:       s.Remote.Token,
		PrivateKeyFile: s.Remote.SSHKey,
	}
	if creds.Password == "" && s.Remote.PasswordFile != "" {
		data, err := os.ReadFile(s.Remote.PasswordFile)
		switch {
		case err == nil:
			creds.Password = strings.TrimSpace(string(data))
		case errors.Is(err, os.ErrNotExist):
			logger.Debugf("Password file %q not found, continuing without password", s.Remote.PasswordFile)
		default:
			logger.Warnf("Failed to read password file %q: %v", s.Remote.PasswordFile, err)
		}
	}
	return creds
}

// Author returns the commit identity, falling back to a neutral one.
func (s *Settings) Author() Signature {
	return Signature{Name: s.User.Name, Email: s.User.Email}
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := expandEnv(raw)

	// If the resolved value is a path to an existing file, read the token from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

func (s *Settings) applyDefaults() {
	if s.User.Name == "" {
		s.User.Name = "modelgit"
	}
	if s.User.Email == "" {
		s.User.Email = "modelgit@localhost"
	}
	if s.Remote.Name == "" {
		s.Remote.Name = DefaultRemoteName
	}
	if s.Branches.Trunk == "" {
		s.Branches.Trunk = DefaultTrunkName
	}
	if s.Branches.LegacyTrunk == "" {
		s.Branches.LegacyTrunk = LegacyTrunkName
	}
	if s.Watch.DebounceMillis <= 0 {
		s.Watch.DebounceMillis = 250
	}
	s.Merge.PreferOurs = true
}

// validate checks for inconsistent configuration values.
func (s *Settings) validate() error {
	if s.Branches.Trunk == s.Branches.LegacyTrunk {
		return fmt.Errorf("branches.trunk and branches.legacy_trunk must differ (both %q)", s.Branches.Trunk)
	}
	if strings.ContainsAny(s.Remote.Name, "/ ") {
		return fmt.Errorf("remote.name %q must not contain slashes or spaces", s.Remote.Name)
	}
	if s.Remote.SSHKey != "" && s.Remote.Token != "" {
		return errors.New("remote.ssh_key and remote.token are mutually exclusive")
	}
	return nil
}
