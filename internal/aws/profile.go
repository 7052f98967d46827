package aws

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	pkgtypes "github.com/bedrocksmith/bsmith/pkg/types"
)

var (
	credentialsSectionRe = regexp.MustCompile(`^\[([^\]]+)\]$`)
	configSectionRe      = regexp.MustCompile(`^\[profile\s+([^\]]+)\]$`)
	regionRe             = regexp.MustCompile(`^\s*region\s*=\s*(.+)$`)
)

// SharedConfigFiles returns the credentials and config file paths, honoring
// AWS_SHARED_CREDENTIALS_FILE and AWS_CONFIG_FILE
func SharedConfigFiles() (credentials, config string) {
	home, _ := os.UserHomeDir()
	credentials = os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if credentials == "" {
		credentials = filepath.Join(home, ".aws", "credentials")
	}
	config = os.Getenv("AWS_CONFIG_FILE")
	if config == "" {
		config = filepath.Join(home, ".aws", "config")
	}
	return credentials, config
}

// ListProfiles reads profiles from the shared credentials and config files.
// Missing files are skipped
func ListProfiles(credentialsPath, configPath string) []pkgtypes.AWSProfile {
	profileMap := make(map[string]*pkgtypes.AWSProfile)

	credProfiles, _ := parseSharedFile(credentialsPath, "credentials", false)
	for i := range credProfiles {
		profileMap[credProfiles[i].Name] = &credProfiles[i]
	}

	configProfiles, _ := parseSharedFile(configPath, "config", true)
	for i := range configProfiles {
		p := &configProfiles[i]
		if existing, ok := profileMap[p.Name]; ok {
			if existing.Region == "" {
				existing.Region = p.Region
			}
			continue
		}
		profileMap[p.Name] = p
	}

	profiles := make([]pkgtypes.AWSProfile, 0, len(profileMap))
	for _, p := range profileMap {
		profiles = append(profiles, *p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		// "default" first, then alphabetical
		if profiles[i].Name == "default" {
			return true
		}
		if profiles[j].Name == "default" {
			return false
		}
		return profiles[i].Name < profiles[j].Name
	})

	return profiles
}

// HasProfile reports whether name is among profiles
func HasProfile(profiles []pkgtypes.AWSProfile, name string) bool {
	for _, p := range profiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

// parseSharedFile parses an AWS INI-style file. In the config file sections
// are [default] or [profile name]; in the credentials file they are [name]
func parseSharedFile(path, source string, isConfigFile bool) ([]pkgtypes.AWSProfile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var profiles []pkgtypes.AWSProfile
	var current *pkgtypes.AWSProfile

	startSection := func(name string) {
		if current != nil {
			profiles = append(profiles, *current)
		}
		current = &pkgtypes.AWSProfile{Name: strings.TrimSpace(name), Source: source}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if isConfigFile {
			if line == "[default]" {
				startSection("default")
				continue
			}
			if m := configSectionRe.FindStringSubmatch(line); len(m) == 2 {
				startSection(m[1])
				continue
			}
			if strings.HasPrefix(line, "[") {
				// sso-session and services sections are not profiles
				if current != nil {
					profiles = append(profiles, *current)
				}
				current = nil
				continue
			}
		} else if m := credentialsSectionRe.FindStringSubmatch(line); len(m) == 2 {
			startSection(m[1])
			continue
		}

		if current != nil {
			if m := regionRe.FindStringSubmatch(line); len(m) == 2 {
				current.Region = strings.TrimSpace(m[1])
			}
		}
	}

	if current != nil {
		profiles = append(profiles, *current)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}
