package profiles

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/conveydesk/convey-cli/internal/credentials"
)

const (
	ProfilesFile = "profiles.yaml"

	DefaultProfileName = "default"
)

// Profile is one saved ConveyDesk identity. A conveyancer acting for
// several firms keeps one profile per account and switches with
// `convey profile use`.
type Profile struct {
	Name      string                `yaml:"name"`
	Email     string                `yaml:"email,omitempty"`
	Role      string                `yaml:"role,omitempty"`
	Tokens    *credentials.TokenSet `yaml:"tokens,omitempty"`
	APIKey    string                `yaml:"api_key,omitempty"`
	AuthType  string                `yaml:"auth_type,omitempty"`
	CreatedAt string                `yaml:"created_at,omitempty"`
	UpdatedAt string                `yaml:"updated_at,omitempty"`
}

type profilesConfig struct {
	Version       string     `yaml:"version"`
	ActiveProfile string     `yaml:"active_profile"`
	Profiles      []*Profile `yaml:"profiles"`
}

// Manager loads, mutates and persists the profiles file under
// ~/.convey/profiles.yaml.
type Manager struct {
	configPath string
	log        *zerolog.Logger
	config     *profilesConfig
}

func New(logger *zerolog.Logger) (*Manager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}

	m := &Manager{
		configPath: filepath.Join(home, credentials.ConfigDir, ProfilesFile),
		log:        logger,
	}

	if err := m.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		m.config = &profilesConfig{
			Version:       "1.0",
			ActiveProfile: "",
			Profiles:      []*Profile{},
		}
		if err := m.migrateFromCredentialsFile(); err != nil {
			m.log.Debug().Err(err).Msg("no existing credentials to migrate")
		}
	}

	return m, nil
}

// migrateFromCredentialsFile seeds a "default" profile from the
// single-account credentials file written by older releases of
// `convey login`.
func (m *Manager) migrateFromCredentialsFile() error {
	path, err := credentials.Path()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var tokens credentials.TokenSet
	if err := yaml.Unmarshal(data, &tokens); err != nil {
		return err
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("credentials file holds no access token")
	}

	m.config.Profiles = append(m.config.Profiles, &Profile{
		Name:     DefaultProfileName,
		Tokens:   &tokens,
		AuthType: credentials.AuthTypeBearer,
	})
	m.config.ActiveProfile = DefaultProfileName

	if err := m.save(); err != nil {
		return fmt.Errorf("failed to save migrated profiles: %w", err)
	}

	m.log.Info().Msg("migrated stored credentials into the default profile")
	return nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	config := &profilesConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return err
	}

	m.config = config
	return nil
}

func (m *Manager) save() error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}

	tmp := m.configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, m.configPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// SaveProfile inserts or replaces the profile with the same name. The
// first profile saved becomes the active one.
func (m *Manager) SaveProfile(profile *Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	profile.UpdatedAt = now

	for i, p := range m.config.Profiles {
		if p.Name == profile.Name {
			if profile.CreatedAt == "" {
				profile.CreatedAt = p.CreatedAt
			}
			m.config.Profiles[i] = profile
			return m.save()
		}
	}

	if profile.CreatedAt == "" {
		profile.CreatedAt = now
	}
	m.config.Profiles = append(m.config.Profiles, profile)

	if m.config.ActiveProfile == "" {
		m.config.ActiveProfile = profile.Name
	}

	return m.save()
}

func (m *Manager) GetProfile(name string) *Profile {
	for _, p := range m.config.Profiles {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (m *Manager) GetActiveProfile() *Profile {
	if m.config.ActiveProfile == "" {
		return nil
	}
	return m.GetProfile(m.config.ActiveProfile)
}

func (m *Manager) GetActiveProfileName() string {
	return m.config.ActiveProfile
}

// SetActiveProfile switches the active profile and writes its token set
// to the credentials file so subsequent commands authenticate as it.
func (m *Manager) SetActiveProfile(name string) error {
	profile := m.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile '%s' not found", name)
	}

	m.config.ActiveProfile = name
	if err := m.save(); err != nil {
		return err
	}

	if profile.Tokens != nil {
		if err := credentials.Save(profile.Tokens); err != nil {
			return fmt.Errorf("failed to activate credentials for profile '%s': %w", name, err)
		}
	}
	return nil
}

func (m *Manager) ListProfiles() []*Profile {
	return m.config.Profiles
}

// DeleteProfile removes a profile. Deleting the active profile promotes
// the first remaining one, or clears the stored credentials when none
// are left.
func (m *Manager) DeleteProfile(name string) error {
	for i, p := range m.config.Profiles {
		if p.Name != name {
			continue
		}
		m.config.Profiles = append(m.config.Profiles[:i], m.config.Profiles[i+1:]...)

		if m.config.ActiveProfile == name {
			m.config.ActiveProfile = ""
			if len(m.config.Profiles) > 0 {
				m.config.ActiveProfile = m.config.Profiles[0].Name
			}
			if err := credentials.Remove(); err != nil {
				m.log.Warn().Err(err).Msg("failed to remove stored credentials")
			}
		}

		return m.save()
	}

	return fmt.Errorf("profile '%s' not found", name)
}

// RenameProfile renames an existing profile, keeping it active if it
// was the active one.
func (m *Manager) RenameProfile(oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("new profile name cannot be empty")
	}
	if m.GetProfile(newName) != nil {
		return fmt.Errorf("profile '%s' already exists", newName)
	}

	profile := m.GetProfile(oldName)
	if profile == nil {
		return fmt.Errorf("profile '%s' not found", oldName)
	}

	profile.Name = newName
	if m.config.ActiveProfile == oldName {
		m.config.ActiveProfile = newName
	}

	return m.save()
}
