package profile

import (
	"errors"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultProfile = "default"
)

var (
	ErrProfileExists    = errors.New("profile already exists")
	ErrProfileNameEmpty = errors.New("invalid profile name (empty)")
	ErrProfileNotFound  = errors.New("profile not found")
)

// Manager reads and creates the profiles of a configuration file. Every
// top level key of the file is a profile.
type Manager interface {
	GetProfiles() []string
	GetProfile(name string) (map[string]any, error)
	CreateProfile(name string, defaults map[string]any) error
}

type profileManager struct {
	config *viper.Viper
}

// Empty type to represent the _type_ Manager. Genesis is to support a key in a Context
type Key struct{}

// Global instance of the ProfileManagerKey type
var ProfileManagerKey = Key{}

// GetProfiles returns the profile names in lexical order.
func (v *profileManager) GetProfiles() []string {
	keyMap := make(map[string]bool)
	for _, key := range v.config.AllKeys() {
		keyMap[strings.Split(key, ".")[0]] = true
	}

	names := make([]string, 0, len(keyMap))
	for key := range keyMap {
		names = append(names, key)
	}
	slices.Sort(names)
	return names
}

// CreateProfile adds an empty profile seeded with defaults. The caller
// persists the configuration.
func (v *profileManager) CreateProfile(profileName string, defaults map[string]any) error {
	profileName = strings.TrimSpace(profileName)
	if profileName == "" {
		return ErrProfileNameEmpty
	}
	if v.config.IsSet(profileName) {
		return ErrProfileExists
	}

	values := make(map[string]any, len(defaults))
	for k, val := range defaults {
		values[k] = val
	}
	v.config.Set(profileName, values)
	return nil
}

func (v *profileManager) GetProfile(name string) (map[string]any, error) {
	if !v.config.IsSet(name) {
		return nil, ErrProfileNotFound
	}
	return v.config.GetStringMap(name), nil
}

func NewManager(config *viper.Viper) Manager {
	return &profileManager{
		config: config,
	}
}
