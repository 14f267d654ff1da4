package review

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ReviewProfile declares which fields carry asset references, which
// fields a commit ignores, and the facade photo limit. It ships with
// sane defaults and can be overridden by a TOML file.
type ReviewProfile struct {
	Version int                 `toml:"version"`
	Fields  profileFieldsConfig `toml:"fields"`
	Facade  profileFacadeConfig `toml:"facade"`
}

type profileFieldsConfig struct {
	Asset  []string `toml:"asset"`
	Ignore []string `toml:"ignore"`
}

type profileFacadeConfig struct {
	Field     string `toml:"field"`
	MaxPhotos int    `toml:"max_photos"`
}

// DefaultProfile mirrors the restaurant catalog's field conventions.
func DefaultProfile() ReviewProfile {
	return ReviewProfile{
		Version: 1,
		Fields: profileFieldsConfig{
			Asset: []string{"facadePhotoUrls", "menuPhotoUrls", "interiorPhotoUrls"},
		},
		Facade: profileFacadeConfig{
			Field:     "facadePhotoUrls",
			MaxPhotos: 1,
		},
	}
}

// LoadProfile reads a review profile from path. An empty path yields the
// built-in defaults.
func LoadProfile(path string) (ReviewProfile, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return DefaultProfile(), nil
	}

	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return ReviewProfile{}, err
	}

	var profile ReviewProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return ReviewProfile{}, err
	}
	if err := validateProfile(profile); err != nil {
		return ReviewProfile{}, err
	}
	return profile, nil
}

func validateProfile(profile ReviewProfile) error {
	if profile.Version != 1 {
		return fmt.Errorf("unsupported review profile version %d", profile.Version)
	}
	if profile.Facade.Field != "" {
		if profile.Facade.MaxPhotos < 1 {
			return errors.New("facade.max_photos must be at least 1")
		}
		found := false
		for _, field := range profile.Fields.Asset {
			if field == profile.Facade.Field {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("facade field %q is not declared as an asset field", profile.Facade.Field)
		}
	}
	return nil
}

func (p ReviewProfile) IsAssetField(field string) bool {
	for _, name := range p.Fields.Asset {
		if name == field {
			return true
		}
	}
	return false
}

// IgnoreSet returns the commit ignore set, fields whose pending state
// never blocks reconciliation.
func (p ReviewProfile) IgnoreSet() map[string]struct{} {
	if len(p.Fields.Ignore) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(p.Fields.Ignore))
	for _, name := range p.Fields.Ignore {
		out[name] = struct{}{}
	}
	return out
}
