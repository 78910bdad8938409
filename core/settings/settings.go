// Package settings supplies the default core.Settings implementation,
// backed by viper so embedders get a working configuration layer without
// having to write one, while the engine itself only ever sees the narrow
// core.Settings interface.
package settings

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/sitepipe/pipeline/core"
)

// ViperSettings adapts a *viper.Viper to core.Settings.
type ViperSettings struct {
	v *viper.Viper
}

// New creates a ViperSettings with CleanOutputPath defaulted to false.
func New() *ViperSettings {
	v := viper.New()
	v.SetDefault(core.SettingCleanOutputPath, false)
	return &ViperSettings{v: v}
}

// NewFromViper wraps an existing *viper.Viper instance, useful when an
// embedder already loads its own configuration file and wants the engine
// to read settings from the same source.
func NewFromViper(v *viper.Viper) *ViperSettings {
	return &ViperSettings{v: v}
}

// GetBool implements core.Settings. Lookups are case-insensitive to match
// viper's own key-folding behavior.
func (s *ViperSettings) GetBool(key string) bool {
	return s.v.GetBool(strings.ToLower(key))
}

// Set stores a value, mainly useful for tests that want to flip
// CleanOutputPath on or off.
func (s *ViperSettings) Set(key string, value any) {
	s.v.Set(key, value)
}

var _ core.Settings = (*ViperSettings)(nil)
