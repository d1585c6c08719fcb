package settings

import "github.com/FACorreiaa/rotinaai-settings/internal/types"

// ThemeSource reports the theme chosen through the theme channel, usually a
// cookie written by the UI theme provider.
type ThemeSource interface {
	Theme() (types.Theme, bool)
}

// ThemeSourceFunc adapts a function to ThemeSource.
type ThemeSourceFunc func() (types.Theme, bool)

func (f ThemeSourceFunc) Theme() (types.Theme, bool) {
	return f()
}

// FixedTheme is a ThemeSource that always reports t.
func FixedTheme(t types.Theme) ThemeSource {
	return ThemeSourceFunc(func() (types.Theme, bool) { return t, true })
}

// Ownership names the channel that persists the theme preference.
type Ownership string

const (
	OwnedLocally    Ownership = "local"
	OwnedExternally Ownership = "external"
)

// ThemeOwner decides where appearance.theme comes from and whether it is
// written by the settings adapters. The only implementations are the ones
// returned by LocalTheme and ExternalTheme.
type ThemeOwner interface {
	Ownership() Ownership
	resolveTheme(stored *types.StoredAppearance) types.Theme
}

// LocalTheme treats theme like any other stored preference.
func LocalTheme() ThemeOwner {
	return localTheme{}
}

// ExternalTheme resolves theme from src and keeps it out of storage. A nil
// src, or one without a valid value, yields the default theme.
func ExternalTheme(src ThemeSource) ThemeOwner {
	return externalTheme{source: src}
}

// OwnerFor builds the ThemeOwner for the configured ownership.
func OwnerFor(o Ownership, src ThemeSource) ThemeOwner {
	if o == OwnedLocally {
		return LocalTheme()
	}
	return ExternalTheme(src)
}

type localTheme struct{}

func (localTheme) Ownership() Ownership { return OwnedLocally }

func (localTheme) resolveTheme(stored *types.StoredAppearance) types.Theme {
	if stored != nil && stored.Theme != nil && stored.Theme.Valid() {
		return *stored.Theme
	}
	return DefaultSettings().Appearance.Theme
}

type externalTheme struct {
	source ThemeSource
}

func (externalTheme) Ownership() Ownership { return OwnedExternally }

func (e externalTheme) resolveTheme(*types.StoredAppearance) types.Theme {
	if e.source != nil {
		if t, ok := e.source.Theme(); ok && t.Valid() {
			return t
		}
	}
	return DefaultSettings().Appearance.Theme
}

func persistsTheme(owner ThemeOwner) bool {
	return owner != nil && owner.Ownership() == OwnedLocally
}
