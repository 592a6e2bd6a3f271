package backup

import (
	"context"
	"fmt"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

var ErrUnknownTheme = fmt.Errorf("unknown theme")

// Theme returns the stored theme preference, defaulting to light.
func (s *Service) Theme(ctx context.Context) (string, error) {
	var theme string
	found, err := s.gw.Get(ctx, themeKey, &theme)
	if err != nil {
		return "", fmt.Errorf("read theme: %w", err)
	}
	if !found || (theme != ThemeLight && theme != ThemeDark) {
		return ThemeLight, nil
	}
	return theme, nil
}

// SetTheme persists the theme preference.
func (s *Service) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, theme)
	}
	if err := s.gw.Put(ctx, themeKey, theme); err != nil {
		return fmt.Errorf("store theme: %w", err)
	}
	return nil
}

// ToggleTheme flips the preference and returns the new value.
func (s *Service) ToggleTheme(ctx context.Context) (string, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
