package gitee

import (
	"fmt"
	"strings"
)

// Keys under which settings are persisted in the key/value store.
const (
	KeyToken    = "giteeToken"
	KeyOwner    = "giteeOwner"
	KeyRepo     = "giteeRepo"
	KeyBranch   = "giteeBranch"
	KeyFilePath = "giteeFilePath"
)

const (
	DefaultBranch   = "master"
	DefaultFilePath = "hidden-bookmarks.json"
)

// Settings locates the remote bookmark file.
type Settings struct {
	Token    string
	Owner    string
	Repo     string
	Branch   string
	FilePath string
}

// Keys lists every persisted settings key.
func Keys() []string {
	return []string{KeyToken, KeyOwner, KeyRepo, KeyBranch, KeyFilePath}
}

// SettingsFromValues builds Settings from key/value store entries.
func SettingsFromValues(values map[string]string) Settings {
	return Settings{
		Token:    values[KeyToken],
		Owner:    values[KeyOwner],
		Repo:     values[KeyRepo],
		Branch:   values[KeyBranch],
		FilePath: values[KeyFilePath],
	}
}

// Values returns the settings as key/value store entries.
func (s Settings) Values() map[string]string {
	return map[string]string{
		KeyToken:    s.Token,
		KeyOwner:    s.Owner,
		KeyRepo:     s.Repo,
		KeyBranch:   s.Branch,
		KeyFilePath: s.FilePath,
	}
}

// Overlay returns s with every non-empty field of other applied on top.
func (s Settings) Overlay(other Settings) Settings {
	pick := func(base, over string) string {
		if strings.TrimSpace(over) != "" {
			return strings.TrimSpace(over)
		}
		return base
	}
	return Settings{
		Token:    pick(s.Token, other.Token),
		Owner:    pick(s.Owner, other.Owner),
		Repo:     pick(s.Repo, other.Repo),
		Branch:   pick(s.Branch, other.Branch),
		FilePath: pick(s.FilePath, other.FilePath),
	}
}

// WithDefaults fills in the branch and file path when unset.
func (s Settings) WithDefaults() Settings {
	if s.Branch == "" {
		s.Branch = DefaultBranch
	}
	if s.FilePath == "" {
		s.FilePath = DefaultFilePath
	}
	return s
}

// Validate reports ErrIncompleteSettings when token, owner or repo is missing.
func (s Settings) Validate() error {
	var missing []string
	if strings.TrimSpace(s.Token) == "" {
		missing = append(missing, "token")
	}
	if strings.TrimSpace(s.Owner) == "" {
		missing = append(missing, "owner")
	}
	if strings.TrimSpace(s.Repo) == "" {
		missing = append(missing, "repo")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteSettings, strings.Join(missing, ", "))
	}
	return nil
}

// Redacted returns a copy safe for display, with the token masked.
func (s Settings) Redacted() Settings {
	if len(s.Token) > 4 {
		s.Token = strings.Repeat("*", len(s.Token)-4) + s.Token[len(s.Token)-4:]
	} else if s.Token != "" {
		s.Token = "****"
	}
	return s
}
