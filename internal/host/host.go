// Package host talks to the browser's own bookmark store.
//
// Both implementations expose the layout returned by chrome.bookmarks.getTree:
// a single synthetic root (RootID) whose children are the bookmarks bar,
// the "other bookmarks" folder and the mobile folder. The root and those
// three folders are permanent and cannot be removed or created.
package host

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Permanent node ids.
const (
	RootID   = "0"
	BarID    = "1"
	OtherID  = "2"
	MobileID = "3"
)

var (
	ErrPermanentNode = errors.New("host: permanent node")
	ErrNotFolder     = errors.New("host: parent is not a folder")
)

func isPermanent(id string) bool {
	switch id {
	case RootID, BarID, OtherID, MobileID:
		return true
	}
	return false
}

// DefaultBookmarksPath returns the Chrome "Default" profile bookmarks file
// for the current OS.
func DefaultBookmarksPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default", "Bookmarks"), nil
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(local, "Google", "Chrome", "User Data", "Default", "Bookmarks"), nil
	default:
		return filepath.Join(home, ".config", "google-chrome", "Default", "Bookmarks"), nil
	}
}
