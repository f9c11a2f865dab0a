package locator

import (
	"os"
	"path/filepath"
	"runtime"
)

// BrowserRoot is the user data directory of one installed browser.
type BrowserRoot struct {
	Browser string
	Dir     string
}

// DefaultRoots returns the browser roots of the current user and platform.
func DefaultRoots() []BrowserRoot {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return BrowserRoots(runtime.GOOS, home, os.Getenv)
}

// BrowserRoots returns the user data directories Chromium-family browsers
// use on goos.
func BrowserRoots(goos, home string, getenv func(string) string) []BrowserRoot {
	switch goos {
	case "windows":
		local := getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		roaming := getenv("APPDATA")
		if roaming == "" {
			roaming = filepath.Join(home, "AppData", "Roaming")
		}
		return []BrowserRoot{
			{"chrome", filepath.Join(local, "Google", "Chrome", "User Data")},
			{"chromium", filepath.Join(local, "Chromium", "User Data")},
			{"brave", filepath.Join(local, "BraveSoftware", "Brave-Browser", "User Data")},
			{"edge", filepath.Join(local, "Microsoft", "Edge", "User Data")},
			{"opera", filepath.Join(roaming, "Opera Software", "Opera Stable")},
			{"vivaldi", filepath.Join(local, "Vivaldi", "User Data")},
		}

	case "darwin":
		support := filepath.Join(home, "Library", "Application Support")
		return []BrowserRoot{
			{"chrome", filepath.Join(support, "Google", "Chrome")},
			{"chromium", filepath.Join(support, "Chromium")},
			{"brave", filepath.Join(support, "BraveSoftware", "Brave-Browser")},
			{"edge", filepath.Join(support, "Microsoft Edge")},
			{"opera", filepath.Join(support, "com.operasoftware.Opera")},
			{"vivaldi", filepath.Join(support, "Vivaldi")},
		}

	default:
		cfgDir := getenv("XDG_CONFIG_HOME")
		if cfgDir == "" {
			cfgDir = filepath.Join(home, ".config")
		}
		return []BrowserRoot{
			{"chrome", filepath.Join(cfgDir, "google-chrome")},
			{"chromium", filepath.Join(cfgDir, "chromium")},
			{"brave", filepath.Join(cfgDir, "BraveSoftware", "Brave-Browser")},
			{"edge", filepath.Join(cfgDir, "microsoft-edge")},
			{"opera", filepath.Join(cfgDir, "opera")},
			{"vivaldi", filepath.Join(cfgDir, "vivaldi")},
		}
	}
}

// profileDirs returns the profile directories under a browser root. Opera
// keeps its single profile in the root itself.
func profileDirs(root string) []string {
	var dirs []string
	if isDir(filepath.Join(root, extensionSettings)) {
		dirs = append(dirs, root)
	}

	for _, pattern := range []string{"Default", "Profile *", "Guest Profile"} {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if isDir(m) {
				dirs = append(dirs, m)
			}
		}
	}
	return dirs
}

func isDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}
