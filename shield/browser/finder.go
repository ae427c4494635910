package browser

import (
	"os/exec"
	"runtime"
)

var linuxChromes = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// FindChrome on the FS, returns the executable and the root for temporary profiles
func FindChrome() (string, string) {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe", "C:\\Temp\\webshield\\"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", "/tmp/webshield/"
	case "linux":
		for _, name := range linuxChromes {
			if path, err := exec.LookPath(name); err == nil {
				return path, "/tmp/webshield/"
			}
		}
		return "/usr/bin/chromium-browser", "/tmp/webshield/"
	}
	return "", "tmp"
}

// FindKill returns the command that kills every process named browser
func FindKill(browser string) []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"taskkill", "/IM", browser + ".exe"}
	case "darwin", "linux":
		return []string{"killall", browser}
	}
	return []string{""}
}
