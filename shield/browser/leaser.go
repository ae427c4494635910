package browser

import (
	"net"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// LeaserService for a browser
type LeaserService interface {
	Acquire() (string, error) // returns port number
	Return(port string) error
	Cleanup() (string, error)
	Count() (string, error)
}

func randPort() string {
	l, err := net.Listen("tcp", ":0")

	if err != nil {
		log.Warn().Err(err).Msg("unable to get port using default 9022")
		return "9022"
	}
	_, randPort, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	return randPort
}

func randProfile(tmp string) string {
	if err := os.MkdirAll(tmp, 0700); err != nil {
		log.Error().Err(err).Str("dir", tmp).Msg("failed to create profile root")
	}

	profile, err := os.MkdirTemp(tmp, "webshield")
	if err != nil {
		log.Error().Err(err).Msg("failed to create temporary profile directory")
		return "tmp"
	}

	if profile == "" {
		log.Fatal().Msg("profile returned empty which could delete system files on termination")
	}
	return profile
}

// RemoveTmpContents that the browser created
func RemoveTmpContents(tmp string) error {
	if tmp == "" {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(tmp, "webshield*"))
	if err != nil {
		return err
	}
	for _, file := range files {
		err = os.RemoveAll(file)
		if err != nil {
			return err
		}
	}
	return nil
}

// KillOldProcesses left behind by a previous run
func KillOldProcesses() error {
	for _, name := range []string{"google-chrome", "chrome", "chromium-browser"} {
		killer := FindKill(name)
		cmd := exec.Command(killer[0], killer[1:]...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			log.Debug().Msgf("%s %s:%s", name, err.Error(), string(output))
		}
	}
	return nil
}
