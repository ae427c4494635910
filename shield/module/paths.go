package module

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gitlab.com/webshield/webshield"
)

// DirPaths resolves module names relative to a directory. An empty directory
// means the directory of the running executable.
type DirPaths struct {
	Dir    string
	Name   string
	Legacy string
}

// NewDirPaths from config
func NewDirPaths(cfg *webshield.Config) *DirPaths {
	return &DirPaths{Dir: cfg.ModuleDir, Name: cfg.ModuleName, Legacy: cfg.LegacyName}
}

// ModulePath of the primary module
func (d *DirPaths) ModulePath() (string, error) {
	return d.ModulePathByName(d.Name)
}

// LegacyName of the fallback module
func (d *DirPaths) LegacyName() string {
	return d.Legacy
}

// ModulePathByName resolves name and makes sure it exists
func (d *DirPaths) ModulePathByName(name string) (string, error) {
	if name == "" {
		return "", ErrNoModulePath
	}

	path := name
	if !filepath.IsAbs(path) {
		dir := d.Dir
		if dir == "" {
			exe, err := os.Executable()
			if err != nil {
				return "", errors.Wrap(err, "unable to locate executable directory")
			}
			dir = filepath.Dir(exe)
		}
		path = filepath.Join(dir, name)
	}

	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrapf(err, "module %s", name)
	}
	return path, nil
}
