package module

import "github.com/pkg/errors"

var (
	// ErrNotLoaded module was never loaded or failed to load
	ErrNotLoaded = errors.New("module not loaded")
	// ErrSymbolNotFound the module does not export the symbol
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrSymbolType the symbol was found but has an unexpected type
	ErrSymbolType = errors.New("symbol has unexpected type")
	// ErrNoModulePath no module path could be resolved
	ErrNoModulePath = errors.New("no module path")
	// ErrModuleTooOld module version is below webshield.MinSupportedVersion
	ErrModuleTooOld = errors.New("module version not supported")
	// ErrUnsupportedPlatform native modules can not be loaded on this platform
	ErrUnsupportedPlatform = errors.New("native modules are not supported on this platform")
)
