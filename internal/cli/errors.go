package cli

import (
	"errors"
	"io/fs"

	"github.com/roach88/worldsmith/internal/deployconf"
	"github.com/roach88/worldsmith/internal/encoder"
	"github.com/roach88/worldsmith/internal/world"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeInvalidArgs   = "E002" // Invalid flag or argument
	ErrCodeSettings      = "E003" // Settings file or profile error
	ErrCodeEnvironment   = "E004" // Missing or invalid mode environment
	ErrCodeNotFound      = "E005" // Path or name not found
	ErrCodeContent       = "E006" // Content tables could not be read
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeDeployConfig  = "E008" // Deploy configuration invalid
	ErrCodeFilter        = "E009" // Generation filter invalid
	ErrCodeCodegen       = "E010" // Artifact rendering failed
	ErrCodeLedger        = "E011" // Deployment ledger error
	ErrCodeDeploy        = "E012" // Deploy script could not be run
	ErrCodeDeployExit    = "E013" // Deploy script exited nonzero
	ErrCodeVerify        = "E014" // Identifier markers do not match
	ErrCodeRowErrors     = "E015" // Too many content row errors
	ErrCodeNotSupported  = "E016" // Action not supported by category
	ErrCodeEncode        = "E017" // Call encoding failed
	ErrCodeBufferInvalid = "E018" // Call buffer document invalid
)

// classify refines fallback for errors with a more specific code.
func classify(err error, fallback string) string {
	var argErr *encoder.ArgError
	var confErr *deployconf.Error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	case errors.Is(err, world.ErrTooManyRowErrors):
		return ErrCodeRowErrors
	case errors.Is(err, world.ErrNotSupported):
		return ErrCodeNotSupported
	case errors.Is(err, encoder.ErrNoSignature), errors.As(err, &argErr):
		return ErrCodeEncode
	case errors.Is(err, deployconf.ErrExclusiveFilter):
		return ErrCodeFilter
	case errors.As(err, &confErr):
		return ErrCodeDeployConfig
	}
	return fallback
}

// exitFor returns the exit code of a classified failure. Row error limits are
// run failures; everything else is a command error.
func exitFor(code string) int {
	switch code {
	case ErrCodeRowErrors, ErrCodeDeployExit, ErrCodeVerify, ErrCodeDeploy:
		return ExitFailure
	}
	return ExitCommandError
}

// fail classifies err, outputs it and returns the matching ExitError.
func fail(f *OutputFormatter, fallback, message string, err error) error {
	code := classify(err, fallback)
	return f.Fail(exitFor(code), code, message, err)
}
