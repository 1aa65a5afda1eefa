package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyCloser indicates a missing block terminator token
	ErrEmptyCloser = errors.New("empty parser closer")

	// ErrInvalidCloser indicates a terminator token containing whitespace
	ErrInvalidCloser = errors.New("invalid parser closer")

	// ErrInvalidDebounce indicates a negative debounce interval
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidGlob indicates an include or ignore pattern that does not compile
	ErrInvalidGlob = errors.New("invalid glob pattern")

	// ErrEmptyScriptFile indicates a blank entry in scripts.files
	ErrEmptyScriptFile = errors.New("empty script file entry")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateScripts(&cfg.Scripts); err != nil {
		errs = append(errs, err)
	}
	if err := validateParser(&cfg.Parser); err != nil {
		errs = append(errs, err)
	}
	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateScripts(cfg *ScriptsConfig) error {
	var errs []error

	for i, f := range cfg.Files {
		if strings.TrimSpace(f) == "" {
			errs = append(errs, fmt.Errorf("%w: scripts.files[%d]", ErrEmptyScriptFile, i))
		}
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidGlob, pattern, err))
		}
	}

	return errors.Join(errs...)
}

func validateParser(cfg *ParserConfig) error {
	if cfg.Closer == "" {
		return ErrEmptyCloser
	}
	if strings.ContainsAny(cfg.Closer, " \t\r\n") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidCloser, cfg.Closer)
	}
	return nil
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.DebounceMs < 0 {
		return fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidDebounce, cfg.DebounceMs)
	}
	return nil
}
