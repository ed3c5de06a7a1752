package blockpart

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stochkit/blockpart/types"
)

// Layout selects how block data is arranged for the engine.
//
// The zero value is LayoutStochastic.
type Layout int

const (
	// LayoutStochastic is the two-stage stochastic layout: all sub-blocks
	// share one shape, agreed across the process group before transmission,
	// and blocks are complete as transmitted.
	LayoutStochastic Layout = iota

	// LayoutStructured is the generic block-angular layout: each block
	// declares its own shape, master column data is prefixed onto every
	// block, and coupling is attached in an explicit finalize step.
	LayoutStructured
)

// layoutNames maps canonical string forms to layouts.
var layoutNames = map[string]Layout{
	"stochastic": LayoutStochastic,
	"structured": LayoutStructured,
}

// ParseLayout converts a string form to a Layout.
//
// Accepted forms (case-insensitive): "stochastic", "structured".
//
// Returns:
//   - Layout: The parsed layout
//   - error: ErrInvalidConfig (wrapped) for unrecognized strings
func ParseLayout(s string) (Layout, error) {
	if l, ok := layoutNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}

	return LayoutStochastic, fmt.Errorf("%w: unknown layout %q", types.ErrInvalidConfig, s)
}

// Valid reports whether l is a supported layout.
func (l Layout) Valid() bool {
	return l == LayoutStochastic || l == LayoutStructured
}

// String returns the canonical string form of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutStochastic:
		return "stochastic"
	case LayoutStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// MarshalYAML implements yaml.Marshaler using the canonical string form.
func (l Layout) MarshalYAML() (any, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: unknown layout %d", types.ErrInvalidConfig, int(l))
	}

	return l.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler accepting the string forms
// recognized by ParseLayout.
func (l *Layout) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("%w: layout: %s", types.ErrInvalidConfig, err.Error())
	}

	parsed, err := ParseLayout(s)
	if err != nil {
		return err
	}
	*l = parsed

	return nil
}

// Config holds the loader configuration.
//
// The zero value is usable: stochastic layout, no coordinator reservation,
// no parameter file, and the default load timeout applied by SetDefaults.
type Config struct {
	// Layout selects the data layout transmitted to the engine.
	Layout Layout `yaml:"layout"`

	// ReserveCoordinator excludes rank 0 from block ownership in groups of
	// more than one worker, leaving it free to coordinate the method. It has
	// no effect on single-process sessions.
	ReserveCoordinator bool `yaml:"reserveCoordinator"`

	// ParamFile is an optional solver parameter file passed to the engine
	// before loading. The content is interpreted by the engine alone.
	ParamFile string `yaml:"paramFile"`

	// OperationTimeout bounds the whole Load sequence, including the
	// collectives inside it. Zero applies the default; negative values are
	// rejected.
	OperationTimeout time.Duration `yaml:"operationTimeout"`
}

// DefaultConfig returns a Config with production defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Layout:             LayoutStochastic,
		ReserveCoordinator: false,
		OperationTimeout:   5 * time.Minute,
	}
}

// SetDefaults fills in missing configuration values with production
// defaults.
//
// Layout and ReserveCoordinator keep their zero values (stochastic layout,
// no reservation) because those are meaningful settings.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
}

// Validate checks configuration constraints.
//
// Returns:
//   - error: An error wrapping ErrInvalidConfig for the first violated rule,
//     nil if valid
func (cfg *Config) Validate() error {
	// Rule 1: the layout must be a known value.
	if !cfg.Layout.Valid() {
		return fmt.Errorf("%w: unknown layout %d", types.ErrInvalidConfig, int(cfg.Layout))
	}

	// Rule 2: OperationTimeout sanity.
	if cfg.OperationTimeout < 0 {
		return fmt.Errorf("%w: OperationTimeout must not be negative, got %v",
			types.ErrInvalidConfig, cfg.OperationTimeout)
	}

	return nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with short timeouts for tests
//
// Example:
//
//	cfg := blockpart.TestConfig()
//	cfg.ReserveCoordinator = true
//	ldr, err := blockpart.New(&cfg, engine, root)
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.OperationTimeout = 10 * time.Second

	return cfg
}
