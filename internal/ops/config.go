// Package ops loads the execution engine's JSON configuration and the
// optional YAML override file watched for hot reload.
package ops

import (
	"encoding/json"
	"os"

	"github.com/yanun0323/errors"
	"gopkg.in/yaml.v3"

	"github.com/mostrub/nautilus-trader/internal/schema"
)

// FileConfig mirrors the on-disk JSON config layout.
type FileConfig struct {
	TraderID  string             `json:"traderId"`
	AccountID string             `json:"accountId"`
	OMS       string             `json:"oms"`
	Registry  RegistryConfig     `json:"registry"`
	Features  FeatureFlagsConfig `json:"features"`
}

// RegistryConfig defines venue and symbol mappings.
type RegistryConfig struct {
	Venues  []VenueConfig  `json:"venues"`
	Symbols []SymbolConfig `json:"symbols"`
}

// VenueConfig describes a venue entry.
type VenueConfig struct {
	Name string `json:"name"`
}

// SymbolConfig describes a symbol entry.
type SymbolConfig struct {
	Name  string           `json:"name"`
	Venue string           `json:"venue"`
	Scale schema.ScaleSpec `json:"scale"`
}

// FeatureFlagsConfig captures optional runtime flags.
type FeatureFlagsConfig struct {
	PauseOrderFlow *bool `json:"pauseOrderFlow"`
}

// FeatureFlags are resolved runtime flags.
type FeatureFlags struct {
	PauseOrderFlow bool
}

// Loaded is the resolved configuration ready to build an engine from.
type Loaded struct {
	TraderID  string
	AccountID string
	OMS       string
	Registry  *schema.Registry
	Features  FeatureFlags
}

// Load reads a JSON config file and builds the registry.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return resolve(cfg)
}

// Overrides is the subset of config that may be hot-reloaded from a
// sidecar YAML file without restarting the engine.
type Overrides struct {
	PauseOrderFlow *bool `yaml:"pauseOrderFlow"`
}

// LoadOverrides reads a YAML override file. A missing file is not an error.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Overrides{}, nil
		}
		return Overrides{}, err
	}
	var out Overrides
	if err := yaml.Unmarshal(data, &out); err != nil {
		return Overrides{}, errors.Wrap(err, "unmarshal overrides yaml")
	}
	return out, nil
}

// Apply merges a hot-reloaded override onto an already-resolved config.
func (l Loaded) Apply(o Overrides) Loaded {
	if o.PauseOrderFlow != nil {
		l.Features.PauseOrderFlow = *o.PauseOrderFlow
	}
	return l
}

func resolve(cfg FileConfig) (Loaded, error) {
	if cfg.TraderID == "" {
		return Loaded{}, errors.New("traderId is empty")
	}
	if cfg.AccountID == "" {
		return Loaded{}, errors.New("accountId is empty")
	}
	registry, err := buildRegistry(cfg.Registry)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{
		TraderID:  cfg.TraderID,
		AccountID: cfg.AccountID,
		OMS:       cfg.OMS,
		Registry:  registry,
		Features:  resolveFeatures(cfg.Features),
	}, nil
}

func buildRegistry(cfg RegistryConfig) (*schema.Registry, error) {
	reg := schema.NewRegistry()
	for _, venue := range cfg.Venues {
		if _, err := reg.AddVenue(venue.Name); err != nil {
			return nil, err
		}
	}
	for _, sym := range cfg.Symbols {
		venueID, ok := reg.VenueIDByName(sym.Venue)
		if !ok {
			return nil, errors.Wrapf(schema.ErrVenueNotFound, "venue: %s", sym.Venue)
		}
		if err := validateScale(sym.Scale); err != nil {
			return nil, errors.Wrapf(err, "invalid scale for %s", sym.Name)
		}
		if _, err := reg.AddSymbol(sym.Name, venueID, sym.Scale); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func validateScale(scale schema.ScaleSpec) error {
	if scale.PriceScale < 0 || scale.QuantityScale < 0 || scale.NotionalScale < 0 || scale.FeeScale < 0 {
		return errors.New("scale must be >= 0")
	}
	return nil
}

func resolveFeatures(cfg FeatureFlagsConfig) FeatureFlags {
	flags := FeatureFlags{PauseOrderFlow: false}
	if cfg.PauseOrderFlow != nil {
		flags.PauseOrderFlow = *cfg.PauseOrderFlow
	}
	return flags
}
