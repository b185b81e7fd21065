package strategy

import (
	"encoding/json"
	"slices"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type factory struct {
	defaults func(symbol string) any
	build    func(config any) (Strategy, error)
}

var registry = map[string]factory{
	MeanRevertingName: {
		defaults: func(symbol string) any {
			config := DefaultMeanRevertingConfig(symbol)

			return &config
		},
		build: func(config any) (Strategy, error) {
			return NewMeanReverting(*config.(*MeanRevertingConfig))
		},
	},
	ConsecutiveCandlesName: {
		defaults: func(symbol string) any {
			return &ConsecutiveCandlesConfig{Symbol: symbol, Quantity: 100}
		},
		build: func(config any) (Strategy, error) {
			return NewConsecutiveCandles(*config.(*ConsecutiveCandlesConfig))
		},
	},
}

// Names lists the registered strategies.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// NewStrategy builds the named strategy for symbol. config is an optional yaml
// document overriding the strategy's defaults.
func NewStrategy(name string, symbol string, config []byte) (Strategy, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy %q, available: %v", name, Names())
	}

	cfg := f.defaults(symbol)
	if len(config) > 0 {
		if err := yaml.Unmarshal(config, cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to parse %s config", name)
		}
	}

	return f.build(cfg)
}

// ConfigSchema returns the JSON schema of the named strategy's config.
func ConfigSchema(name string) (string, error) {
	f, ok := registry[name]
	if !ok {
		return "", errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy %q", name)
	}

	return ToJSONSchema(f.defaults(""))
}

// ToJSONSchema converts a struct to a JSON schema
func ToJSONSchema[T any](t T) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(t)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
