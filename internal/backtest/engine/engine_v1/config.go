package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-replay/internal/version"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type BacktestEngineV1Config struct {
	// Symbol restricts unrealized P&L recording to one instrument. Empty records every instrument.
	Symbol string `yaml:"symbol" json:"symbol,omitempty" jsonschema:"title=Symbol,description=Instrument whose unrealized P&L is recorded; empty records all" validate:"omitempty,max=32"`
	// Snapshots before StartTime are replayed into the market state but not forwarded to the strategy.
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	// The run stops at the first snapshot after EndTime.
	EndTime optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	// EngineVersion is a semver constraint the running engine must satisfy.
	EngineVersion string `yaml:"engine_version" json:"engine_version,omitempty" jsonschema:"title=Engine Version,description=Semver constraint on the engine version (e.g. ^0.4)"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type Config struct {
		Symbol        string     `yaml:"symbol"`
		StartTime     *time.Time `yaml:"start_time"`
		EndTime       *time.Time `yaml:"end_time"`
		EngineVersion string     `yaml:"engine_version"`
	}

	var config Config
	if err := value.Decode(&config); err != nil {
		return err
	}

	c.Symbol = config.Symbol
	c.EngineVersion = config.EngineVersion
	c.StartTime = optional.None[time.Time]()
	c.EndTime = optional.None[time.Time]()

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// MarshalYAML writes unset times as absent keys.
func (c BacktestEngineV1Config) MarshalYAML() (any, error) {
	type Config struct {
		Symbol        string     `yaml:"symbol"`
		StartTime     *time.Time `yaml:"start_time,omitempty"`
		EndTime       *time.Time `yaml:"end_time,omitempty"`
		EngineVersion string     `yaml:"engine_version,omitempty"`
	}

	config := Config{
		Symbol:        c.Symbol,
		StartTime:     nil,
		EndTime:       nil,
		EngineVersion: c.EngineVersion,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		config.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		config.EndTime = &end
	}

	return config, nil
}

// ParseConfig decodes a yaml config and validates it.
func ParseConfig(data []byte) (BacktestEngineV1Config, error) {
	config := EmptyConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	return config, config.Validate()
}

// Validate checks field constraints, the time window and the engine version gate.
func (c BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "end_time %s is before start_time %s",
			c.EndTime.Unwrap().Format(time.RFC3339), c.StartTime.Unwrap().Format(time.RFC3339))
	}

	return version.CheckConstraint(version.GetVersion(), c.EngineVersion)
}

// InWindow reports whether ts falls inside the configured time window.
func (c BacktestEngineV1Config) InWindow(ts time.Time) bool {
	if c.StartTime.IsSome() && ts.Before(c.StartTime.Unwrap()) {
		return false
	}

	if c.EndTime.IsSome() && ts.After(c.EndTime.Unwrap()) {
		return false
	}

	return true
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

func TestConfig(symbol string, startTime time.Time, endTime time.Time) BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Symbol:        symbol,
		StartTime:     optional.Some(startTime),
		EndTime:       optional.Some(endTime),
		EngineVersion: "",
	}
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Symbol:        "",
		StartTime:     optional.None[time.Time](),
		EndTime:       optional.None[time.Time](),
		EngineVersion: "",
	}
}
