package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestEmptyConfig() {
	config := EmptyConfig()

	suite.Empty(config.Symbol)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
	suite.Empty(config.EngineVersion)
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestTestConfig() {
	startTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	config := TestConfig("AAPL", startTime, endTime)

	suite.Equal("AAPL", config.Symbol)
	suite.Equal(startTime, config.StartTime.Unwrap())
	suite.Equal(endTime, config.EndTime.Unwrap())
	suite.True(config.InWindow(startTime))
	suite.True(config.InWindow(endTime))
	suite.False(config.InWindow(startTime.Add(-time.Second)))
	suite.False(config.InWindow(endTime.Add(time.Second)))
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := &BacktestEngineV1Config{}
	schema, err := config.GenerateSchema()

	suite.NoError(err)
	suite.NotNil(schema)
	suite.Equal("backtest-engine-v1-config", schema.Title)
	suite.Equal("Configuration schema for BacktestEngineV1", schema.Description)
	suite.Equal("http://json-schema.org/draft-07/schema#", schema.Version)
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := &BacktestEngineV1Config{}
	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schemaJSON), &result))
	suite.Equal("backtest-engine-v1-config", result["title"])

	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)

	startTime, ok := properties["start_time"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("string", startTime["type"])
	suite.Equal("date-time", startTime["format"])
	suite.Contains(properties, "engine_version")
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLComplete() {
	yamlData := `
symbol: AAPL
start_time: 2023-01-01T00:00:00Z
end_time: 2023-12-31T00:00:00Z
engine_version: "^0.4"
`

	var config BacktestEngineV1Config
	err := yaml.Unmarshal([]byte(yamlData), &config)
	suite.Require().NoError(err)

	suite.Equal("AAPL", config.Symbol)
	suite.Equal("^0.4", config.EngineVersion)
	suite.Require().True(config.StartTime.IsSome())
	suite.Require().True(config.EndTime.IsSome())
	suite.Equal(time.January, config.StartTime.Unwrap().Month())
	suite.Equal(31, config.EndTime.Unwrap().Day())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLPartial() {
	var config BacktestEngineV1Config
	err := yaml.Unmarshal([]byte("symbol: BTCUSDT\n"), &config)

	suite.NoError(err)
	suite.Equal("BTCUSDT", config.Symbol)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
}

func (suite *ConfigTestSuite) TestParseConfig() {
	tests := []struct {
		name string
		yaml string
		code errors.ErrorCode
	}{
		{"valid", "symbol: AAPL\nengine_version: \"^0.4\"\n", 0},
		{"malformed", "symbol: [\n", errors.ErrCodeBacktestConfigError},
		{"inverted window", "start_time: 2023-02-01T00:00:00Z\nend_time: 2023-01-01T00:00:00Z\n", errors.ErrCodeInvalidConfiguration},
		{"version mismatch", "engine_version: \">= 1.0\"\n", errors.ErrCodeVersionMismatch},
		{"bad constraint", "engine_version: \"not-a-version\"\n", errors.ErrCodeInvalidVersion},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := ParseConfig([]byte(tt.yaml))
			if tt.code == 0 {
				suite.NoError(err)
				return
			}

			suite.True(errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func (suite *ConfigTestSuite) TestMarshalYAMLRoundTrip() {
	startTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	config := TestConfig("AAPL", startTime, startTime.AddDate(0, 1, 0))

	data, err := yaml.Marshal(config)
	suite.Require().NoError(err)

	var decoded BacktestEngineV1Config
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Equal(config.Symbol, decoded.Symbol)
	suite.True(startTime.Equal(decoded.StartTime.Unwrap()))

	data, err = yaml.Marshal(EmptyConfig())
	suite.Require().NoError(err)
	suite.NotContains(string(data), "start_time")
}
