package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// removedSearchRadiusKey is rejected so the search radius cannot drift from
// sensor.radius.
const removedSearchRadiusKey = "behavior.search_radius"

// ErrSearchRadiusKey rejects files that still set behavior.search_radius.
var ErrSearchRadiusKey = errors.New("config: behavior.search_radius is not supported, the search radius is sensor.radius")

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Behavior BehaviorConfig `mapstructure:"behavior"`
	Sensor   SensorConfig   `mapstructure:"sensor"`
	World    WorldConfig    `mapstructure:"world"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

// BehaviorConfig holds the hide/chase tunables. Durations are in seconds.
type BehaviorConfig struct {
	HideSensitivity    float64 `mapstructure:"hide_sensitivity"` // lower is a better hiding spot
	MinPlayerDistance  float64 `mapstructure:"min_player_distance"`
	MinObstacleHeight  float64 `mapstructure:"min_obstacle_height"`
	TickInterval       float64 `mapstructure:"tick_interval"`
	MaxConcealDuration float64 `mapstructure:"max_conceal_duration"`
	MaxPursuitDuration float64 `mapstructure:"max_pursuit_duration"`
	ObstacleLayers     uint32  `mapstructure:"obstacle_layers"`
}

// SensorConfig drives the sight sensor. Radius is also the radius the agent
// searches for cover in.
type SensorConfig struct {
	Radius  float64 `mapstructure:"radius"`
	CheckMs int     `mapstructure:"check_ms"`
}

type WorldConfig struct {
	Width       int     `mapstructure:"width"`
	Depth       int     `mapstructure:"depth"`
	CellSize    float64 `mapstructure:"cell_size"`
	AgentSpeed  float64 `mapstructure:"agent_speed"`
	TargetSpeed float64 `mapstructure:"target_speed"`
	StepMs      int     `mapstructure:"step_ms"`
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Tick returns TickInterval as a Duration.
func (b BehaviorConfig) Tick() time.Duration { return seconds(b.TickInterval) }

// ConcealBudget returns MaxConcealDuration as a Duration.
func (b BehaviorConfig) ConcealBudget() time.Duration { return seconds(b.MaxConcealDuration) }

// PursuitBudget returns MaxPursuitDuration as a Duration.
func (b BehaviorConfig) PursuitBudget() time.Duration { return seconds(b.MaxPursuitDuration) }

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Validate checks every tunable against its allowed range and reports all
// offending fields at once.
func (b BehaviorConfig) Validate() error {
	var errs []error
	check := func(name string, v, lo, hi float64) {
		if v < lo || v > hi {
			errs = append(errs, fmt.Errorf("behavior.%s = %g, want [%g, %g]", name, v, lo, hi))
		}
	}
	check("hide_sensitivity", b.HideSensitivity, -1, 1)
	check("min_player_distance", b.MinPlayerDistance, 1, 10)
	check("min_obstacle_height", b.MinObstacleHeight, 0, 5)
	check("tick_interval", b.TickInterval, 0.01, 1)
	check("max_conceal_duration", b.MaxConcealDuration, 1, 300)
	check("max_pursuit_duration", b.MaxPursuitDuration, 1, 300)
	return errors.Join(errs...)
}

// Validate checks the behavior tunables and the sensor radius together.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Behavior.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Sensor.Radius <= 0 {
		errs = append(errs, fmt.Errorf("sensor.radius = %g, must be positive", c.Sensor.Radius))
	}
	return errors.Join(errs...)
}

// SearchRadius is the concealment search radius. It is the sensor radius so
// the agent never looks for cover outside the range it can see in.
func (c *Config) SearchRadius() float64 { return c.Sensor.Radius }

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if v.IsSet(removedSearchRadiusKey) {
		return nil, ErrSearchRadiusKey
	}
	return decode(v)
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		// defaults are static and always valid
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("behavior.hide_sensitivity", 0.0)
	v.SetDefault("behavior.min_player_distance", 5.0)
	v.SetDefault("behavior.min_obstacle_height", 1.25)
	v.SetDefault("behavior.tick_interval", 0.25)
	v.SetDefault("behavior.max_conceal_duration", 10.0)
	v.SetDefault("behavior.max_pursuit_duration", 10.0)
	v.SetDefault("behavior.obstacle_layers", 1)
	v.SetDefault("sensor.radius", 10.0)
	v.SetDefault("sensor.check_ms", 100)
	v.SetDefault("world.width", 40)
	v.SetDefault("world.depth", 40)
	v.SetDefault("world.cell_size", 1.0)
	v.SetDefault("world.agent_speed", 3.5)
	v.SetDefault("world.target_speed", 2.0)
	v.SetDefault("world.step_ms", 50)
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
