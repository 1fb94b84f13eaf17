package orrery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

const (
	// ConfigEnv names the directory holding the default scenario.
	ConfigEnv = "ORRERY_CONFIG"
	// DateTimeFormat is the layout of dates in scenarios.
	DateTimeFormat  = "2006-01-02 15:04:05"
	defaultScenario = "orrery"
)

// StreamConfig configures the frame streaming driver.
type StreamConfig struct {
	Address string
	Rate    float64 // ticks per second
	Buffer  int     // frames queued per client
}

// ExportConfig configures trajectory exports.
type ExportConfig struct {
	Epoch time.Time     // epoch of tick zero
	Frame time.Duration // nominal duration of one tick
}

// Scenario is a system definition read from a TOML file.
type Scenario struct {
	Names  []string
	Bodies []InitialConditions
	Policy StepPolicy
	Stream StreamConfig
	Export ExportConfig
}

// System builds the orbit system of this scenario.
func (s *Scenario) System(logger kitlog.Logger) (*OrbitSystem, error) {
	return NewOrbitSystem(s.Bodies, s.Policy, logger)
}

// LoadScenario reads the scenario at the provided path. An empty path loads
// orrery.toml from the directory named by the ORRERY_CONFIG environment variable.
//
// Bodies are listed, in draw order, in `system.bodies`, and each one is
// defined in its own `[body.<name>]` table.
func LoadScenario(path string) (*Scenario, error) {
	v := viper.New()
	if path == "" {
		confPath := os.Getenv(ConfigEnv)
		if confPath == "" {
			return nil, fmt.Errorf("no scenario provided and environment variable `%s` is missing or empty", ConfigEnv)
		}
		path = filepath.Join(confPath, defaultScenario+".toml")
	}
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("toml")
	}
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readScenario(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("system.policy", "adaptive")
	v.SetDefault("system.step", DefaultStep)
	v.SetDefault("system.tolerance", DefaultTolerance)
	v.SetDefault("system.shrink", DefaultShrink)
	v.SetDefault("system.near", DefaultStep/10)
	v.SetDefault("system.far", DefaultStep)
	v.SetDefault("system.threshold", 0.05)
	v.SetDefault("stream.address", ":8080")
	v.SetDefault("stream.rate", 60.0)
	v.SetDefault("stream.buffer", 4)
	v.SetDefault("export.frame", "1h")
}

func readScenario(v *viper.Viper) (*Scenario, error) {
	names, bodies, err := readAllBodies(v)
	if err != nil {
		return nil, err
	}
	policy, err := readPolicy(v)
	if err != nil {
		return nil, err
	}
	epoch, err := confReadJDEorTime(v, "export.epoch")
	if err != nil {
		return nil, err
	}
	sc := &Scenario{
		Names:  names,
		Bodies: bodies,
		Policy: policy,
		Stream: StreamConfig{
			Address: v.GetString("stream.address"),
			Rate:    v.GetFloat64("stream.rate"),
			Buffer:  v.GetInt("stream.buffer"),
		},
		Export: ExportConfig{Epoch: epoch, Frame: v.GetDuration("export.frame")},
	}
	if sc.Stream.Rate <= 0 {
		return nil, errors.New("stream.rate must be positive")
	}
	if sc.Stream.Buffer < 1 {
		return nil, errors.New("stream.buffer must be at least one")
	}
	if sc.Export.Frame <= 0 {
		return nil, errors.New("export.frame must be positive")
	}
	return sc, nil
}

func readAllBodies(v *viper.Viper) ([]string, []InitialConditions, error) {
	names := v.GetStringSlice("system.bodies")
	if len(names) == 0 {
		return nil, nil, errors.New("system.bodies is empty")
	}
	bodies := make([]InitialConditions, len(names))
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		name = strings.ToLower(name)
		if seen[name] {
			return nil, nil, fmt.Errorf("body `%s` listed twice", name)
		}
		seen[name] = true
		key := fmt.Sprintf("body.%s", name)
		if !v.IsSet(key + ".a") {
			return nil, nil, fmt.Errorf("`%s.a` (semi major axis) is missing", key)
		}
		bodies[i] = InitialConditions{
			X:             v.GetFloat64(key + ".x"),
			Y:             v.GetFloat64(key + ".y"),
			SemiMajorAxis: v.GetFloat64(key + ".a"),
			Radius:        v.GetFloat64(key + ".radius"),
		}
	}
	return names, bodies, nil
}

func readPolicy(v *viper.Viper) (StepPolicy, error) {
	var policy StepPolicy
	switch p := strings.ToLower(v.GetString("system.policy")); p {
	case "adaptive":
		policy = AdaptiveStep{
			Initial:   v.GetFloat64("system.step"),
			Tolerance: v.GetFloat64("system.tolerance"),
			Shrink:    v.GetFloat64("system.shrink"),
		}
	case "tiered":
		policy = TieredStep{
			Near:      v.GetFloat64("system.near"),
			Far:       v.GetFloat64("system.far"),
			Threshold: v.GetFloat64("system.threshold"),
		}
	default:
		return nil, fmt.Errorf("unknown step policy `%s`", p)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("system.policy: %w", err)
	}
	return policy, nil
}

// confReadJDEorTime reads a key either as a Julian date or as a DateTimeFormat
// date. A missing key yields the J2000 epoch.
func confReadJDEorTime(v *viper.Viper, key string) (time.Time, error) {
	if !v.IsSet(key) {
		return julian.JDToTime(j2000), nil
	}
	if jde := v.GetFloat64(key); jde != 0 {
		return julian.JDToTime(jde), nil
	}
	dt, err := time.Parse(DateTimeFormat, v.GetString(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("could not understand `%s`: %w", key, err)
	}
	return dt, nil
}
