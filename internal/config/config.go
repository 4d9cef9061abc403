// Package config loads run configuration from the environment and command
// line and rejects invalid setups before the first tick.
package config

import (
	"errors"
	"flag"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"tickframe/internal/collision"
	"tickframe/internal/core"
	"tickframe/internal/engine"
	"tickframe/internal/entity"
	"tickframe/internal/fault"
	"tickframe/pkg/geom"
)

// Config is everything a run needs. Environment variables are read first;
// flags bound with Bind and Set overrides apply on top.
type Config struct {
	Name string `env:"TICKFRAME_NAME" envDefault:"tickframe"`

	Dim        int   `env:"TICKFRAME_DIM" envDefault:"2"`
	Radius     int   `env:"TICKFRAME_RADIUS" envDefault:"1"`
	Seed       int64 `env:"TICKFRAME_SEED" envDefault:"1"`
	ExtraSeeds int   `env:"TICKFRAME_EXTRA_SEEDS" envDefault:"0"`
	SeedSpread int   `env:"TICKFRAME_SEED_SPREAD" envDefault:"16"`

	SeedPosition      []int64 `env:"TICKFRAME_SEED_POSITION" envSeparator:","`
	SeedDirection     []int64 `env:"TICKFRAME_SEED_DIRECTION" envSeparator:","`
	SeedCost          int64   `env:"TICKFRAME_SEED_COST" envDefault:"1"`
	SeedEnergy        int64   `env:"TICKFRAME_SEED_ENERGY" envDefault:"0"`
	DivisionThreshold int64   `env:"TICKFRAME_DIVISION_THRESHOLD" envDefault:"8"`
	ChildThresholds   []int64 `env:"TICKFRAME_CHILD_THRESHOLDS" envSeparator:","`

	Policy             string `env:"TICKFRAME_POLICY" envDefault:"naive"`
	MergeCost          int64  `env:"TICKFRAME_MERGE_COST" envDefault:"2"`
	ExplosionThreshold int64  `env:"TICKFRAME_EXPLOSION_THRESHOLD" envDefault:"24"`
	AnnihilationFloor  int64  `env:"TICKFRAME_ANNIHILATION_FLOOR" envDefault:"3"`
	EnergyPolicy       string `env:"TICKFRAME_ENERGY_POLICY" envDefault:"reset"`

	CostBase          float64 `env:"TICKFRAME_COST_BASE" envDefault:"1"`
	CostPerGeneration int64   `env:"TICKFRAME_COST_PER_GENERATION" envDefault:"0"`
	CostReverse       int64   `env:"TICKFRAME_COST_REVERSE" envDefault:"1"`

	MaxTicks    int64         `env:"TICKFRAME_MAX_TICKS" envDefault:"200"`
	TimeLimit   time.Duration `env:"TICKFRAME_TIME_LIMIT" envDefault:"0s"`
	TickTimeout time.Duration `env:"TICKFRAME_TICK_TIMEOUT" envDefault:"0s"`
	TickRetries int           `env:"TICKFRAME_TICK_RETRIES" envDefault:"0"`
	Workers     int           `env:"TICKFRAME_WORKERS" envDefault:"0"`
	FailureMode string        `env:"TICKFRAME_FAILURE_MODE" envDefault:"soft"`
	TPS         int           `env:"TICKFRAME_TPS" envDefault:"0"`

	ExportInterval int64  `env:"TICKFRAME_EXPORT_INTERVAL" envDefault:"10"`
	ExportJSONL    string `env:"TICKFRAME_EXPORT_JSONL"`
	ExportSQLite   string `env:"TICKFRAME_EXPORT_SQLITE"`
}

// Default returns the built-in configuration, ignoring the environment.
func Default() Config {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return c
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fault.Wrap(fault.Config, -1, "parse env", err)
	}
	return c, nil
}

// Bind registers a flag per field on fs, defaulting to the current values.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Name, "name", c.Name, "run name recorded by exporters")
	fs.IntVar(&c.Dim, "dim", c.Dim, "world dimensionality (1-3)")
	fs.IntVar(&c.Radius, "radius", c.Radius, "neighborhood radius for division offsets")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed for identities and scatter seeding")
	fs.IntVar(&c.ExtraSeeds, "extra-seeds", c.ExtraSeeds, "additional seeds scattered around the origin")
	fs.IntVar(&c.SeedSpread, "seed-spread", c.SeedSpread, "half-width of the scatter box")
	fs.Func("seed-position", "seed position as comma-separated coordinates", intList(&c.SeedPosition))
	fs.Func("seed-direction", "seed momentum direction as comma-separated coordinates", intList(&c.SeedDirection))
	fs.Int64Var(&c.SeedCost, "seed-cost", c.SeedCost, "seed momentum cost (ticks per action)")
	fs.Int64Var(&c.SeedEnergy, "seed-energy", c.SeedEnergy, "seed starting energy")
	fs.Int64Var(&c.DivisionThreshold, "division-threshold", c.DivisionThreshold, "ticks an entity lives before it may divide")
	fs.Func("child-thresholds", "explicit seed child thresholds, one per offset", intList(&c.ChildThresholds))
	fs.StringVar(&c.Policy, "policy", c.Policy, "collision policy: "+strings.Join(collision.Names(), "|"))
	fs.Int64Var(&c.MergeCost, "merge-cost", c.MergeCost, "energy lost per naive merge")
	fs.Int64Var(&c.ExplosionThreshold, "explosion-threshold", c.ExplosionThreshold, "combined energy at which a collision explodes")
	fs.Int64Var(&c.AnnihilationFloor, "annihilation-floor", c.AnnihilationFloor, "combined cost below which a collision annihilates")
	fs.StringVar(&c.EnergyPolicy, "energy-policy", c.EnergyPolicy, "division energy policy: reset|conserve")
	fs.Float64Var(&c.CostBase, "cost-base", c.CostBase, "cost per unit of offset length")
	fs.Int64Var(&c.CostPerGeneration, "cost-per-generation", c.CostPerGeneration, "extra cost per generation")
	fs.Int64Var(&c.CostReverse, "cost-reverse", c.CostReverse, "extra cost for reversing direction")
	fs.Int64Var(&c.MaxTicks, "max-ticks", c.MaxTicks, "tick budget (0 = unbounded)")
	fs.DurationVar(&c.TimeLimit, "time-limit", c.TimeLimit, "wall-clock limit for the run (0 = none)")
	fs.DurationVar(&c.TickTimeout, "tick-timeout", c.TickTimeout, "wall-clock budget per tick (0 = none)")
	fs.IntVar(&c.TickRetries, "tick-retries", c.TickRetries, "retries for a timed out tick")
	fs.IntVar(&c.Workers, "workers", c.Workers, "evaluation workers (0 = GOMAXPROCS)")
	fs.StringVar(&c.FailureMode, "failure-mode", c.FailureMode, "evaluation failures: soft|fast")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second limit (0 = unpaced)")
	fs.Int64Var(&c.ExportInterval, "export-interval", c.ExportInterval, "export every N ticks")
	fs.StringVar(&c.ExportJSONL, "export-jsonl", c.ExportJSONL, "JSON Lines export path")
	fs.StringVar(&c.ExportSQLite, "export-sqlite", c.ExportSQLite, "SQLite export path")
}

func intList(dst *[]int64) func(string) error {
	return func(s string) error {
		v, err := ParseInts(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// ParseInts parses a comma-separated list of integers. The empty string is
// an empty list.
func ParseInts(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		out[i] = v
	}
	return out, nil
}

// Set applies one override by flag name, e.g. Set("merge-cost", "5").
func (c *Config) Set(key, value string) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	c.Bind(fs)
	if err := fs.Set(key, value); err != nil {
		return fault.Wrap(fault.Config, -1, "set "+key, err)
	}
	return nil
}

// Apply sets every key of kv in key order.
func (c *Config) Apply(kv map[string]string) error {
	for _, k := range slices.Sorted(maps.Keys(kv)) {
		if err := c.Set(k, kv[k]); err != nil {
			return err
		}
	}
	return nil
}

// ParseKV parses "k=v,k2=v2" into a map.
func ParseKV(s string) (map[string]string, error) {
	out := map[string]string{}
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid override %q, expected key=value", pair)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}

// Validate rejects configurations that cannot run or that make division,
// explosion or annihilation unreachable.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if c.Dim < 1 || c.Dim > geom.MaxDim {
		add("dim must be between 1 and %d, got %d", geom.MaxDim, c.Dim)
	}
	if c.Radius < 1 {
		add("radius must be positive, got %d", c.Radius)
	}
	if c.ExtraSeeds < 0 || c.SeedSpread < 1 {
		add("extra-seeds must not be negative and seed-spread must be positive")
	}
	if len(c.SeedPosition) > 0 && len(c.SeedPosition) != c.Dim {
		add("seed-position has %d coordinates, dim is %d", len(c.SeedPosition), c.Dim)
	}
	if len(c.SeedDirection) > 0 && len(c.SeedDirection) != c.Dim {
		add("seed-direction has %d coordinates, dim is %d", len(c.SeedDirection), c.Dim)
	}
	if c.SeedCost < 1 {
		add("seed-cost must be positive, got %d", c.SeedCost)
	}
	if c.SeedEnergy < 0 {
		add("seed-energy must not be negative, got %d", c.SeedEnergy)
	}
	if c.DivisionThreshold < 1 {
		add("division-threshold must be positive, got %d", c.DivisionThreshold)
	}
	if len(c.ChildThresholds) > 0 && c.Dim >= 1 && c.Dim <= geom.MaxDim && c.Radius >= 1 {
		if offs, err := geom.Offsets(c.Dim, c.Radius); err == nil && len(offs) != len(c.ChildThresholds) {
			add("child-thresholds has %d entries, the neighborhood has %d offsets", len(c.ChildThresholds), len(offs))
		}
		for _, v := range c.ChildThresholds {
			if v < 1 {
				add("child thresholds must be positive, got %d", v)
				break
			}
		}
	}

	if !slices.Contains(collision.Names(), c.Policy) {
		add("policy must be one of %v, got %q", collision.Names(), c.Policy)
	}
	if c.MergeCost < 0 {
		add("merge-cost must not be negative, got %d", c.MergeCost)
	}
	if c.ExplosionThreshold < 1 {
		add("explosion-threshold must be positive, got %d", c.ExplosionThreshold)
	}
	if c.AnnihilationFloor < 0 {
		add("annihilation-floor must not be negative, got %d", c.AnnihilationFloor)
	}
	if c.Policy == "full" {
		// A colliding group costs at least 2 and must hold at least that much
		// energy to skip merging.
		if c.AnnihilationFloor <= 2 {
			add("annihilation-floor %d is unreachable with the full policy; it must exceed 2", c.AnnihilationFloor)
		}
		if c.ExplosionThreshold <= 2 {
			add("explosion-threshold %d leaves annihilation unreachable with the full policy; it must exceed 2", c.ExplosionThreshold)
		}
	}
	if _, err := entity.EnergyPolicyByName(c.EnergyPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.CostBase < 0 || c.CostPerGeneration < 0 || c.CostReverse < 0 {
		add("cost parameters must not be negative")
	}

	if c.MaxTicks < 0 || c.TimeLimit < 0 || c.TickTimeout < 0 || c.TickRetries < 0 {
		add("tick budget, time limit, tick timeout and retries must not be negative")
	}
	if c.Workers < 0 || c.TPS < 0 {
		add("workers and tps must not be negative")
	}
	if _, ok := engine.ParseFailureMode(c.FailureMode); !ok {
		add("failure-mode must be soft or fast, got %q", c.FailureMode)
	}
	if c.ExportInterval < 1 {
		add("export-interval must be positive, got %d", c.ExportInterval)
	}

	if len(errs) > 0 {
		return fault.Wrap(fault.Config, -1, "invalid configuration", errors.Join(errs...))
	}
	return nil
}

// Parameters groups the configuration for display and export metadata.
func (c Config) Parameters() core.ParameterSnapshot {
	i := func(key, label string, v int64) core.Parameter {
		return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.FormatInt(v, 10)}
	}
	s := func(key, label, v string) core.Parameter {
		return core.Parameter{Key: key, Label: label, Type: core.ParamTypeString, Value: v}
	}
	list := func(v []int64) string {
		parts := make([]string, len(v))
		for k, x := range v {
			parts[k] = strconv.FormatInt(x, 10)
		}
		return strings.Join(parts, ",")
	}
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "world", Summary: "Space and seeding", Params: []core.Parameter{
			i("dim", "Dimensions", int64(c.Dim)),
			i("radius", "Radius", int64(c.Radius)),
			i("seed", "Seed", c.Seed),
			i("extra-seeds", "Extra seeds", int64(c.ExtraSeeds)),
			i("seed-spread", "Seed spread", int64(c.SeedSpread)),
		}},
		{Name: "seed", Summary: "Initial entity", Params: []core.Parameter{
			s("seed-position", "Position", list(c.SeedPosition)),
			s("seed-direction", "Direction", list(c.SeedDirection)),
			i("seed-cost", "Cost", c.SeedCost),
			i("seed-energy", "Energy", c.SeedEnergy),
			i("division-threshold", "Division threshold", c.DivisionThreshold),
			s("child-thresholds", "Child thresholds", list(c.ChildThresholds)),
		}},
		{Name: "collision", Summary: "Interaction rules", Params: []core.Parameter{
			s("policy", "Policy", c.Policy),
			i("merge-cost", "Merge cost", c.MergeCost),
			i("explosion-threshold", "Explosion threshold", c.ExplosionThreshold),
			i("annihilation-floor", "Annihilation floor", c.AnnihilationFloor),
			s("energy-policy", "Energy policy", c.EnergyPolicy),
		}},
		{Name: "cost", Summary: "Momentum pricing", Params: []core.Parameter{
			{Key: "cost-base", Label: "Base", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(c.CostBase, 'g', -1, 64)},
			i("cost-per-generation", "Per generation", c.CostPerGeneration),
			i("cost-reverse", "Reverse", c.CostReverse),
		}},
		{Name: "run", Summary: "Scheduling and export", Params: []core.Parameter{
			i("max-ticks", "Tick budget", c.MaxTicks),
			s("time-limit", "Time limit", c.TimeLimit.String()),
			s("tick-timeout", "Tick timeout", c.TickTimeout.String()),
			i("tick-retries", "Tick retries", int64(c.TickRetries)),
			i("workers", "Workers", int64(c.Workers)),
			s("failure-mode", "Failure mode", c.FailureMode),
			i("tps", "Ticks per second", int64(c.TPS)),
			i("export-interval", "Export interval", c.ExportInterval),
		}},
	}}
}
