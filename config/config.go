// Package config resolves the settings of a regression run from defaults, a
// JSONC file, the environment and command-line flags.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/fatih/structs"
	"github.com/joho/godotenv"
	"github.com/sarchlab/dpramtb/regression"
	"github.com/sarchlab/dpramtb/sim/timing"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// FileName is the config file looked up in the working directory.
const FileName = "dpramtb.jsonc"

// EnvFileName is the dotenv file looked up in the working directory.
const EnvFileName = ".env"

// EnvPrefix prefixes the environment variable of every field.
const EnvPrefix = "DPRAMTB_"

// Config holds all the settings of a run. The json tag names the key in the
// config file and, upper-cased after EnvPrefix, the environment variable. The
// flag tag names the command-line flag.
type Config struct {
	AddrWidth      int `json:"addr_width" flag:"addr-width"`
	DataWidth      int `json:"data_width" flag:"data-width"`
	RAMReadLatency int `json:"ram_read_latency" flag:"ram-read-latency"`
	ReadLatency    int `json:"read_latency" flag:"read-latency"`

	ClkAPeriodPS uint64 `json:"clk_a_period_ps" flag:"clka-period"`
	ClkBPeriodPS uint64 `json:"clk_b_period_ps" flag:"clkb-period"`

	Seed                 uint64   `json:"seed" flag:"seed"`
	MaxValue             uint64   `json:"max_value" flag:"max-value"`
	Distinct             bool     `json:"distinct" flag:"distinct"`
	Tests                []string `json:"tests" flag:"test"`
	LastAddressExclusive bool     `json:"last_address_exclusive" flag:"last-address-exclusive"`

	Record      bool   `json:"record" flag:"record"`
	RecordPath  string `json:"record_path" flag:"record-path"`
	ReportPath  string `json:"report_path" flag:"report"`
	Monitor     bool   `json:"monitor" flag:"monitor"`
	MonitorPort int    `json:"monitor_port" flag:"monitor-port"`
	OpenBrowser bool   `json:"open_browser" flag:"open-browser"`
	TraceEvents bool   `json:"trace_events" flag:"trace-events"`
	MaxTimePS   uint64 `json:"max_time_ps" flag:"max-time"`
}

// Default returns a 1024 x 16 RAM with one output register, checked two CLKB
// edges after each read.
func Default() Config {
	return Config{
		AddrWidth:      regression.DefaultDesign.AddrWidth,
		DataWidth:      regression.DefaultDesign.DataWidth,
		RAMReadLatency: regression.DefaultDesign.ReadLatency,
		ReadLatency:    regression.DefaultReadLatency,
		ClkAPeriodPS:   uint64(regression.ClkPeriodA),
		ClkBPeriodPS:   uint64(regression.ClkPeriodB),
		MaxValue:       regression.DefaultMaxValue,
	}
}

// LoadInput holds the inputs of Load.
type LoadInput struct {
	WorkDir    string            // if empty, os.Getwd() is used
	ConfigPath string            // --config flag value
	Env        map[string]string // process environment

	// Flags and FlagValues carry the command line. Only the flags that were
	// changed override the other sources.
	Flags      *pflag.FlagSet
	FlagValues *Config
}

// Load merges the sources with the following precedence, highest last:
// defaults, the config file, the dotenv file, the environment, the flags.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	err := loadFile(&cfg, workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	env, err := mergedEnv(workDir, input.Env)
	if err != nil {
		return Config{}, err
	}

	err = applyEnv(&cfg, env)
	if err != nil {
		return Config{}, err
	}

	if input.Flags != nil && input.FlagValues != nil {
		cfg.applyFlags(input.Flags, input.FlagValues)
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(cfg *Config, workDir, configPath string) error {
	path := filepath.Join(workDir, FileName)
	mustExist := false

	if configPath != "" {
		path = configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		mustExist = true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}

		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}

		return fmt.Errorf("cannot read config %s: %w", path, err)
	}

	err = parse(cfg, data)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return nil
}

// parse overlays the keys present in a JSONC document on cfg.
func parse(cfg *Config, data []byte) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	err = dec.Decode(cfg)
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// mergedEnv reads the dotenv file of the work dir, if any, and lets the
// process environment override it.
func mergedEnv(workDir string, processEnv map[string]string) (map[string]string, error) {
	env := make(map[string]string)

	path := filepath.Join(workDir, EnvFileName)
	if _, err := os.Stat(path); err == nil {
		fileEnv, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
		}

		for k, v := range fileEnv {
			env[k] = v
		}
	}

	for k, v := range processEnv {
		env[k] = v
	}

	return env, nil
}

// EnvKey returns the environment variable that sets a json key.
func EnvKey(jsonKey string) string {
	return EnvPrefix + strings.ToUpper(jsonKey)
}

func applyEnv(cfg *Config, env map[string]string) error {
	for _, f := range structs.New(cfg).Fields() {
		key := EnvKey(f.Tag("json"))

		raw, ok := env[key]
		if !ok {
			continue
		}

		v, err := parseValue(f.Kind(), f.Value(), raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrConfigInvalid, key, raw, err)
		}

		err = f.Set(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfigInvalid, key, err)
		}
	}

	return nil
}

func parseValue(kind reflect.Kind, current any, raw string) (any, error) {
	switch kind {
	case reflect.Int:
		return strconv.Atoi(raw)
	case reflect.Uint64:
		return strconv.ParseUint(raw, 10, 64)
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.String:
		return raw, nil
	case reflect.Slice:
		if _, ok := current.([]string); ok {
			return splitList(raw), nil
		}
	}

	return nil, fmt.Errorf("unsupported field kind %s", kind)
}

func splitList(raw string) []string {
	var list []string

	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			list = append(list, s)
		}
	}

	return list
}

// RegisterFlags defines one flag per field on fs. The parsed values are
// written into into, whose current values are the flag defaults.
func RegisterFlags(fs *pflag.FlagSet, into *Config) {
	fs.IntVar(&into.AddrWidth, "addr-width", into.AddrWidth,
		"number of address bits of the RAM")
	fs.IntVar(&into.DataWidth, "data-width", into.DataWidth,
		"number of data bits of the RAM")
	fs.IntVar(&into.RAMReadLatency, "ram-read-latency", into.RAMReadLatency,
		"number of output registers of the RAM")
	fs.IntVar(&into.ReadLatency, "read-latency", into.ReadLatency,
		"CLKB edges waited before DOB is compared")
	fs.Uint64Var(&into.ClkAPeriodPS, "clka-period", into.ClkAPeriodPS,
		"CLKA period in picoseconds")
	fs.Uint64Var(&into.ClkBPeriodPS, "clkb-period", into.ClkBPeriodPS,
		"CLKB period in picoseconds")
	fs.Uint64Var(&into.Seed, "seed", into.Seed,
		"seed of the random data, 0 picks one from the clock")
	fs.Uint64Var(&into.MaxValue, "max-value", into.MaxValue,
		"largest random data value")
	fs.BoolVar(&into.Distinct, "distinct", into.Distinct,
		"write a different value at each address")
	fs.StringSliceVar(&into.Tests, "test", into.Tests,
		"test to run, repeatable; all tests when empty")
	fs.BoolVar(&into.LastAddressExclusive, "last-address-exclusive",
		into.LastAddressExclusive, "leave the last address out of the test")
	fs.BoolVar(&into.Record, "record", into.Record,
		"record accesses and results into sqlite")
	fs.StringVar(&into.RecordPath, "record-path", into.RecordPath,
		"sqlite file name, without extension")
	fs.StringVar(&into.ReportPath, "report", into.ReportPath,
		"write a JSON report of the results to this file")
	fs.BoolVar(&into.Monitor, "monitor", into.Monitor,
		"serve the live monitor")
	fs.IntVar(&into.MonitorPort, "monitor-port", into.MonitorPort,
		"port of the monitor, 0 picks one")
	fs.BoolVar(&into.OpenBrowser, "open-browser", into.OpenBrowser,
		"open the monitor in a browser")
	fs.BoolVar(&into.TraceEvents, "trace-events", into.TraceEvents,
		"log every event handled by the engine")
	fs.Uint64Var(&into.MaxTimePS, "max-time", into.MaxTimePS,
		"stop each test after this simulated time in picoseconds, 0 for none")
}

// applyFlags copies the fields whose flag was set on the command line.
func (c *Config) applyFlags(fs *pflag.FlagSet, from *Config) {
	dst := structs.New(c)

	for _, f := range structs.New(from).Fields() {
		if !fs.Changed(f.Tag("flag")) {
			continue
		}

		err := dst.Field(f.Name()).Set(f.Value())
		if err != nil {
			panic(err)
		}
	}
}

// Validate checks that the settings describe a runnable regression.
func (c Config) Validate() error {
	switch {
	case c.AddrWidth < 1 || c.AddrWidth > 24:
		return fmt.Errorf("%w: addr_width %d is not within [1, 24]",
			ErrConfigInvalid, c.AddrWidth)
	case c.DataWidth < 1 || c.DataWidth > 64:
		return fmt.Errorf("%w: data_width %d is not within [1, 64]",
			ErrConfigInvalid, c.DataWidth)
	case c.RAMReadLatency < 1:
		return fmt.Errorf("%w: ram_read_latency must be at least 1",
			ErrConfigInvalid)
	case c.ReadLatency < 1:
		return fmt.Errorf("%w: read_latency must be at least 1",
			ErrConfigInvalid)
	case c.MaxValue == 0:
		return fmt.Errorf("%w: max_value must be positive", ErrConfigInvalid)
	case c.MonitorPort < 0 || c.MonitorPort > 65535:
		return fmt.Errorf("%w: monitor_port %d is not a port",
			ErrConfigInvalid, c.MonitorPort)
	}

	for _, p := range []struct {
		name   string
		period uint64
	}{
		{"clk_a_period_ps", c.ClkAPeriodPS},
		{"clk_b_period_ps", c.ClkBPeriodPS},
	} {
		if p.period < 2 || p.period%2 != 0 {
			return fmt.Errorf("%w: %s %d must be even and at least 2",
				ErrConfigInvalid, p.name, p.period)
		}
	}

	return nil
}

// Design returns the RAM the regression runs on.
func (c Config) Design() regression.DesignConfig {
	return regression.DesignConfig{
		AddrWidth:   c.AddrWidth,
		DataWidth:   c.DataWidth,
		ReadLatency: c.RAMReadLatency,
	}
}

// Options returns the options of the regression tests.
func (c Config) Options() regression.Options {
	return regression.Options{
		ReadLatency:          c.ReadLatency,
		MaxValue:             c.MaxValue,
		Seed:                 c.Seed,
		Distinct:             c.Distinct,
		LastAddressExclusive: c.LastAddressExclusive,
		ClkPeriodA:           timing.VTime(c.ClkAPeriodPS),
		ClkPeriodB:           timing.VTime(c.ClkBPeriodPS),
	}
}

// EnvMap turns an os.Environ style list into a map.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			env[k] = v
		}
	}

	return env
}
