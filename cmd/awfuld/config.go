package main

import (
	"fmt"
	"os"
	"time"

	"github.com/imagvfx/awful"
	"github.com/imagvfx/awful/rpc"
	"github.com/pelletier/go-toml"
)

// Config is configuration of the daemon.
// Zero values are replaced with defaults after loading.
type Config struct {
	Listen       string       `toml:"listen"`
	EndpointFile string       `toml:"endpoint_file"`
	NProcs       int          `toml:"nprocs"`
	Poll         string       `toml:"poll"`
	Policy       string       `toml:"policy"`
	MaxRunning   int          `toml:"max_running"`
	Shell        string       `toml:"shell"`
	Launcher     string       `toml:"launcher"`
	LogFile      string       `toml:"log_file"`
	Journal      string       `toml:"journal"`
	Allow        []string     `toml:"allow"`
	Output       OutputConfig `toml:"output"`
}

// OutputConfig is [output] table of the config.
type OutputConfig struct {
	Stdout string `toml:"stdout"`
	Stderr string `toml:"stderr"`
	Append bool   `toml:"append"`
}

// defaultConfig returns config the daemon uses when there is no config file.
func defaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:0"
	}
	if c.EndpointFile == "" {
		c.EndpointFile = rpc.EndpointFile()
	}
	if c.Poll == "" {
		c.Poll = "1s"
	}
	if c.Policy == "" {
		c.Policy = awful.HeadOfLine.String()
	}
	if c.Shell == "" {
		c.Shell = "/bin/sh"
	}
	if c.Launcher == "" {
		c.Launcher = "mpiexec -n"
	}
	if c.Allow == nil {
		c.Allow = []string{"127.0.0.1"}
	}
	def := awful.DefaultOutputConfig()
	if c.Output.Stdout == "" {
		c.Output.Stdout = def.Stdout
	}
	if c.Output.Stderr == "" {
		c.Output.Stderr = def.Stderr
	}
}

// loadConfig loads a toml config file.
// It returns the default config when the file doesn't exist.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := &Config{}
	err = tree.Unmarshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %v: %w", path, err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// SchedulerConfig returns awful.Config from the config.
// It doesn't set the journal.
func (c *Config) SchedulerConfig() (awful.Config, error) {
	if c.NProcs < 0 {
		return awful.Config{}, fmt.Errorf("nprocs should not be negative: %v", c.NProcs)
	}
	if c.MaxRunning < 0 {
		return awful.Config{}, fmt.Errorf("max_running should not be negative: %v", c.MaxRunning)
	}
	poll, err := time.ParseDuration(c.Poll)
	if err != nil {
		return awful.Config{}, fmt.Errorf("poll: %w", err)
	}
	if poll <= 0 {
		return awful.Config{}, fmt.Errorf("poll should be positive: %v", c.Poll)
	}
	policy, err := awful.ParsePolicy(c.Policy)
	if err != nil {
		return awful.Config{}, err
	}
	out := awful.OutputConfig{
		Stdout: c.Output.Stdout,
		Stderr: c.Output.Stderr,
		Append: c.Output.Append,
	}
	return awful.Config{
		Procs:      c.NProcs,
		Poll:       poll,
		Policy:     policy,
		MaxRunning: c.MaxRunning,
		Output:     out,
		Runner: &awful.ShellRunner{
			Shell:    c.Shell,
			Launcher: c.Launcher,
		},
	}, nil
}
