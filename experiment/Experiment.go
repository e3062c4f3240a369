// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/discreteq/agent/tabular/qlearning"
	"github.com/samuelfneumann/discreteq/environment/envconfig"
	"github.com/samuelfneumann/discreteq/environment/wrappers"
	"github.com/samuelfneumann/discreteq/experiment/checkpointer"
	"github.com/samuelfneumann/discreteq/experiment/tracker"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes until the maximum episode limit is reached or the
// context is cancelled. The RunEpisode() function will run a single
// episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments will
// send each TimeStep to Trackers using the Tracker's Track() method.
// The Tracker then determines which data from the TimeStep it caches
// and saves. New Trackers can be registered with an Experiment through
// the constructor or through an Experiment's Register() function.
type Experiment interface {
	Run(ctx context.Context) error

	// RunEpisode runs a single episode and returns its length
	RunEpisode() (int, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Files written to a Config's SavePath
const (
	ConfigFile     = "config.json"
	LengthsFile    = "lengths.bin"
	ReturnsFile    = "returns.bin"
	ChartFile      = "lengths.html"
	CheckpointBase = "checkpoint"
	CheckpointExt  = ".bin"
	CheckpointFile = CheckpointBase + CheckpointExt
	TableFile      = "table.bin"
)

// Config represents a configuration of an experiment.
type Config struct {
	Episodes int
	Seed     uint64

	// LogEvery determines how often, in episodes, the length of an
	// episode is logged. If 0, nothing is logged.
	LogEvery int

	// CheckpointEvery determines how often, in episodes, the agent's
	// table is saved to SavePath. If 0, no checkpoints are saved.
	CheckpointEvery int

	// CheckpointNaming determines whether checkpoints overwrite each
	// other or are saved to enumerated or timestamped files.
	CheckpointNaming checkpointer.Naming

	// SavePath is the directory in which experiment data is saved. If
	// empty, no data is saved.
	SavePath string

	EnvConf   envconfig.Config
	AgentConf qlearning.Config

	// Steps are the discretization step sizes of each observation
	// factor, and Bounds overrides the bounds of observation factors
	// which would otherwise be taken from the environment.
	Steps  []float64
	Bounds map[int]r1.Interval
}

// DefaultConfig returns the default Cartpole experiment configuration.
// Cart position and velocity are each discretized into a single value,
// so that learning happens over the pole angle and angular velocity.
func DefaultConfig() Config {
	return Config{
		Episodes:         100_000,
		Seed:             1,
		LogEvery:         1,
		CheckpointEvery:  0,
		CheckpointNaming: checkpointer.Overwrite,
		EnvConf:          envconfig.Default(),
		AgentConf:        qlearning.DefaultConfig(),
		Steps:            []float64{15, 5, radians(1), radians(2)},
		Bounds: map[int]r1.Interval{
			1: {Min: -1, Max: 1},
			3: {Min: -radians(50), Max: radians(50)},
		},
	}
}

// radians converts degrees to radians
func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// LoadConfig loads a JSON Config from a file. Fields missing from the
// file take their values from DefaultConfig.
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	c := DefaultConfig()
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode %v: %w",
			filename, err)
	}
	return c, nil
}

// Save saves the Config as JSON to filename
func (c Config) Save(filename string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: could not encode config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("validate: episodes must be positive but got %v",
			c.Episodes)
	}
	if c.LogEvery < 0 {
		return fmt.Errorf("validate: log every must be non-negative but "+
			"got %v", c.LogEvery)
	}
	if c.CheckpointEvery < 0 {
		return fmt.Errorf("validate: checkpoint every must be "+
			"non-negative but got %v", c.CheckpointEvery)
	}
	if err := c.CheckpointNaming.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if c.CheckpointEvery > 0 && c.SavePath == "" {
		return fmt.Errorf("validate: checkpointing requires a save path")
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("validate: no discretization steps")
	}
	if err := c.EnvConf.Validate(); err != nil {
		return fmt.Errorf("validate: environment: %w", err)
	}
	if err := c.AgentConf.Validate(); err != nil {
		return fmt.Errorf("validate: agent: %w", err)
	}
	return nil
}

// CreateEnv creates the discretized environment described by the
// Config
func (c Config) CreateEnv() (*wrappers.Discretize, error) {
	e, _, err := c.EnvConf.Create(c.Seed)
	if err != nil {
		return nil, fmt.Errorf("createEnv: %w", err)
	}

	d, _, err := wrappers.NewDiscretize(e, c.Steps, c.Bounds)
	if err != nil {
		return nil, fmt.Errorf("createEnv: %w", err)
	}
	return d, nil
}

// CreateExp creates the environment and agent described by the Config,
// and returns an Episodic experiment running the agent on the
// environment. If the Config has a SavePath, the experiment tracks
// episode lengths, returns and a chart of episode lengths, and
// checkpoints the agent's table every CheckpointEvery episodes.
func (c Config) CreateExp() (*Episodic, *qlearning.QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, fmt.Errorf("createExp: %w", err)
	}

	env, err := c.CreateEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: %w", err)
	}

	agent, err := qlearning.New(env, c.AgentConf, c.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: could not create agent: %w",
			err)
	}

	var trackers []tracker.Tracker
	var checkpointers []checkpointer.Checkpointer
	if c.SavePath != "" {
		trackers = append(trackers,
			tracker.NewEpisodeLength(filepath.Join(c.SavePath, LengthsFile)),
			tracker.NewReturn(filepath.Join(c.SavePath, ReturnsFile)),
			tracker.NewChart(fmt.Sprintf("%v %v episode lengths",
				c.EnvConf.Environment, c.EnvConf.Task),
				filepath.Join(c.SavePath, ChartFile)),
		)

		if c.CheckpointEvery > 0 {
			filename, err := c.CheckpointNaming.Filenames(
				filepath.Join(c.SavePath, CheckpointBase), CheckpointExt)
			if err != nil {
				return nil, nil, fmt.Errorf("createExp: %w", err)
			}
			check, err := checkpointer.NewNEpisode(c.CheckpointEvery,
				agent.Table(), filename)
			if err != nil {
				return nil, nil, fmt.Errorf("createExp: %w", err)
			}
			checkpointers = append(checkpointers, check)
		}
	}

	exp := NewEpisodic(env, agent, c.Episodes, trackers, checkpointers)
	exp.SetLogger(log.Default(), c.LogEvery)
	return exp, agent, nil
}
