package experiment

import (
	"context"
	"fmt"
	"log"

	"github.com/samuelfneumann/discreteq/agent"
	env "github.com/samuelfneumann/discreteq/environment"
	"github.com/samuelfneumann/discreteq/experiment/checkpointer"
	"github.com/samuelfneumann/discreteq/experiment/tracker"
	ts "github.com/samuelfneumann/discreteq/timestep"
	"github.com/samuelfneumann/discreteq/utils/progressbar"
)

// explorer is an agent which explores at some rate
type explorer interface {
	ExplorationRate() float64
}

// Episodic is an Experiment that runs an agent online for a fixed
// number of episodes. Each episode lasts until the environment ends
// it, either by reaching a terminal state or by a step limit.
type Episodic struct {
	env.Environment
	agent.Agent
	maxEpisodes   int
	episodes      int
	lengths       []int
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer

	progress *progressbar.ManualProgressBar
	logger   *log.Logger
	logEvery int
}

// NewEpisodic creates and returns a new episodic experiment on a given
// environment with a given agent. The episodes parameter determines
// how many episodes the experiment is run for, the t parameter is a
// slice of tracker.Tracker which determine what data is saved, and
// the c parameter is a slice of checkpointer.Checkpointer which
// determine when the agent is saved.
func NewEpisodic(e env.Environment, a agent.Agent, episodes int,
	t []tracker.Tracker, c []checkpointer.Checkpointer) *Episodic {
	return &Episodic{
		Environment:   e,
		Agent:         a,
		maxEpisodes:   episodes,
		trackers:      t,
		checkpointers: c,
	}
}

// SetLogger sets the logger to which episode lengths are logged every
// n episodes. If n is 0 or logger is nil, nothing is logged.
func (o *Episodic) SetLogger(logger *log.Logger, n int) {
	o.logger = logger
	o.logEvery = n
}

// SetProgressBar sets a progress bar which is incremented and
// displayed at the end of each episode
func (o *Episodic) SetProgressBar(p *progressbar.ManualProgressBar) {
	o.progress = p
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Episodic) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Episodes returns the number of episodes completed
func (o *Episodic) Episodes() int {
	return o.episodes
}

// Lengths returns the lengths of all completed episodes
func (o *Episodic) Lengths() []int {
	return append([]int(nil), o.lengths...)
}

// RunEpisode runs a single episode of the experiment and returns the
// number of steps it lasted
func (o *Episodic) RunEpisode() (int, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}
	o.track(step)

	for !step.Last() {
		// Select action, step in environment
		action, err := o.Agent.SelectAction(step)
		if err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}

		// Cache the environment step in each Tracker
		o.track(step)

		// Observe the timestep and step the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.Agent.Step(); err != nil {
			return 0, fmt.Errorf("runEpisode: %w", err)
		}
	}

	if err := o.Agent.EndEpisode(); err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.checkpoint(step); err != nil {
		return 0, fmt.Errorf("runEpisode: %w", err)
	}

	o.lengths = append(o.lengths, step.Number)
	o.episodes++
	o.report(step.Number)

	return step.Number, nil
}

// Run runs the experiment until all episodes have completed or ctx is
// cancelled. Cancellation is checked between episodes.
func (o *Episodic) Run(ctx context.Context) error {
	for o.episodes < o.maxEpisodes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := o.RunEpisode(); err != nil {
			return fmt.Errorf("run: episode %v: %w", o.episodes, err)
		}
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Episodic) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each
// Tracker
func (o *Episodic) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}

// checkpoint checkpoints the agent with each Checkpointer
func (o *Episodic) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}

// report logs the length of the last episode and displays progress
func (o *Episodic) report(length int) {
	if o.progress != nil {
		o.progress.Increment()
		o.progress.Display()
	}

	if o.logger == nil || o.logEvery <= 0 || o.episodes%o.logEvery != 0 {
		return
	}
	if e, ok := o.Agent.(explorer); ok {
		o.logger.Printf("Finished episode %v at time %v (exploration "+
			"rate %.4f)", o.episodes-1, length, e.ExplorationRate())
	} else {
		o.logger.Printf("Finished episode %v at time %v", o.episodes-1,
			length)
	}
}
