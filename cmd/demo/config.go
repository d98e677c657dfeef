package main

import (
	"cmp"
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alextanhongpin/await/internal"
)

// Duration is a time.Duration that reads from YAML/JSON strings like
// "50ms".
type Duration time.Duration

func (d Duration) D() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config drives the demonstration scenarios.
type Config struct {
	Workers   int             `json:"workers" yaml:"workers"`
	Timer     TimerConfig     `json:"timer" yaml:"timer"`
	Pipeline  PipelineConfig  `json:"pipeline" yaml:"pipeline"`
	Channel   ChannelConfig   `json:"channel" yaml:"channel"`
	Timeout   TimeoutConfig   `json:"timeout" yaml:"timeout"`
	Semaphore SemaphoreConfig `json:"semaphore" yaml:"semaphore"`
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch"`
	Batch     BatchConfig     `json:"batch" yaml:"batch"`
}

type TimerConfig struct {
	Long  Duration `json:"long" yaml:"long"`
	Short Duration `json:"short" yaml:"short"`
}

type PipelineConfig struct {
	From    int      `json:"from" yaml:"from"`
	To      int      `json:"to" yaml:"to"`
	Buffer  int      `json:"buffer" yaml:"buffer"`
	Take    int      `json:"take" yaml:"take"`
	Latency Duration `json:"latency" yaml:"latency"`
}

type ChannelConfig struct {
	Capacity  int      `json:"capacity" yaml:"capacity"`
	Messages  int      `json:"messages" yaml:"messages"`
	SendGap   Duration `json:"send_gap" yaml:"send_gap"`
	RecvDelay Duration `json:"recv_delay" yaml:"recv_delay"`
}

type TimeoutConfig struct {
	Work  Duration `json:"work" yaml:"work"`
	Short Duration `json:"short" yaml:"short"`
	Long  Duration `json:"long" yaml:"long"`
}

type SemaphoreConfig struct {
	Permits int      `json:"permits" yaml:"permits"`
	Tasks   int      `json:"tasks" yaml:"tasks"`
	Hold    Duration `json:"hold" yaml:"hold"`
}

type FetchConfig struct {
	URLs    int      `json:"urls" yaml:"urls"`
	Latency Duration `json:"latency" yaml:"latency"`
}

type BatchConfig struct {
	Jobs int `json:"jobs" yaml:"jobs"`
	Size int `json:"size" yaml:"size"`
}

// DefaultConfig returns the scenario parameters from the original
// walkthrough.
func DefaultConfig() Config {
	return Config{
		Workers: 0, // GOMAXPROCS
		Timer: TimerConfig{
			Long:  Duration(100 * time.Millisecond),
			Short: Duration(50 * time.Millisecond),
		},
		Pipeline: PipelineConfig{
			From:    1,
			To:      11,
			Buffer:  3,
			Take:    3,
			Latency: Duration(10 * time.Millisecond),
		},
		Channel: ChannelConfig{
			Capacity:  10,
			Messages:  5,
			SendGap:   Duration(50 * time.Millisecond),
			RecvDelay: Duration(30 * time.Millisecond),
		},
		Timeout: TimeoutConfig{
			Work:  Duration(200 * time.Millisecond),
			Short: Duration(100 * time.Millisecond),
			Long:  Duration(300 * time.Millisecond),
		},
		Semaphore: SemaphoreConfig{
			Permits: 2,
			Tasks:   5,
			Hold:    Duration(100 * time.Millisecond),
		},
		Fetch: FetchConfig{
			URLs:    3,
			Latency: Duration(80 * time.Millisecond),
		},
		Batch: BatchConfig{
			Jobs: 8,
			Size: 30,
		},
	}
}

// LoadConfig reads a YAML config file, filling unset fields with
// defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	loaded, err := internal.UnmarshalYAML[Config](b)
	if err != nil {
		return cfg, err
	}
	return loaded.withDefaults(cfg), nil
}

// Dump renders the config as YAML with field order preserved.
func (c Config) Dump() ([]byte, error) {
	return internal.MarshalYAMLPreserveKeysOrder(c)
}

func (c Config) withDefaults(def Config) Config {
	c.Workers = cmp.Or(c.Workers, def.Workers)
	c.Timer.Long = cmp.Or(c.Timer.Long, def.Timer.Long)
	c.Timer.Short = cmp.Or(c.Timer.Short, def.Timer.Short)
	c.Pipeline.From = cmp.Or(c.Pipeline.From, def.Pipeline.From)
	c.Pipeline.To = cmp.Or(c.Pipeline.To, def.Pipeline.To)
	c.Pipeline.Buffer = cmp.Or(c.Pipeline.Buffer, def.Pipeline.Buffer)
	c.Pipeline.Take = cmp.Or(c.Pipeline.Take, def.Pipeline.Take)
	c.Pipeline.Latency = cmp.Or(c.Pipeline.Latency, def.Pipeline.Latency)
	c.Channel.Capacity = cmp.Or(c.Channel.Capacity, def.Channel.Capacity)
	c.Channel.Messages = cmp.Or(c.Channel.Messages, def.Channel.Messages)
	c.Channel.SendGap = cmp.Or(c.Channel.SendGap, def.Channel.SendGap)
	c.Channel.RecvDelay = cmp.Or(c.Channel.RecvDelay, def.Channel.RecvDelay)
	c.Timeout.Work = cmp.Or(c.Timeout.Work, def.Timeout.Work)
	c.Timeout.Short = cmp.Or(c.Timeout.Short, def.Timeout.Short)
	c.Timeout.Long = cmp.Or(c.Timeout.Long, def.Timeout.Long)
	c.Semaphore.Permits = cmp.Or(c.Semaphore.Permits, def.Semaphore.Permits)
	c.Semaphore.Tasks = cmp.Or(c.Semaphore.Tasks, def.Semaphore.Tasks)
	c.Semaphore.Hold = cmp.Or(c.Semaphore.Hold, def.Semaphore.Hold)
	c.Fetch.URLs = cmp.Or(c.Fetch.URLs, def.Fetch.URLs)
	c.Fetch.Latency = cmp.Or(c.Fetch.Latency, def.Fetch.Latency)
	c.Batch.Jobs = cmp.Or(c.Batch.Jobs, def.Batch.Jobs)
	c.Batch.Size = cmp.Or(c.Batch.Size, def.Batch.Size)
	return c
}
