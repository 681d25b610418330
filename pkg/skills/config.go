package skills

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/helicon-ai/skillforge/pkg/errors"
)

// Duration is a time.Duration that also unmarshals from YAML strings like
// "5s" or "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Config configures the learning engine. It is immutable after construction.
type Config struct {
	// Enabled is the master switch; when false every public method of the
	// engine is a no-op or pass-through.
	Enabled bool `yaml:"enabled"`

	// Model identifies the reflection/curation model. Empty selects the
	// built-in heuristic services.
	Model string `yaml:"model,omitempty"`

	// StoragePath is the repository persistence location. Paths ending in
	// .db or .sqlite select the SQLite store; everything else the JSON
	// file store.
	StoragePath string `yaml:"storage_path" validate:"required"`

	// AsyncLearning selects background processing; false processes
	// learning events inline on the caller's goroutine.
	AsyncLearning bool `yaml:"async_learning"`

	// MaxSkills is the repository capacity enforced by pruning.
	MaxSkills int `yaml:"max_skills" validate:"gt=0"`

	// MaxTokens bounds each external reflection/curation call.
	MaxTokens int `yaml:"max_tokens" validate:"gt=0"`

	// PruneThreshold is the advisory score below which a skill is
	// considered low-value. Pruning itself is by capacity.
	PruneThreshold int `yaml:"prune_threshold"`

	// DeduplicationEnabled controls near-duplicate rejection on add.
	DeduplicationEnabled bool `yaml:"deduplication_enabled"`

	// SimilarityThreshold is the word-overlap ratio at or above which a
	// proposed skill counts as a duplicate.
	SimilarityThreshold float64 `yaml:"similarity_threshold" validate:"gte=0,lte=1"`

	// TopKSkills limits injection to the K highest-scoring skills.
	// Zero injects the full repository.
	TopKSkills int `yaml:"top_k_skills" validate:"gte=0"`

	// WorkerShutdownTimeout bounds how long Shutdown waits for the worker.
	WorkerShutdownTimeout Duration `yaml:"worker_shutdown_timeout"`

	// QueueSize is the learning event queue capacity. A full queue falls
	// back to synchronous processing, never a dropped event.
	QueueSize int `yaml:"queue_size" validate:"gt=0"`

	// PollInterval bounds how long a stop request can go unobserved by
	// the worker.
	PollInterval Duration `yaml:"poll_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:               true,
		StoragePath:           ".skillforge/skills.json",
		AsyncLearning:         true,
		MaxSkills:             50,
		MaxTokens:             4096,
		PruneThreshold:        0,
		DeduplicationEnabled:  true,
		SimilarityThreshold:   0.85,
		TopKSkills:            0,
		WorkerShutdownTimeout: Duration(5 * time.Second),
		QueueSize:             100,
		PollInterval:          Duration(100 * time.Millisecond),
	}
}

var validate = validator.New()

// Validate checks that the config has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "invalid engine config")
	}
	if c.WorkerShutdownTimeout <= 0 {
		return errors.New(errors.ValidationFailed, "worker_shutdown_timeout must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New(errors.ValidationFailed, "poll_interval must be positive")
	}
	return nil
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, errors.ResourceNotFound, "failed to read config file"),
			errors.Fields{"path": path})
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
			errors.Fields{"path": path})
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
