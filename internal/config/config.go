package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths     PathsConfig     `mapstructure:"paths"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Vocab     VocabConfig     `mapstructure:"vocab"`
	Build     BuildConfig     `mapstructure:"build"`
	Encode    EncodeConfig    `mapstructure:"encode"`
	LogLevel  string          `mapstructure:"log_level"`
}

type PathsConfig struct {
	TrainData      string `mapstructure:"train_data"`
	TestData       string `mapstructure:"test_data"`
	Stopwords      string `mapstructure:"stopwords"`
	Dictionary     string `mapstructure:"dictionary"`
	UserDictionary string `mapstructure:"user_dictionary"`
	OutputDir      string `mapstructure:"output_dir"`
}

// EmbeddingConfig parameterises the skip-gram trainer.
type EmbeddingConfig struct {
	Dim          int     `mapstructure:"dim"`
	Epochs       int     `mapstructure:"epochs"`
	Window       int     `mapstructure:"window"`
	MinCount     int     `mapstructure:"min_count"`
	Negative     int     `mapstructure:"negative"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Seed         int64   `mapstructure:"seed"`
}

type VocabConfig struct {
	// MaxSize caps the final vocabulary, reserved tokens included. 0 disables the cap.
	MaxSize int `mapstructure:"max_size"`
}

type BuildConfig struct {
	Workers int `mapstructure:"workers"`
}

// EncodeConfig holds the sequence lengths used when reloading tensors and
// when encoding single sentences outside a build.
type EncodeConfig struct {
	MaxEncLen int `mapstructure:"max_enc_len"`
	MaxDecLen int `mapstructure:"max_dec_len"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			TrainData:      "data/train.csv",
			TestData:       "data/test.csv",
			Stopwords:      "data/stopwords.txt",
			Dictionary:     "data/dictionary.txt",
			UserDictionary: "data/user_dict.txt",
			OutputDir:      "out",
		},
		Embedding: EmbeddingConfig{
			Dim:          300,
			Epochs:       5,
			Window:       5,
			MinCount:     5,
			Negative:     5,
			LearningRate: 0.025,
			Seed:         1,
		},
		Vocab: VocabConfig{
			MaxSize: 0,
		},
		Build: BuildConfig{
			Workers: runtime.NumCPU(),
		},
		Encode: EncodeConfig{
			MaxEncLen: 200,
			MaxDecLen: 50,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("paths-train-data", defaults.Paths.TrainData, "Path to the training CSV table")
	fs.String("paths-test-data", defaults.Paths.TestData, "Path to the test CSV table")
	fs.String("paths-stopwords", defaults.Paths.Stopwords, "Path to the stopword list (one per line)")
	fs.String("paths-dictionary", defaults.Paths.Dictionary, "Path to the base segmentation dictionary")
	fs.String("paths-user-dictionary", defaults.Paths.UserDictionary, "Path to the supplemental domain dictionary")
	fs.String("paths-output-dir", defaults.Paths.OutputDir, "Directory receiving build artifacts")
	fs.Int("embedding-dim", defaults.Embedding.Dim, "Word vector dimensionality")
	fs.Int("embedding-epochs", defaults.Embedding.Epochs, "Embedding training epochs")
	fs.Int("embedding-window", defaults.Embedding.Window, "Skip-gram context window")
	fs.Int("embedding-min-count", defaults.Embedding.MinCount, "Drop words seen fewer times than this")
	fs.Int("embedding-negative", defaults.Embedding.Negative, "Negative samples per positive pair")
	fs.Float64("embedding-learning-rate", defaults.Embedding.LearningRate, "Initial SGD learning rate")
	fs.Int64("embedding-seed", defaults.Embedding.Seed, "Random seed for embedding initialisation")
	fs.Int("vocab-max-size", defaults.Vocab.MaxSize, "Cap on final vocabulary size including reserved tokens (0 = no cap)")
	fs.Int("workers", defaults.Build.Workers, "Parallel cleaning workers")
	fs.Int("max-enc-len", defaults.Encode.MaxEncLen, "Encoder input length for reload and single-sentence encoding")
	fs.Int("max-dec-len", defaults.Encode.MaxDecLen, "Decoder target length for reload")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("DIALOGPREP")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("dialogprep")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Build.Workers < 1 {
		cfg.Build.Workers = runtime.NumCPU()
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.train_data", c.Paths.TrainData)
	v.SetDefault("paths.test_data", c.Paths.TestData)
	v.SetDefault("paths.stopwords", c.Paths.Stopwords)
	v.SetDefault("paths.dictionary", c.Paths.Dictionary)
	v.SetDefault("paths.user_dictionary", c.Paths.UserDictionary)
	v.SetDefault("paths.output_dir", c.Paths.OutputDir)
	v.SetDefault("embedding.dim", c.Embedding.Dim)
	v.SetDefault("embedding.epochs", c.Embedding.Epochs)
	v.SetDefault("embedding.window", c.Embedding.Window)
	v.SetDefault("embedding.min_count", c.Embedding.MinCount)
	v.SetDefault("embedding.negative", c.Embedding.Negative)
	v.SetDefault("embedding.learning_rate", c.Embedding.LearningRate)
	v.SetDefault("embedding.seed", c.Embedding.Seed)
	v.SetDefault("vocab.max_size", c.Vocab.MaxSize)
	v.SetDefault("build.workers", c.Build.Workers)
	v.SetDefault("encode.max_enc_len", c.Encode.MaxEncLen)
	v.SetDefault("encode.max_dec_len", c.Encode.MaxDecLen)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("paths.train_data", "paths-train-data")
	v.RegisterAlias("paths.test_data", "paths-test-data")
	v.RegisterAlias("paths.stopwords", "paths-stopwords")
	v.RegisterAlias("paths.dictionary", "paths-dictionary")
	v.RegisterAlias("paths.user_dictionary", "paths-user-dictionary")
	v.RegisterAlias("paths.output_dir", "paths-output-dir")
	v.RegisterAlias("embedding.dim", "embedding-dim")
	v.RegisterAlias("embedding.epochs", "embedding-epochs")
	v.RegisterAlias("embedding.window", "embedding-window")
	v.RegisterAlias("embedding.min_count", "embedding-min-count")
	v.RegisterAlias("embedding.negative", "embedding-negative")
	v.RegisterAlias("embedding.learning_rate", "embedding-learning-rate")
	v.RegisterAlias("embedding.seed", "embedding-seed")
	v.RegisterAlias("vocab.max_size", "vocab-max-size")
	v.RegisterAlias("build.workers", "workers")
	v.RegisterAlias("encode.max_enc_len", "max-enc-len")
	v.RegisterAlias("encode.max_dec_len", "max-dec-len")
	v.RegisterAlias("log_level", "log-level")
}
