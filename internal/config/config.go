package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every tunable of a synchronization run. It is loaded
// once and passed by value to the component constructors; nothing
// reads ambient process state after Load returns.
type Config struct {
	Phrase struct {
		MaxWords     int     `mapstructure:"max_words"`
		GapThreshold float64 `mapstructure:"gap_threshold"`
		Fraction     float64 `mapstructure:"fraction"`
	} `mapstructure:"phrase"`
	Pitch struct {
		ReferenceHz float64 `mapstructure:"reference_hz"`
		Min         int     `mapstructure:"min"`
		Max         int     `mapstructure:"max"`
		Neutral     int     `mapstructure:"neutral"`
	} `mapstructure:"pitch"`
	Beat struct {
		Resolution int `mapstructure:"resolution"`
	} `mapstructure:"beat"`
	Output struct {
		Creator string `mapstructure:"creator"`
	} `mapstructure:"output"`
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
}

// Load reads configuration from config.yaml and USG_* environment
// variables, applying the defaults the original tool shipped with.
func Load() Config {
	v := viper.New()
	v.SetEnvPrefix("USG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register keys
	v.BindEnv("phrase.max_words")
	v.BindEnv("phrase.gap_threshold")
	v.BindEnv("phrase.fraction")
	v.BindEnv("pitch.reference_hz")
	v.BindEnv("pitch.min")
	v.BindEnv("pitch.max")
	v.BindEnv("pitch.neutral")
	v.BindEnv("beat.resolution")
	v.BindEnv("output.creator")
	v.BindEnv("server.port")

	// Defaults
	v.SetDefault("phrase.max_words", 7)
	v.SetDefault("phrase.gap_threshold", 4.0)
	v.SetDefault("phrase.fraction", 0.25)
	v.SetDefault("pitch.reference_hz", 261.63) // C4
	v.SetDefault("pitch.min", -60)
	v.SetDefault("pitch.max", 67)
	v.SetDefault("pitch.neutral", 0)
	v.SetDefault("beat.resolution", 4)
	v.SetDefault("output.creator", "ultrastar-generator")
	v.SetDefault("server.port", 8080)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("warning: config error: %s", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("unable to decode config: %v", err)
	}
	return cfg
}

// Validate rejects values the segmenter and assembler cannot work with.
func (c Config) Validate() error {
	if c.Phrase.MaxWords < 1 {
		return fmt.Errorf("phrase.max_words must be positive, got %d", c.Phrase.MaxWords)
	}
	if c.Phrase.GapThreshold <= 0 {
		return fmt.Errorf("phrase.gap_threshold must be positive, got %v", c.Phrase.GapThreshold)
	}
	if c.Phrase.Fraction <= 0 || c.Phrase.Fraction >= 1 {
		return fmt.Errorf("phrase.fraction must be in (0,1), got %v", c.Phrase.Fraction)
	}
	if c.Pitch.ReferenceHz <= 0 {
		return fmt.Errorf("pitch.reference_hz must be positive, got %v", c.Pitch.ReferenceHz)
	}
	if c.Pitch.Min > c.Pitch.Max {
		return fmt.Errorf("pitch range inverted: [%d, %d]", c.Pitch.Min, c.Pitch.Max)
	}
	if c.Beat.Resolution < 1 {
		return fmt.Errorf("beat.resolution must be at least 1, got %d", c.Beat.Resolution)
	}
	return nil
}
