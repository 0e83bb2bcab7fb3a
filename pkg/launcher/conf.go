package launcher

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

const (
	envServerJar      = "_SERVER_JAR"
	envJavaBin        = "_JAVA_BIN"
	envConfigDir      = "_CONFIG_DIR"
	envHost           = "_HOST"
	envStartTimeout   = "_START_TIMEOUT_IN_MS"
	envPollInterval   = "_POLL_INTERVAL_IN_MS"
	defaultJavaBin    = "java"
	defaultHost       = "localhost"
	defaultTimeoutMS  = 60000
	defaultIntervalMS = 500
)

type Config struct {
	ServerJar      string
	JavaBin        string
	ConfigDir      string
	Host           string
	StartTimeoutMS int
	PollIntervalMS int
}

// NewConf reads launcher configuration from viper keys under the given env
// prefix, filling defaults for everything but the server jar.
func NewConf(envPrefix string) (*Config, error) {
	conf := &Config{
		ServerJar:      viper.GetString(envPrefix + envServerJar),
		JavaBin:        viper.GetString(envPrefix + envJavaBin),
		ConfigDir:      viper.GetString(envPrefix + envConfigDir),
		Host:           viper.GetString(envPrefix + envHost),
		StartTimeoutMS: viper.GetInt(envPrefix + envStartTimeout),
		PollIntervalMS: viper.GetInt(envPrefix + envPollInterval),
	}
	if err := conf.fillDefaults(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) fillDefaults() error {
	if c.ServerJar == "" {
		return fmt.Errorf("server jar path not configured")
	}
	if c.JavaBin == "" {
		c.JavaBin = defaultJavaBin
	}
	if c.ConfigDir == "" {
		c.ConfigDir = os.TempDir()
	}
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.StartTimeoutMS <= 0 {
		c.StartTimeoutMS = defaultTimeoutMS
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = defaultIntervalMS
	}
	return nil
}
