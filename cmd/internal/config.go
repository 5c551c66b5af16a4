package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config defines the command's configuration.
type Config struct {
	Features     []string `json:"features"`
	Classifier   string   `json:"classifier"`
	LearningRate float64  `json:"learningRate"`
	Ntrain       int      `json:"ntrain"`
	Hidden       int      `json:"hidden"`
	Epochs       int      `json:"epochs"`
	Batch        int      `json:"batch"`
	Split        float64  `json:"split"`
	Seed         int      `json:"seed"`
	Normalize    bool     `json:"normalize"`
}

// ReadConfig reads the config from a json, toml or yaml file.  If the
// name is empty, an empty configuration is returned.  If name has the
// prefix '{' and the suffix '}' the name is interpreted as a json
// string and parsed accordingly.
func ReadConfig(name string) (*Config, error) {
	var config Config
	if name == "" {
		return &config, nil
	}
	if strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}") {
		r := strings.NewReader(name)
		if err := json.NewDecoder(r).Decode(&config); err != nil {
			return nil, fmt.Errorf("readConfig %s: %v", name, err)
		}
		return &config, nil
	}
	is, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("readConfig %s: %v", name, err)
	}
	defer is.Close()
	switch {
	case strings.HasSuffix(name, ".toml"):
		if _, err := toml.DecodeReader(is, &config); err != nil {
			return nil, fmt.Errorf("readConfig %s: %v", name, err)
		}
	case strings.HasSuffix(name, ".yml"), strings.HasSuffix(name, ".yaml"):
		if err := yaml.NewDecoder(is).Decode(&config); err != nil {
			return nil, fmt.Errorf("readConfig %s: %v", name, err)
		}
	default:
		if err := json.NewDecoder(is).Decode(&config); err != nil {
			return nil, fmt.Errorf("readConfig %s: %v", name, err)
		}
	}
	return &config, nil
}

// Set updates a single configuration value from a `key=value`
// assignment.  Keys match the configuration file's field names in any
// case.
func (c *Config) Set(kv string) error {
	pos := strings.Index(kv, "=")
	if pos == -1 {
		return fmt.Errorf("set %s: missing =", kv)
	}
	key := strings.ToLower(strings.TrimSpace(kv[:pos]))
	val := strings.TrimSpace(kv[pos+1:])
	switch key {
	case "features":
		c.Features = strings.Split(val, ",")
	case "classifier":
		c.Classifier = val
	case "learningrate":
		return setFloat(&c.LearningRate, key, val)
	case "ntrain":
		return setInt(&c.Ntrain, key, val)
	case "hidden":
		return setInt(&c.Hidden, key, val)
	case "epochs":
		return setInt(&c.Epochs, key, val)
	case "batch":
		return setInt(&c.Batch, key, val)
	case "split":
		return setFloat(&c.Split, key, val)
	case "seed":
		return setInt(&c.Seed, key, val)
	case "normalize":
		return setBool(&c.Normalize, key, val)
	default:
		return fmt.Errorf("set %s: no such key", key)
	}
	return nil
}

func setInt(dest *int, key, val string) error {
	i, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("set %s: %v", key, err)
	}
	*dest = i
	return nil
}

func setFloat(dest *float64, key, val string) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("set %s: %v", key, err)
	}
	*dest = f
	return nil
}

func setBool(dest *bool, key, val string) error {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("set %s: %v", key, err)
	}
	*dest = b
	return nil
}

// setDefaults fills in default values for unset configuration values.
func (c *Config) setDefaults() {
	if c.Classifier == "" {
		c.Classifier = "lr"
	}
	if c.LearningRate == 0 {
		c.LearningRate = 0.1
	}
	if c.Ntrain == 0 {
		c.Ntrain = 1000
	}
	if c.Hidden == 0 {
		c.Hidden = 10
	}
	if c.Epochs == 0 {
		c.Epochs = 100
	}
	if c.Batch == 0 {
		c.Batch = 1024
	}
	if c.Split == 0 {
		c.Split = 0.2
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
	if len(c.Features) == 0 {
		c.Features = []string{"Bias", "ValidEmail", "FieldSum", "FieldMax"}
	}
}

// Iterations returns the number of training iterations for the
// configured classifier.
func (c *Config) Iterations() int {
	if c.Classifier == "nn" {
		return c.Epochs
	}
	return c.Ntrain
}

// UpdateInConfig updates the value in dest with val if the according
// value is not the zero-type for the underlying type.  Dest must be a
// pointer type to either string, int, float64 or bool.  Otherwise the
// function panics.
func UpdateInConfig(dest, val interface{}) {
	switch dest.(type) {
	case *string:
		v := val.(string)
		if val != "" {
			(*dest.(*string)) = v
		}
	case *int:
		v := val.(int)
		if v != 0 {
			(*dest.(*int)) = v
		}
	case *float64:
		v := val.(float64)
		if v != 0 {
			(*dest.(*float64)) = v
		}
	case *bool:
		v := val.(bool)
		if v {
			(*dest.(*bool)) = v
		}
	default:
		panic("bad type")
	}
}
