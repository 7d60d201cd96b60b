package crew

import (
	"io/ioutil"
	"time"

	"github.com/jsccast/yaml"
)

// Conf provides some basic Crew parameters.
type Conf struct {
	// PollInterval is the longest an agent waits before trying a
	// MAYBE evaluation again.
	PollInterval time.Duration `json:"pollInterval,omitempty" yaml:"pollInterval,omitempty"`

	// Verbose turns on logging.
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	// LogLimit is the number of events the event log keeps.  Zero
	// means no limit.
	LogLimit int `json:"logLimit,omitempty" yaml:"logLimit,omitempty"`

	// WakeOnMail, if true, also wakes a waiting agent when a letter
	// is posted.
	WakeOnMail bool `json:"wakeOnMail,omitempty" yaml:"wakeOnMail,omitempty"`
}

// DefaultConf returns a Conf with the default values.
func DefaultConf() *Conf {
	return &Conf{
		PollInterval: 10 * time.Millisecond,
		LogLimit:     1000,
		WakeOnMail:   true,
	}
}

// ReadConf reads a YAML (or JSON) configuration.  Unspecified
// properties get their default values.
func ReadConf(filename string) (*Conf, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConf(bs)
}

// ParseConf parses a YAML (or JSON) configuration.
func ParseConf(bs []byte) (*Conf, error) {
	conf := DefaultConf()
	if err := yaml.Unmarshal(bs, conf); err != nil {
		return nil, err
	}
	if conf.PollInterval <= 0 {
		conf.PollInterval = DefaultConf().PollInterval
	}
	return conf, nil
}
