package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPollConfig = errors.New("invalid poll config")

const DefaultRefreshIntervalMs int64 = 30000

// PollConfig controls the automatic price refresh timer.
type PollConfig struct {
	AutoRefreshEnabled bool  `json:"autoRefreshEnabled" yaml:"autoRefreshEnabled"`
	RefreshIntervalMs  int64 `json:"refreshIntervalMs" yaml:"refreshIntervalMs"`
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		AutoRefreshEnabled: false,
		RefreshIntervalMs:  DefaultRefreshIntervalMs,
	}
}

func (c PollConfig) Validate() error {
	if c.RefreshIntervalMs <= 0 {
		return fmt.Errorf("%w: refreshIntervalMs must be positive, got %d", ErrInvalidPollConfig, c.RefreshIntervalMs)
	}
	return nil
}

func (c PollConfig) Interval() time.Duration {
	return time.Duration(c.RefreshIntervalMs) * time.Millisecond
}

// PollConfigPatch carries a partial update; nil fields keep their value.
type PollConfigPatch struct {
	AutoRefreshEnabled *bool  `json:"autoRefreshEnabled,omitempty" yaml:"autoRefreshEnabled,omitempty"`
	RefreshIntervalMs  *int64 `json:"refreshIntervalMs,omitempty" yaml:"refreshIntervalMs,omitempty"`
}

func (c PollConfig) Apply(patch PollConfigPatch) PollConfig {
	if patch.AutoRefreshEnabled != nil {
		c.AutoRefreshEnabled = *patch.AutoRefreshEnabled
	}
	if patch.RefreshIntervalMs != nil {
		c.RefreshIntervalMs = *patch.RefreshIntervalMs
	}
	return c
}
