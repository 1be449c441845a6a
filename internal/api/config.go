package api

import "time"

type Config struct {
	// StatePushInterval is how often websocket clients receive a full state
	// frame in addition to market and news events.
	StatePushInterval time.Duration

	RequestCapacity int // pending exercise requests kept by the desk
	ClientBuffer    int // per-websocket outbound queue

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.StatePushInterval <= 0 {
		c.StatePushInterval = time.Second
	}
	if c.RequestCapacity <= 0 {
		c.RequestCapacity = 100
	}
	if c.ClientBuffer <= 0 {
		c.ClientBuffer = 64
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	return c
}
