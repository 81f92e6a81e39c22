// Package metrics reports exit-test counters and timings to a statsd agent.
// Collection is optional; a nil Scope is safe to use and does nothing.
package metrics

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/exitcheck/exitcheck/logger"
)

const (
	// Number of statsd commands buffered before being sent.
	statsdBufferLen = 10

	// The default port for dogstatsd.
	defaultStatsdPort = 8125
)

type Collector struct {
	config CollectorConfig
	logger logger.Logger
	client *statsd.Client
}

type CollectorConfig struct {
	Enabled    bool
	StatsdHost string
}

func NewCollector(l logger.Logger, c CollectorConfig) *Collector {
	return &Collector{
		config: c,
		logger: l,
	}
}

var portSuffixRegexp = regexp.MustCompile(`:\d+$`)

func (c *Collector) Start() error {
	if !c.config.Enabled {
		return nil
	}

	host := c.config.StatsdHost
	if !portSuffixRegexp.MatchString(host) {
		host += fmt.Sprintf(":%d", defaultStatsdPort)
	}

	c.logger.Info("Starting statsd metrics collection to %s", host)

	client, err := statsd.New(host,
		statsd.WithMaxMessagesPerPayload(statsdBufferLen),
		statsd.WithNamespace("exitcheck."),
	)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

func (c *Collector) Stop() error {
	if c.client == nil {
		return nil
	}
	c.logger.Info("Stopping metrics collection")
	return c.client.Close()
}

func (c *Collector) Scope(tags Tags) *Scope {
	return &Scope{
		Tags: tags,
		c:    c,
	}
}

type Scope struct {
	Tags Tags
	c    *Collector
}

// With returns a scope with more tags added.
func (s *Scope) With(tags Tags) *Scope {
	if s == nil {
		return nil
	}
	return &Scope{
		Tags: s.mergeTags(tags),
		c:    s.c,
	}
}

// Count tracks how many times something happened.
func (s *Scope) Count(name string, value int64, tags ...Tags) {
	if s == nil || s.c.client == nil {
		return
	}

	mergedTags := s.mergeTags(tags...).StringSlice()
	s.c.logger.Debug("Metrics count %s=%v %v", name, value, mergedTags)

	if err := s.c.client.Count(name, value, mergedTags, 1); err != nil {
		s.c.logger.Error("Metrics count failed: %v", err)
	}
}

// Timing sends timing information.
func (s *Scope) Timing(name string, value time.Duration, tags ...Tags) {
	if s == nil || s.c.client == nil {
		return
	}

	mergedTags := s.mergeTags(tags...).StringSlice()
	s.c.logger.Debug("Metrics timing %s=%v %v", name, value, mergedTags)

	if err := s.c.client.Timing(name, value, mergedTags, 1); err != nil {
		s.c.logger.Error("Metrics timing failed: %v", err)
	}
}

func (s *Scope) mergeTags(tagsSlice ...Tags) Tags {
	merged := Tags{}
	for k, v := range s.Tags {
		merged[formatName(k)] = formatName(v)
	}
	for _, tags := range tagsSlice {
		for k, v := range tags {
			merged[formatName(k)] = formatName(v)
		}
	}
	return merged
}

type Tags map[string]string

func (tags Tags) StringSlice() []string {
	var stringSlice []string
	for k, v := range tags {
		if k != "" && v != "" {
			stringSlice = append(stringSlice, formatName(k)+":"+formatName(v))
		}
	}
	sort.Strings(stringSlice)
	return stringSlice
}

// Statsd allows '.', '_' and alphanumerics only. If we don't validate this
// here then the agent error logs can fill up disk really quickly.
var nameRegex = regexp.MustCompile(`[^\._a-zA-Z0-9]+`)

func formatName(name string) string {
	return nameRegex.ReplaceAllString(name, "_")
}
