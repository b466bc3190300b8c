// Copyright 2025 The Hostwatch Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hostwatch/monitor/alert"
	"hostwatch/pkg/log"
)

// Publisher is the part of pkg/redis.Client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
	PushCapped(ctx context.Context, key string, payload []byte, size int64) error
	Ping(ctx context.Context) error
}

var (
	_ Notifier = (*RedisNotifier)(nil)
	_ Prober   = (*RedisNotifier)(nil)
)

type RedisConfig struct {
	Channel  string
	ListKey  string
	ListSize int64
	Hostname string
}

// Message is the JSON document published for every report.
type Message struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Host    string    `json:"host,omitempty"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// RedisNotifier publishes reports on a channel and, when ListKey is set,
// keeps the most recent ones in a capped list.
type RedisNotifier struct {
	client Publisher
	cfg    RedisConfig
	now    func() time.Time
	logger *log.Logger
}

func NewRedisNotifier(client Publisher, cfg RedisConfig) *RedisNotifier {
	if cfg.Channel == "" {
		cfg.Channel = "hostwatch:alerts"
	}
	return &RedisNotifier{client: client, cfg: cfg, now: time.Now, logger: log.GetLogger("redis-notifier")}
}

func (n *RedisNotifier) Name() string {
	return "redis"
}

func (n *RedisNotifier) Deliver(ctx context.Context, r alert.Report) error {
	payload, err := json.Marshal(Message{
		ID:      r.ID,
		Kind:    r.Kind.String(),
		Host:    n.cfg.Hostname,
		Subject: r.Subject,
		Body:    r.Body,
		SentAt:  n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	receivers, err := n.client.Publish(ctx, n.cfg.Channel, payload)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", n.cfg.Channel, err)
	}
	if n.cfg.ListKey != "" {
		if err := n.client.PushCapped(ctx, n.cfg.ListKey, payload, n.cfg.ListSize); err != nil {
			return fmt.Errorf("push to %s: %w", n.cfg.ListKey, err)
		}
	}

	n.logger.Verbosef("published %s to %s (%d subscribers)", r.ID, n.cfg.Channel, receivers)
	return nil
}

func (n *RedisNotifier) Probe(ctx context.Context) error {
	return n.client.Ping(ctx)
}
