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

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb  *redis.Client
	addr string
}

type ClientConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewClient creates a client. Connections are made lazily, use Ping to check
// the server is reachable.
func NewClient(cfg *ClientConfig) *Client {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	return &Client{rdb: redis.NewClient(opts), addr: cfg.Addr}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Publish sends payload on channel and returns the number of subscribers
// that received it.
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) (int64, error) {
	return c.rdb.Publish(ctx, channel, payload).Result()
}

// PushCapped prepends payload to the list at key and trims it to size entries.
func (c *Client) PushCapped(ctx context.Context, key string, payload []byte, size int64) error {
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, payload)
	if size > 0 {
		pipe.LTrim(ctx, key, 0, size-1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis %s: %w", c.addr, err)
	}
	return nil
}
