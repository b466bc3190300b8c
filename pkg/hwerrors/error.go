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

package hwerrors

import "errors"

var (
	ErrMissingConfig  = errors.New("required config key is missing")
	ErrInvalidConfig  = errors.New("invalid config value")
	ErrNoNotifier     = errors.New("no notifier configured, set email_* keys or redis.addr")
	ErrUnknownKind    = errors.New("unknown alert kind")
	ErrNoSensorData   = errors.New("no temperature readings available")
	ErrQueueFull      = errors.New("task queue is full")
	ErrDeliveryFailed = errors.New("alert delivery failed")
)
