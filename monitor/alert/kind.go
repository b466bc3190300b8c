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

// Package alert is the alerting core: threshold evaluation, per-kind
// cooldown suppression and report composition. Nothing in here does I/O.
package alert

import (
	"fmt"
	"strings"

	"hostwatch/pkg/hwerrors"
)

// Kind identifies an alert and keys its cooldown state.
type Kind int

const (
	DiskSpace Kind = iota
	Memory
	Temperature

	numKinds
)

// AllKinds lists every alert kind in a fixed order.
var AllKinds = []Kind{DiskSpace, Memory, Temperature}

func (k Kind) String() string {
	switch k {
	case DiskSpace:
		return "disk"
	case Memory:
		return "memory"
	case Temperature:
		return "temperature"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// Subject is the fixed notification subject for the kind.
func (k Kind) Subject() string {
	switch k {
	case DiskSpace:
		return "Disk Space Alert"
	case Memory:
		return "Memory Usage Alert"
	case Temperature:
		return "Temperature Alert"
	default:
		return "Host Alert"
	}
}

// ParseKind accepts the String form plus a few aliases used in config files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disk", "disk_space", "diskspace":
		return DiskSpace, nil
	case "memory", "mem", "ram":
		return Memory, nil
	case "temperature", "temp", "sensor", "sensors":
		return Temperature, nil
	default:
		return 0, fmt.Errorf("%w: %q", hwerrors.ErrUnknownKind, s)
	}
}
