// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sysmon

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/sirupsen/logrus"
)

// Stats are the values shown on the data lines.
type Stats struct {
	CPUPercent int
	RAMBytes   uint64
}

// StaticStats is what the reference screen shows: 42% CPU, 1.2G RAM.
var StaticStats = Stats{CPUPercent: 42, RAMBytes: 1288490189}

// CPULine is the first data line.
func (s Stats) CPULine() string {
	return fmt.Sprintf("> CPU: %d%%", s.CPUPercent)
}

// RAMLine is the second data line, in GiB.
func (s Stats) RAMLine() string {
	return fmt.Sprintf("> RAM: %.1fG", float64(s.RAMBytes)/(1<<30))
}

// HostStats samples the host CPU usage over 200ms and its used memory.
func HostStats(ctx context.Context) (Stats, error) {
	pct, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false)
	if err != nil {
		return Stats{}, fmt.Errorf("sysmon: cpu: %w", err)
	}
	if len(pct) == 0 {
		return Stats{}, fmt.Errorf("sysmon: cpu: no sample")
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("sysmon: mem: %w", err)
	}
	return Stats{CPUPercent: int(math.Round(pct[0])), RAMBytes: vm.Used}, nil
}

// ResolveStats returns the stats selected by cfg. A failed host sample falls
// back to StaticStats.
func ResolveStats(ctx context.Context, cfg *Config, log logrus.FieldLogger) Stats {
	if cfg.Stats != StatsHost {
		return StaticStats
	}
	s, err := HostStats(ctx)
	if err != nil {
		log.WithError(err).Warn("sysmon: using static stats")
		return StaticStats
	}
	return s
}
