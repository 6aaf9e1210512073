// Package telemetry collects host health for the system endpoints. Every
// source degrades independently: a missing sensor, binary, or facility
// results in an omitted field, never an error to the caller.
package telemetry

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/command"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
)

const (
	defaultThermalPath = "/sys/class/thermal/thermal_zone0/temp"
	defaultCPUFreqDir  = "/sys/devices/system/cpu/cpu0/cpufreq"

	// vcgencmd talks to the VideoCore firmware and can wedge on broken
	// setups, so both GPU probes carry a hard timeout.
	vcgencmdTimeout = 2 * time.Second

	// Sampling window for the CPU utilization reading.
	cpuSampleInterval = 100 * time.Millisecond

	celsius = "celsius"
)

// Collector assembles telemetry snapshots. Stateless between calls; safe
// for concurrent use.
type Collector struct {
	caps   Capabilities
	exec   command.Executor
	stats  hostStats
	logger logging.Logger

	// Overridable in tests
	thermalPath string
	cpuFreqDir  string
}

// NewCollector creates a collector with the given startup capabilities.
func NewCollector(caps Capabilities, exec command.Executor) *Collector {
	return &Collector{
		caps:        caps,
		exec:        exec,
		stats:       psutilStats{},
		logger:      logging.GetLogger("telemetry"),
		thermalPath: defaultThermalPath,
		cpuFreqDir:  defaultCPUFreqDir,
	}
}

// Collect gathers a full snapshot. It never fails; sources that cannot be
// read are left out of the result.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	var snap Snapshot

	if temp := c.cpuTemperature(); temp.ok() {
		rounded := round1(temp.value)
		snap.CPUTemperature = &rounded
		snap.CPUTemperatureUnit = celsius
	} else {
		c.logger.Debug("Telemetry source unavailable", "source", "cpu_temperature", "error", temp.err)
	}

	if c.caps.HostMetrics {
		if pct := probeOf(c.stats.CPUPercent(cpuSampleInterval)); pct.ok() {
			rounded := round1(pct.value)
			snap.CPUPercent = &rounded
		} else {
			c.logger.Debug("Telemetry source unavailable", "source", "cpu_percent", "error", pct.err)
		}

		if count := probeOf(c.stats.CPUCount()); count.ok() {
			snap.CPUCount = count.ptr()
		} else {
			c.logger.Debug("Telemetry source unavailable", "source", "cpu_count", "error", count.err)
		}

		if freq := c.cpuFrequency(); freq.ok() {
			snap.CPUFreq = freq.ptr()
		} else {
			c.logger.Debug("Telemetry source unavailable", "source", "cpu_freq", "error", freq.err)
		}

		if memory := c.memory(); memory.ok() {
			snap.Memory = memory.ptr()
		} else {
			c.logger.Debug("Telemetry source unavailable", "source", "memory", "error", memory.err)
		}

		if du := c.disk(); du.ok() {
			snap.Disk = du.ptr()
		} else {
			c.logger.Debug("Telemetry source unavailable", "source", "disk", "error", du.err)
		}

		if up := c.uptime(); up.ok() {
			snap.Uptime = up.ptr()
		} else {
			c.logger.Debug("Telemetry source unavailable", "source", "uptime", "error", up.err)
		}

		if counters := c.network(); counters.ok() {
			snap.Network = counters.ptr()
		} else {
			c.logger.Debug("Telemetry source unavailable", "source", "network", "error", counters.err)
		}
	}

	if temp := c.gpuTemperature(ctx); temp.ok() {
		rounded := round1(temp.value)
		snap.GPUTemperature = &rounded
		snap.GPUTemperatureUnit = celsius
	} else {
		c.logger.Debug("Telemetry source unavailable", "source", "gpu_temperature", "error", temp.err)
	}

	if gpuMem := c.gpuMemory(ctx); gpuMem.ok() {
		snap.GPUMemory = gpuMem.value
	} else {
		c.logger.Debug("Telemetry source unavailable", "source", "gpu_memory", "error", gpuMem.err)
	}

	return snap
}

// TemperatureOnly gathers just the two temperature sources for the
// lightweight polling endpoint.
func (c *Collector) TemperatureOnly(ctx context.Context) TemperatureSnapshot {
	snap := TemperatureSnapshot{Units: celsius}

	if temp := c.cpuTemperature(); temp.ok() {
		rounded := round1(temp.value)
		snap.CPUTemperature = &rounded
	}
	if temp := c.gpuTemperature(ctx); temp.ok() {
		rounded := round1(temp.value)
		snap.GPUTemperature = &rounded
	}

	return snap
}

// cpuTemperature reads the SoC thermal zone directly and falls back to the
// host-metrics sensor enumeration when the sysfs node is missing.
func (c *Collector) cpuTemperature() probe[float64] {
	if v, err := readMillidegrees(c.thermalPath); err == nil {
		return probeOf(v, nil)
	}

	if !c.caps.HostMetrics {
		return probe[float64]{err: fmt.Errorf("thermal zone unreadable and host metrics unavailable")}
	}

	temps, err := c.stats.SensorTemperatures()
	if err != nil {
		return probe[float64]{err: err}
	}
	if len(temps) == 0 {
		return probe[float64]{err: fmt.Errorf("no temperature sensors reported")}
	}
	return probeOf(temps[0].Temperature, nil)
}

func (c *Collector) cpuFrequency() probe[CPUFrequency] {
	current, err := readKHzAsMHz(filepath.Join(c.cpuFreqDir, "scaling_cur_freq"))
	if err != nil {
		return probe[CPUFrequency]{err: err}
	}
	minFreq, err := readKHzAsMHz(filepath.Join(c.cpuFreqDir, "cpuinfo_min_freq"))
	if err != nil {
		return probe[CPUFrequency]{err: err}
	}
	maxFreq, err := readKHzAsMHz(filepath.Join(c.cpuFreqDir, "cpuinfo_max_freq"))
	if err != nil {
		return probe[CPUFrequency]{err: err}
	}
	return probeOf(CPUFrequency{Current: current, Min: minFreq, Max: maxFreq}, nil)
}

func (c *Collector) memory() probe[MemoryUsage] {
	vm, err := c.stats.VirtualMemory()
	if err != nil {
		return probe[MemoryUsage]{err: err}
	}
	if vm.Total == 0 {
		return probe[MemoryUsage]{err: fmt.Errorf("zero total memory reported")}
	}
	return probeOf(MemoryUsage{
		Total:     round2(bytesToGB(vm.Total)),
		Available: round2(bytesToGB(vm.Available)),
		Used:      round2(bytesToGB(vm.Used)),
		Percent:   round1(float64(vm.Used) / float64(vm.Total) * 100),
	}, nil)
}

func (c *Collector) disk() probe[DiskUsage] {
	du, err := c.stats.DiskUsage("/")
	if err != nil {
		return probe[DiskUsage]{err: err}
	}
	return probeOf(DiskUsage{
		Total:   round2(bytesToGB(du.Total)),
		Used:    round2(bytesToGB(du.Used)),
		Free:    round2(bytesToGB(du.Free)),
		Percent: round1(du.UsedPercent),
	}, nil)
}

func (c *Collector) uptime() probe[Uptime] {
	boot, err := c.stats.BootTime()
	if err != nil {
		return probe[Uptime]{err: err}
	}
	total := time.Now().Unix() - int64(boot)
	if total < 0 {
		total = 0
	}
	return probeOf(uptimeFromSeconds(total), nil)
}

func (c *Collector) network() probe[NetworkCounters] {
	counters, err := c.stats.NetIOCounters()
	if err != nil {
		return probe[NetworkCounters]{err: err}
	}
	return probeOf(NetworkCounters{
		BytesSent:   counters.BytesSent,
		BytesRecv:   counters.BytesRecv,
		PacketsSent: counters.PacketsSent,
		PacketsRecv: counters.PacketsRecv,
	}, nil)
}

func (c *Collector) gpuTemperature(ctx context.Context) probe[float64] {
	out, err := c.exec.RunWithTimeout(ctx, []string{"vcgencmd", "measure_temp"}, vcgencmdTimeout)
	if err != nil {
		return probe[float64]{err: err}
	}
	return probeOf(parseVcgencmdTemp(out))
}

func (c *Collector) gpuMemory(ctx context.Context) probe[string] {
	out, err := c.exec.RunWithTimeout(ctx, []string{"vcgencmd", "get_mem", "gpu"}, vcgencmdTimeout)
	if err != nil {
		return probe[string]{err: err}
	}
	value := strings.TrimPrefix(strings.TrimSpace(out), "gpu=")
	if value == "" {
		return probe[string]{err: fmt.Errorf("empty gpu memory reading")}
	}
	return probeOf(value, nil)
}

// parseVcgencmdTemp parses firmware output of the form "temp=41.2'C".
func parseVcgencmdTemp(out string) (float64, error) {
	s := strings.TrimSpace(out)
	s = strings.TrimPrefix(s, "temp=")
	s = strings.TrimSuffix(s, "'C")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected vcgencmd output %q", strings.TrimSpace(out))
	}
	return v, nil
}

// readMillidegrees reads a thermal zone node holding millidegrees Celsius.
func readMillidegrees(path string) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("unexpected thermal reading %q", strings.TrimSpace(string(data)))
	}
	return float64(milli) / 1000.0, nil
}

// readKHzAsMHz reads a cpufreq node holding kHz and rounds to whole MHz.
func readKHzAsMHz(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	khz, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("unexpected cpufreq reading %q", strings.TrimSpace(string(data)))
	}
	return int(math.Round(float64(khz) / 1000.0)), nil
}
