package telemetry

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"
)

// hostStats is the slice of the host-metrics facility the collector reads.
// Broken out as an interface so tests can substitute deterministic values.
type hostStats interface {
	VirtualMemory() (*mem.VirtualMemoryStat, error)
	CPUPercent(interval time.Duration) (float64, error)
	CPUCount() (int, error)
	DiskUsage(path string) (*disk.UsageStat, error)
	BootTime() (uint64, error)
	NetIOCounters() (*net.IOCountersStat, error)
	SensorTemperatures() ([]sensors.TemperatureStat, error)
}

// psutilStats implements hostStats against the live system.
type psutilStats struct{}

func (psutilStats) VirtualMemory() (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemory()
}

func (psutilStats) CPUPercent(interval time.Duration) (float64, error) {
	percents, err := cpu.Percent(interval, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no cpu percent sample")
	}
	return percents[0], nil
}

func (psutilStats) CPUCount() (int, error) {
	return cpu.Counts(true)
}

func (psutilStats) DiskUsage(path string) (*disk.UsageStat, error) {
	return disk.Usage(path)
}

func (psutilStats) BootTime() (uint64, error) {
	return host.BootTime()
}

func (psutilStats) NetIOCounters() (*net.IOCountersStat, error) {
	counters, err := net.IOCounters(false)
	if err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return nil, fmt.Errorf("no network counters")
	}
	return &counters[0], nil
}

func (psutilStats) SensorTemperatures() ([]sensors.TemperatureStat, error) {
	return sensors.SensorsTemperatures()
}
