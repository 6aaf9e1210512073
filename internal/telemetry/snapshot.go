package telemetry

import "math"

// Snapshot is one collection of host telemetry. Every field is optional;
// a source that failed to read is simply absent, and the absence of one
// never suppresses another.
type Snapshot struct {
	CPUTemperature     *float64         `json:"cpu_temperature,omitempty" doc:"CPU temperature in degrees Celsius"`
	CPUTemperatureUnit string           `json:"cpu_temperature_unit,omitempty" enum:"celsius" doc:"Unit for cpu_temperature"`
	CPUPercent         *float64         `json:"cpu_percent,omitempty" doc:"CPU utilization percent over a short sample"`
	CPUCount           *int             `json:"cpu_count,omitempty" doc:"Logical CPU count"`
	CPUFreq            *CPUFrequency    `json:"cpu_freq,omitempty" doc:"CPU frequency in MHz"`
	Memory             *MemoryUsage     `json:"memory,omitempty" doc:"Memory usage in GB"`
	Disk               *DiskUsage       `json:"disk,omitempty" doc:"Root filesystem usage in GB"`
	Uptime             *Uptime          `json:"uptime,omitempty" doc:"Time since boot"`
	Network            *NetworkCounters `json:"network,omitempty" doc:"Aggregate network IO counters since boot"`
	GPUTemperature     *float64         `json:"gpu_temperature,omitempty" doc:"GPU temperature in degrees Celsius"`
	GPUTemperatureUnit string           `json:"gpu_temperature_unit,omitempty" enum:"celsius" doc:"Unit for gpu_temperature"`
	GPUMemory          string           `json:"gpu_memory,omitempty" example:"76M" doc:"GPU memory split as reported by the firmware"`
}

// TemperatureSnapshot is the reduced snapshot for the temperature endpoint.
type TemperatureSnapshot struct {
	CPUTemperature *float64 `json:"cpu_temperature,omitempty" doc:"CPU temperature in degrees Celsius"`
	GPUTemperature *float64 `json:"gpu_temperature,omitempty" doc:"GPU temperature in degrees Celsius"`
	Units          string   `json:"units" enum:"celsius" doc:"Unit for all temperatures"`
}

// CPUFrequency is the cpufreq reading in whole MHz.
type CPUFrequency struct {
	Current int `json:"current" doc:"Current frequency in MHz"`
	Min     int `json:"min" doc:"Minimum frequency in MHz"`
	Max     int `json:"max" doc:"Maximum frequency in MHz"`
}

// MemoryUsage reports RAM in GB with two decimals, percent with one.
type MemoryUsage struct {
	Total     float64 `json:"total" doc:"Total RAM in GB"`
	Available float64 `json:"available" doc:"Available RAM in GB"`
	Used      float64 `json:"used" doc:"Used RAM in GB"`
	Percent   float64 `json:"percent" doc:"Used percent of total"`
}

// DiskUsage reports the root filesystem in GB with two decimals.
type DiskUsage struct {
	Total   float64 `json:"total" doc:"Filesystem size in GB"`
	Used    float64 `json:"used" doc:"Used space in GB"`
	Free    float64 `json:"free" doc:"Free space in GB"`
	Percent float64 `json:"percent" doc:"Used percent"`
}

// Uptime is the time since boot broken into display units.
type Uptime struct {
	Days         int64 `json:"days"`
	Hours        int64 `json:"hours"`
	Minutes      int64 `json:"minutes"`
	Seconds      int64 `json:"seconds"`
	TotalSeconds int64 `json:"total_seconds"`
}

// NetworkCounters are the aggregate interface counters since boot, raw.
type NetworkCounters struct {
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// round1 rounds to one decimal place, used for temperatures and percents.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places, used for GB figures.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// bytesToGB converts raw byte counts to GB for display.
func bytesToGB(b uint64) float64 {
	return float64(b) / (1024 * 1024 * 1024)
}

// uptimeFromSeconds splits a second count into display units.
func uptimeFromSeconds(total int64) Uptime {
	return Uptime{
		Days:         total / 86400,
		Hours:        (total % 86400) / 3600,
		Minutes:      (total % 3600) / 60,
		Seconds:      total % 60,
		TotalSeconds: total,
	}
}
