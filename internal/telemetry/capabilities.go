package telemetry

import (
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
)

// Capabilities records which optional telemetry facilities responded at
// startup. The struct is computed once and passed by value to everything
// that degrades on missing facilities.
type Capabilities struct {
	// HostMetrics reports whether the host-metrics facility works on this
	// system. When false the collector skips CPU, memory, disk, uptime and
	// network groups entirely; temperature and GPU probes have their own
	// independent paths.
	HostMetrics bool
}

// DetectCapabilities probes the host-metrics facility with a single cheap
// memory read. Run once at startup; a facility that is broken at boot stays
// flagged off for the life of the process.
func DetectCapabilities() Capabilities {
	logger := logging.GetLogger("telemetry")

	_, err := mem.VirtualMemory()
	if err != nil {
		logger.Warn("Host metrics unavailable, system stats will be limited", "error", err)
		return Capabilities{HostMetrics: false}
	}

	return Capabilities{HostMetrics: true}
}
