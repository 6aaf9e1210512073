package streams

import (
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// scanner reports whether a matching pipeline process exists in the live
// process table.
type scanner interface {
	FindPipeline(transcoder, marker string) bool
}

// tableScanner walks the host process table. The scan is best-effort: any
// enumeration error reads as "no match", so hosts without process
// introspection fall back to in-memory tracking only.
type tableScanner struct{}

func (tableScanner) FindPipeline(transcoder, marker string) bool {
	procs, err := process.Processes()
	if err != nil {
		return false
	}

	needle := strings.ToLower(transcoder)
	for _, proc := range procs {
		name, err := proc.Name()
		if err != nil || !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		cmdline, err := proc.Cmdline()
		if err != nil {
			// Process may have exited mid-scan
			continue
		}
		if strings.Contains(cmdline, marker) {
			return true
		}
	}
	return false
}
