package crawlers

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

const bytesPerMB = 1024 * 1024

// MemoryProbe reports system memory.
type MemoryProbe func() (*mem.VirtualMemoryStat, error)

// ResourceGuard checks free memory before a browser is launched.
// A launch is never refused; a short-memory host only gets a warning.
type ResourceGuard struct {
	minFreeMB uint64
	probe     MemoryProbe
}

// NewResourceGuard returns a guard reading real system memory. minFreeMB of zero disables it.
func NewResourceGuard(minFreeMB uint64) *ResourceGuard {
	return &ResourceGuard{minFreeMB: minFreeMB, probe: mem.VirtualMemory}
}

// NewResourceGuardWith allows a custom probe.
func NewResourceGuardWith(minFreeMB uint64, probe MemoryProbe) *ResourceGuard {
	return &ResourceGuard{minFreeMB: minFreeMB, probe: probe}
}

// CheckResourceAvailability reports whether at least minFreeMB is available, and why not.
// A probe failure counts as available.
func (g *ResourceGuard) CheckResourceAvailability() (ok bool, reason string) {
	if g == nil || g.minFreeMB == 0 {
		return true, ""
	}

	stat, err := g.probe()
	if err != nil {
		return true, fmt.Sprintf("memory probe failed: %v", err)
	}

	availableMB := stat.Available / bytesPerMB
	if availableMB < g.minFreeMB {
		return false, fmt.Sprintf("low memory (%dMB available, %dMB wanted)", availableMB, g.minFreeMB)
	}
	return true, ""
}

// Warn logs when memory is short.
func (g *ResourceGuard) Warn() {
	if ok, reason := g.CheckResourceAvailability(); !ok {
		utils.Warnf("⚠️  launching browser with %s", reason)
	} else if reason != "" {
		utils.Debugf("resource check skipped: %s", reason)
	}
}
