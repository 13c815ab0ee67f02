package crawlers

import (
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
)

func TestResourceGuard(t *testing.T) {
	tests := []struct {
		name   string
		probe  MemoryProbe
		wantOK bool
		reason string
	}{
		{
			name: "plenty",
			probe: func() (*mem.VirtualMemoryStat, error) {
				return &mem.VirtualMemoryStat{Available: 4096 * bytesPerMB}, nil
			},
			wantOK: true,
		},
		{
			name: "short",
			probe: func() (*mem.VirtualMemoryStat, error) {
				return &mem.VirtualMemoryStat{Available: 100 * bytesPerMB}, nil
			},
			wantOK: false,
			reason: "100MB available",
		},
		{
			name:   "probe error",
			probe:  func() (*mem.VirtualMemoryStat, error) { return nil, errors.New("no /proc") },
			wantOK: true,
			reason: "no /proc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := NewResourceGuardWith(512, tt.probe).CheckResourceAvailability()
			assert.Equal(t, tt.wantOK, ok)
			if tt.reason != "" {
				assert.Contains(t, reason, tt.reason)
			}
		})
	}
}

func TestResourceGuardDisabled(t *testing.T) {
	var nilGuard *ResourceGuard
	ok, _ := nilGuard.CheckResourceAvailability()
	assert.True(t, ok)

	ok, _ = NewResourceGuard(0).CheckResourceAvailability()
	assert.True(t, ok)
}
