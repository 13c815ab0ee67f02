package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/RecoveryAshes/legiscrape/internal/core"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  legiscrape environment check")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	fmt.Printf("✅ Go version: %s\n", runtime.Version())
	fmt.Printf("✅ OS: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	cfg, err := core.LoadConfig("")
	if err != nil {
		fmt.Printf("❌ config: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ config loaded")

	// Chromium is needed for bill texts and the dynamic dashboard mode.
	if cfg.Fetch.BrowserBin != "" {
		if _, err := os.Stat(cfg.Fetch.BrowserBin); err == nil {
			fmt.Printf("✅ browser: %s\n", cfg.Fetch.BrowserBin)
		} else {
			fmt.Printf("❌ configured browser not found: %s\n", cfg.Fetch.BrowserBin)
			allOK = false
		}
	} else if path, ok := launcher.LookPath(); ok {
		fmt.Printf("✅ browser: %s\n", path)
	} else {
		fmt.Println("⚠️  no local Chromium found; rod will download one on first launch")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		freeMB := vm.Available / 1024 / 1024
		if freeMB < cfg.Fetch.MinFreeMemoryMB {
			fmt.Printf("⚠️  available memory %d MB is below %d MB\n", freeMB, cfg.Fetch.MinFreeMemoryMB)
		} else {
			fmt.Printf("✅ available memory: %d MB\n", freeMB)
		}
	}

	fmt.Println()
	fmt.Println("checking output directories...")
	for _, dir := range []string{
		cfg.Output.DashboardDir,
		cfg.Output.BillDir,
		cfg.Output.BatchDir,
		cfg.Logging.LogDir,
	} {
		if err := checkWritable(dir); err != nil {
			fmt.Printf("❌ %s/ %v\n", dir, err)
			allOK = false
		} else {
			fmt.Printf("✅ %s/\n", dir)
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ environment ready")
		fmt.Println()
		fmt.Println("next:")
		fmt.Println("  1. go build -o legiscrape ./cmd/legiscrape")
		fmt.Println("  2. ./legiscrape dashboard --state TX")
		os.Exit(0)
	}
	fmt.Println("❌ environment check failed, fix the issues above")
	os.Exit(1)
}

// checkWritable creates dir if needed and writes a probe file into it.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(filepath.Clean(name))
}
