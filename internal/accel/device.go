// Package accel implements the Working-Set Planner (C2): the device
// capability model and the ND-range/work-group shape selection that turns a
// requested sample shape into a concrete dispatch plan, plus the goroutine
// dispatcher that stands in for a SYCL device queue.
package accel

import (
	"fmt"
	"runtime"
)

// Device models the capability surface the planner needs. HostDevice is the
// default, always-available implementation; MLXDevice (behind the cgo build
// tag) reports the capabilities of a GPU/accelerator backend discovered via
// github.com/luxfi/mlx.
type Device interface {
	Name() string
	IsCPU() bool
	MaxWorkGroupSize() int
	MaxWorkItemSizes() [3]int
	MemoryBytes() uint64
}

// HostDevice represents the local machine, scheduled by the Go runtime
// rather than a device queue. It is always CPU-class.
type HostDevice struct {
	computeUnits int
}

// NewHostDevice returns a HostDevice sized to GOMAXPROCS.
func NewHostDevice() *HostDevice {
	return &HostDevice{computeUnits: runtime.GOMAXPROCS(0)}
}

func (d *HostDevice) Name() string { return fmt.Sprintf("host (%d-way)", d.computeUnits) }

func (d *HostDevice) IsCPU() bool { return true }

// MaxWorkGroupSize bounds the per-wave goroutine fan-out the planner will
// plan for; it is not a hard OS limit, just the same kind of budget a CPU
// OpenCL/SYCL backend would report.
func (d *HostDevice) MaxWorkGroupSize() int { return 256 }

func (d *HostDevice) MaxWorkItemSizes() [3]int { return [3]int{256, 256, 256} }

func (d *HostDevice) MemoryBytes() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Sys
}

// ComputeUnits is the goroutine fan-out HostDevice was sized for.
func (d *HostDevice) ComputeUnits() int { return d.computeUnits }
