//go:build !cgo

package accel

import "fmt"

// NewMLXDevice reports that mlx is unavailable in this build. The real
// implementation (device_mlx.go) requires cgo to link github.com/luxfi/mlx;
// binaries built with CGO_ENABLED=0 fall back to this stub so that
// --device=mlx fails with a clear error instead of a link error.
func NewMLXDevice() (*MLXDevice, error) {
	return nil, fmt.Errorf("accel: mlx device support requires a cgo build")
}

// MLXDevice is an opaque placeholder in non-cgo builds; its Device methods
// are never called since NewMLXDevice always fails.
type MLXDevice struct{}

func (d *MLXDevice) Name() string            { return "mlx (unavailable)" }
func (d *MLXDevice) IsCPU() bool             { return true }
func (d *MLXDevice) MaxWorkGroupSize() int   { return 1 }
func (d *MLXDevice) MaxWorkItemSizes() [3]int { return [3]int{1, 1, 1} }
func (d *MLXDevice) MemoryBytes() uint64     { return 0 }
