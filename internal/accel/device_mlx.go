//go:build cgo

package accel

import (
	"fmt"
	"strings"

	"github.com/luxfi/mlx"
)

// MLXDevice reports the capabilities of the backend/device mlx discovers at
// process start. It is used purely for capability reporting — memory
// budget, device name, CPU/GPU classification — feeding into the
// Working-Set Planner; the bit-pack Boolean kernels themselves stay
// hand-written Go dispatched over goroutines, since mlx exposes no bitwise
// AND/OR/XOR/popcount primitive over arbitrary-width packed words (see
// DESIGN.md).
type MLXDevice struct {
	backend mlx.Backend
	device  *mlx.Device
}

// NewMLXDevice queries mlx for the active backend and device.
func NewMLXDevice() (*MLXDevice, error) {
	backend := mlx.GetBackend()
	device := mlx.GetDevice()
	if device == nil {
		return nil, fmt.Errorf("accel: mlx reports no active device")
	}
	return &MLXDevice{backend: backend, device: device}, nil
}

func (d *MLXDevice) Name() string { return d.device.Name }

// IsCPU classifies the device from its reported name, since mlx.Backend
// does not expose a direct CPU/GPU predicate. CPU-class accelerator
// backends conventionally advertise "CPU" in their device name.
func (d *MLXDevice) IsCPU() bool {
	return strings.Contains(strings.ToUpper(d.Name()), "CPU")
}

func (d *MLXDevice) MaxWorkGroupSize() int { return 1024 }

func (d *MLXDevice) MaxWorkItemSizes() [3]int { return [3]int{1024, 1024, 64} }

func (d *MLXDevice) MemoryBytes() uint64 { return uint64(d.device.Memory) }
