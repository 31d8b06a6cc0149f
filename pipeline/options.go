package pipeline

import (
	"github.com/luxfi/canopy/internal/accel"
	"github.com/sirupsen/logrus"
)

// Options configures a Pipeline. Zero-valued fields take the defaults
// below.
type Options struct {
	// BatchSize and BitpacksPerBatch together describe the sample shape
	// (batch_size x bitpacks_per_batch); both are rounded up to the
	// nearest power of two by the Working-Set Planner.
	BatchSize        int
	BitpacksPerBatch int

	// DesiredOccupancy overrides the planner's device-class heuristic; <=0
	// uses accel.DefaultDesiredOccupancy.
	DesiredOccupancy int

	// Device overrides the default host device; nil uses accel.NewHostDevice.
	Device accel.Device

	// Logger receives structured diagnostics; nil uses logrus's standard
	// logger.
	Logger logrus.FieldLogger
}

const (
	defaultBatchSize        = 64
	defaultBitpacksPerBatch = 64
)

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.BitpacksPerBatch <= 0 {
		o.BitpacksPerBatch = defaultBitpacksPerBatch
	}
	if o.Device == nil {
		o.Device = accel.NewHostDevice()
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	return o
}
