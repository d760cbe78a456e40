package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing of the
// surface. WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	MSAA4x  MSAASampleCount = 4
)

// DeviceBuilderOption is a functional option applied to the WebGPU device during construction via NewWGPUDevice.
type DeviceBuilderOption func(*wgpuDevice)

// WithDeviceLogger sets the device's logger.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - DeviceBuilderOption: a function that applies the logger option to the device
func WithDeviceLogger(log *zap.Logger) DeviceBuilderOption {
	return func(d *wgpuDevice) {
		if log != nil {
			d.log = log
		}
	}
}

// WithPresentMode sets how frames are delivered to the display.
//
// Parameters:
//   - mode: PresentModeVSync or PresentModeUncapped
//
// Returns:
//   - DeviceBuilderOption: a function that applies the present mode option to the device
func WithPresentMode(mode PresentMode) DeviceBuilderOption {
	return func(d *wgpuDevice) {
		switch mode {
		case PresentModeUncapped:
			d.presentMode = wgpu.PresentModeImmediate
		default:
			d.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithMSAA sets the sample count of the surface attachments. Offscreen targets are never
// multisampled.
//
// Parameters:
//   - count: MSAAOff or MSAA4x
//
// Returns:
//   - DeviceBuilderOption: a function that applies the MSAA option to the device
func WithMSAA(count MSAASampleCount) DeviceBuilderOption {
	return func(d *wgpuDevice) {
		if count != MSAA4x {
			count = MSAAOff
		}
		d.sampleCount = count
	}
}

// WithFallbackAdapter forces the software fallback adapter.
func WithFallbackAdapter(force bool) DeviceBuilderOption {
	return func(d *wgpuDevice) {
		d.forceFallback = force
	}
}
