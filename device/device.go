// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device performs the device/queue handshake for the presentation
// loop: it creates a HAL instance, selects an adapter and opens a logical
// device with its command queue.
//
// A Device either owns its GPU objects (Open) or borrows them from a host
// application (FromProvider). Destroy only releases what the Device owns.
package device

import (
	"fmt"
	"strings"

	"github.com/gogpu/framepace"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Backend names accepted by WithBackend.
const (
	BackendVulkan = "vulkan"
	BackendNoop   = "noop"
)

// AdapterInfo describes an enumerated adapter.
type AdapterInfo struct {
	Index   int
	Name    string
	Type    string
	Backend string
}

// Device holds the instance, adapter, device and queue used for rendering.
type Device struct {
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue

	info   AdapterInfo
	format gputypes.TextureFormat
	shared bool
}

type config struct {
	backend string
	adapter int // -1 selects automatically
}

// Option configures Open and Adapters.
type Option func(*config)

// WithBackend selects the HAL backend by name: "vulkan" (default) or "noop".
func WithBackend(name string) Option {
	return func(c *config) {
		if name != "" {
			c.backend = name
		}
	}
}

// WithAdapter forces the adapter at index in enumeration order.
func WithAdapter(index int) Option {
	return func(c *config) {
		c.adapter = index
	}
}

func newConfig(opts []Option) config {
	c := config{backend: BackendVulkan, adapter: -1}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

type instanceFactory interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

func createInstance(backend string) (hal.Instance, error) {
	var f instanceFactory
	switch backend {
	case BackendNoop:
		f = &noop.API{}
	case BackendVulkan:
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("%w: vulkan backend not available", framepace.ErrNoAdapter)
		}
		f = b
	default:
		return nil, fmt.Errorf("device: unknown backend %q", backend)
	}

	instance, err := f.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s instance: %w", framepace.ErrNoAdapter, backend, err)
	}
	return instance, nil
}

// Open creates an instance, selects an adapter (discrete, then integrated,
// then the first enumerated) and opens a device with default limits.
//
// Failure is fatal for the presentation loop and matches
// framepace.ErrNoAdapter.
func Open(opts ...Option) (*Device, error) {
	c := newConfig(opts)

	instance, err := createInstance(c.backend)
	if err != nil {
		return nil, err
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters on %s", framepace.ErrNoAdapter, c.backend)
	}

	idx := c.adapter
	if idx < 0 {
		types := make([]gputypes.DeviceType, len(adapters))
		for i := range adapters {
			types[i] = adapters[i].Info.DeviceType
		}
		idx = pickAdapter(types)
	}
	if idx >= len(adapters) {
		instance.Destroy()
		return nil, fmt.Errorf("%w: adapter %d out of range (%d available)", framepace.ErrNoAdapter, idx, len(adapters))
	}
	selected := &adapters[idx]

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", framepace.ErrNoAdapter, err)
	}

	d := &Device{
		instance: instance,
		adapter:  selected.Adapter,
		device:   openDev.Device,
		queue:    openDev.Queue,
		info: AdapterInfo{
			Index:   idx,
			Name:    selected.Info.Name,
			Type:    deviceTypeName(selected.Info.DeviceType),
			Backend: c.backend,
		},
	}
	framepace.Logger().Info("device opened",
		"adapter", d.info.Name, "type", d.info.Type, "backend", c.backend)
	return d, nil
}

// Adapters lists the adapters of the selected backend without opening a
// device.
func Adapters(opts ...Option) ([]AdapterInfo, error) {
	c := newConfig(opts)
	instance, err := createInstance(c.backend)
	if err != nil {
		return nil, err
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	out := make([]AdapterInfo, len(adapters))
	for i := range adapters {
		out[i] = AdapterInfo{
			Index:   i,
			Name:    adapters[i].Info.Name,
			Type:    deviceTypeName(adapters[i].Info.DeviceType),
			Backend: c.backend,
		}
	}
	return out, nil
}

// FromProvider borrows the device and queue of a host application. The
// provider must also expose HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. The returned Device never destroys them.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("device: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("device: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("device: provider HalQueue is not hal.Queue")
	}

	ai := provider.AdapterInfo()
	name := ai.Name
	if name == "" {
		name = "shared"
	}
	framepace.Logger().Debug("device: using shared GPU device", "adapter", name, "type", ai.Type)
	return &Device{
		device: device,
		queue:  queue,
		info:   AdapterInfo{Index: -1, Name: name, Type: strings.ToLower(ai.Type.String()), Backend: "provider"},
		format: provider.SurfaceFormat(),
		shared: true,
	}, nil
}

// HalDevice returns the logical device.
func (d *Device) HalDevice() hal.Device { return d.device }

// HalQueue returns the command queue.
func (d *Device) HalQueue() hal.Queue { return d.queue }

// HalInstance returns the instance, or nil for a shared device.
func (d *Device) HalInstance() hal.Instance { return d.instance }

// HalAdapter returns the selected adapter, or nil for a shared device.
func (d *Device) HalAdapter() hal.Adapter { return d.adapter }

// Info describes the selected adapter.
func (d *Device) Info() AdapterInfo { return d.info }

// Shared reports whether the device is borrowed from a host application.
func (d *Device) Shared() bool { return d.shared }

// SurfaceFormat returns the host's preferred surface format for a shared
// device and TextureFormatUndefined otherwise.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.format }

// Destroy releases the device and then the instance. Shared devices are
// only detached. Safe to call more than once.
func (d *Device) Destroy() {
	if !d.shared {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.adapter = nil
	d.instance = nil
}

// pickAdapter returns the index of the first discrete adapter, else the
// first integrated one, else 0.
func pickAdapter(types []gputypes.DeviceType) int {
	integrated := -1
	for i, t := range types {
		switch t {
		case gputypes.DeviceTypeDiscreteGPU:
			return i
		case gputypes.DeviceTypeIntegratedGPU:
			if integrated < 0 {
				integrated = i
			}
		}
	}
	if integrated >= 0 {
		return integrated
	}
	return 0
}

func deviceTypeName(t gputypes.DeviceType) string {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return "discrete"
	case gputypes.DeviceTypeIntegratedGPU:
		return "integrated"
	default:
		return "other"
	}
}
