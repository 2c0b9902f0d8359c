// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpusurface

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// deviceContext bundles the hal objects one surface presents through.
// It is either owned (opened by bringUp and destroyed on Close) or
// borrowed from a provider installed with SetDeviceProvider.
type deviceContext struct {
	instance hal.Instance // nil when borrowed
	device   hal.Device
	queue    hal.Queue
	adapter  string
	owned    bool
}

var (
	sharedMu sync.RWMutex
	shared   *deviceContext

	probeOnce sync.Once
	probeOK   bool
)

// SetDeviceProvider installs a shared GPU device from an embedding host,
// so surfaces created afterwards reuse the host's device instead of
// opening a second one. The provider must also expose HAL types through
// HalDevice() and HalQueue().
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpusurface: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpusurface: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpusurface: provider HalQueue is not hal.Queue")
	}
	sharedMu.Lock()
	shared = &deviceContext{device: device, queue: queue, adapter: "shared", owned: false}
	sharedMu.Unlock()
	return nil
}

// ClearDeviceProvider removes a previously installed shared device. The
// borrowed device is never destroyed here; it belongs to the host.
func ClearDeviceProvider() {
	sharedMu.Lock()
	shared = nil
	sharedMu.Unlock()
}

// acquireDevice returns the shared device when one is installed,
// otherwise opens an owned device on the best adapter.
func acquireDevice() (*deviceContext, error) {
	sharedMu.RLock()
	ctx := shared
	sharedMu.RUnlock()
	if ctx != nil {
		return ctx, nil
	}
	return bringUp()
}

// bringUp opens an instance, picks an adapter (discrete preferred, then
// integrated) and opens a device on it.
func bringUp() (*deviceContext, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("gpusurface: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpusurface: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("gpusurface: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpusurface: open device: %w", err)
	}
	return &deviceContext{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		adapter:  selected.Info.Name,
		owned:    true,
	}, nil
}

// release destroys owned resources. Borrowed devices are left alone.
func (c *deviceContext) release() {
	if c == nil || !c.owned {
		return
	}
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
	c.queue = nil
}

// available reports whether a device could be obtained. The probe runs
// the instance/adapter bring-up once and caches the verdict; a shared
// provider short-circuits it.
func available() bool {
	sharedMu.RLock()
	hasShared := shared != nil
	sharedMu.RUnlock()
	if hasShared {
		return true
	}
	probeOnce.Do(func() {
		backend, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return
		}
		instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
		if err != nil {
			return
		}
		defer instance.Destroy()
		probeOK = len(instance.EnumerateAdapters(nil)) > 0
	})
	return probeOK
}
