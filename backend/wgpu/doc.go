// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides the hardware rendering backend for facekit using
// pure-Go WebGPU (gogpu/wgpu).
//
// The backend maps the runtime's display/config/context model onto the
// wgpu HAL: the display handle is the HAL instance plus the selected
// adapter, the configuration is the feature/limit/format choice, and the
// background context opens the device. The foreground context is created
// share-linked: it reuses the background context's device and queue, so
// resources constructed on either are usable from both.
//
// When the embedding application already owns a GPU device (a gogpu
// window, for example), pass its gpucontext.DeviceProvider via
// WithDeviceProvider; the backend then shares that device instead of
// opening its own and leaves its destruction to the owner.
package wgpu
