// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "time"

// Parent is the narrow interface the magnetometer driver consumes from the
// device that owns the auxiliary I2C master. The parent outlives the driver;
// the driver holds a plain non-owning reference.
//
// Register primitives do not return errors to the caller: communication
// faults are accounted for and logged by the parent implementation itself
// (see MPU9250.CommErrors). The driver's own failure channel is the
// identity/retry state machine.
type Parent interface {
	// WriteRegister performs an unverified raw register write.
	WriteRegister(reg, value byte)
	// ModifyRegister performs an unverified read-modify-write.
	ModifyRegister(reg, clearbits, setbits byte)
	// ModifyRegisterChecked performs a read-modify-write and verifies the
	// result stuck, retrying internally.
	ModifyRegisterChecked(reg, clearbits, setbits byte)
	// Read performs a burst register read, bypassing single-register helpers.
	Read(reg byte, buf []byte)
	// IsExternal reports whether the parent is mounted off-board.
	IsExternal() bool
	// LastTemperature returns the parent's last fetched die temperature in °C.
	LastTemperature() float64
	// DeviceID identifies the parent instance, e.g. "mpu9250@0x68".
	DeviceID() string
}

// Clock abstracts blocking settle delays so the bring-up state machine can be
// exercised in tests without wall-clock waits.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
