// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
)

// DefaultMPU9250Addr is the AD0-low I2C address of the MPU-9250.
const DefaultMPU9250Addr = 0x68

const checkedWriteRetries = 3

// MPU9250Opts holds parent construction options.
type MPU9250Opts struct {
	// Addr is the I2C address; DefaultMPU9250Addr when zero.
	Addr uint16
	// External marks the sensor as mounted off-board; copied into every
	// republished magnetometer sample.
	External bool
}

// MPU9250 is the parent inertial device owning the auxiliary I2C master the
// magnetometer hangs off. It implements Parent.
//
// Register primitives swallow bus errors: they are counted, logged and
// visible through CommErrors, so the single-slot transaction discipline of
// the magnetometer driver stays branch-free. The bring-up state machine
// detects a dead bus through identity-check failures.
type MPU9250 struct {
	dev      i2c.Dev
	name     string
	external bool

	lastTemp float64
	commErrs uint64
}

// NewMPU9250 probes WHO_AM_I and wakes the device from sleep.
func NewMPU9250(bus i2c.Bus, opts MPU9250Opts) (*MPU9250, error) {
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultMPU9250Addr
	}
	d := &MPU9250{
		dev:      i2c.Dev{Addr: addr, Bus: bus},
		name:     fmt.Sprintf("mpu9250@0x%02X", addr),
		external: opts.External,
	}

	id, err := d.readRegister(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("%s: who-am-i read: %w", d.name, err)
	}
	if id != whoAmIValue {
		return nil, fmt.Errorf("%s: unexpected device id 0x%02X (want 0x%02X)", d.name, id, whoAmIValue)
	}

	// Wake from sleep, auto-select the best clock source.
	if err := d.writeRegister(regPwrMgmt1, clkselAuto); err != nil {
		return nil, fmt.Errorf("%s: wake: %w", d.name, err)
	}
	return d, nil
}

func (d *MPU9250) writeRegister(reg, value byte) error {
	return d.dev.Tx([]byte{reg, value}, nil)
}

func (d *MPU9250) readRegister(reg byte) (byte, error) {
	var b [1]byte
	err := d.dev.Tx([]byte{reg}, b[:])
	return b[0], err
}

func (d *MPU9250) noteErr(op string, reg byte, err error) {
	d.commErrs++
	log.Printf("%s: %s 0x%02X failed: %v", d.name, op, reg, err)
}

// WriteRegister implements Parent.
func (d *MPU9250) WriteRegister(reg, value byte) {
	if err := d.writeRegister(reg, value); err != nil {
		d.noteErr("write", reg, err)
	}
}

// ModifyRegister implements Parent.
func (d *MPU9250) ModifyRegister(reg, clearbits, setbits byte) {
	cur, err := d.readRegister(reg)
	if err != nil {
		d.noteErr("read-modify-write read", reg, err)
		return
	}
	d.WriteRegister(reg, cur&^clearbits|setbits)
}

// ModifyRegisterChecked implements Parent: the updated value is read back
// and the write retried until it sticks or the retry budget runs out.
func (d *MPU9250) ModifyRegisterChecked(reg, clearbits, setbits byte) {
	for attempt := 1; ; attempt++ {
		cur, err := d.readRegister(reg)
		if err != nil {
			d.noteErr("checked write read", reg, err)
			return
		}
		want := cur&^clearbits | setbits
		if err := d.writeRegister(reg, want); err != nil {
			d.noteErr("checked write", reg, err)
			return
		}
		got, err := d.readRegister(reg)
		if err == nil && got == want {
			return
		}
		if attempt == checkedWriteRetries {
			d.commErrs++
			log.Printf("%s: checked write 0x%02X did not stick (got 0x%02X want 0x%02X)", d.name, reg, got, want)
			return
		}
	}
}

// Read implements Parent: a burst read starting at reg, typically of the
// EXT_SENS_DATA shadow area.
func (d *MPU9250) Read(reg byte, buf []byte) {
	if err := d.dev.Tx([]byte{reg}, buf); err != nil {
		d.noteErr("burst read", reg, err)
	}
}

// IsExternal implements Parent.
func (d *MPU9250) IsExternal() bool { return d.external }

// LastTemperature implements Parent.
func (d *MPU9250) LastTemperature() float64 { return d.lastTemp }

// DeviceID implements Parent.
func (d *MPU9250) DeviceID() string { return d.name }

// CommErrors returns the number of swallowed bus faults since construction.
func (d *MPU9250) CommErrors() uint64 { return d.commErrs }

// UpdateTemperature fetches TEMP_OUT and caches the die temperature in °C.
func (d *MPU9250) UpdateTemperature() (float64, error) {
	var b [2]byte
	if err := d.dev.Tx([]byte{regTempOutH}, b[:]); err != nil {
		d.noteErr("temperature read", regTempOutH, err)
		return 0, err
	}
	raw := int16(b[0])<<8 | int16(b[1])
	// RM-MPU-9250A: temp = raw/333.87 + 21
	d.lastTemp = float64(raw)/333.87 + 21.0
	return d.lastTemp, nil
}

// ReadExternalSensorData copies the shadow area into buf: the parent's own
// fetch cycle keeps it refreshed while the standing transaction is armed.
func (d *MPU9250) ReadExternalSensorData(buf []byte) {
	d.Read(regExtSensData00, buf)
}
