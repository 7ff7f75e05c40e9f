// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"math"
	"testing"

	"periph.io/x/conn/v3/physic"
)

// fakeBus is an in-memory register-map i2c.Bus. Sticky registers ignore
// writes, faulty registers fail the transaction.
type fakeBus struct {
	regs   map[byte]byte
	sticky map[byte]bool
	faulty map[byte]bool
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		regs:   map[byte]byte{regWhoAmI: whoAmIValue},
		sticky: make(map[byte]bool),
		faulty: make(map[byte]bool),
	}
}

func (b *fakeBus) String() string { return "fake-i2c" }

func (b *fakeBus) SetSpeed(physic.Frequency) error { return nil }

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 {
		return errors.New("empty write")
	}
	reg := w[0]
	if b.faulty[reg] {
		return errors.New("bus fault")
	}
	if len(w) > 1 { // register write
		if !b.sticky[reg] {
			b.regs[reg] = w[1]
		}
		return nil
	}
	for i := range r {
		r[i] = b.regs[reg+byte(i)]
	}
	return nil
}

func TestNewMPU9250IdentityCheck(t *testing.T) {
	bus := newFakeBus()
	if _, err := NewMPU9250(bus, MPU9250Opts{}); err != nil {
		t.Fatalf("NewMPU9250: %v", err)
	}
	// Wake write lands in PWR_MGMT_1.
	if got := bus.regs[regPwrMgmt1]; got != clkselAuto {
		t.Fatalf("PWR_MGMT_1 = 0x%02X, want 0x%02X", got, clkselAuto)
	}

	bus.regs[regWhoAmI] = 0x68
	if _, err := NewMPU9250(bus, MPU9250Opts{}); err == nil {
		t.Fatal("NewMPU9250 accepted wrong device id")
	}
}

func TestModifyRegisterPreservesOtherBits(t *testing.T) {
	bus := newFakeBus()
	d, err := NewMPU9250(bus, MPU9250Opts{})
	if err != nil {
		t.Fatal(err)
	}

	bus.regs[regUserCtrl] = 0x41
	d.ModifyRegister(regUserCtrl, 0x01, bitI2CMstEn)
	if got := bus.regs[regUserCtrl]; got != 0x60 {
		t.Fatalf("USER_CTRL = 0x%02X, want 0x60", got)
	}
}

func TestModifyRegisterCheckedCountsStuckWrites(t *testing.T) {
	bus := newFakeBus()
	d, err := NewMPU9250(bus, MPU9250Opts{})
	if err != nil {
		t.Fatal(err)
	}

	bus.sticky[regUserCtrl] = true
	d.ModifyRegisterChecked(regUserCtrl, 0, bitI2CMstEn)
	if d.CommErrors() == 0 {
		t.Fatal("stuck checked write not counted as comm error")
	}
}

func TestSwallowedWriteErrorsAreCounted(t *testing.T) {
	bus := newFakeBus()
	d, err := NewMPU9250(bus, MPU9250Opts{})
	if err != nil {
		t.Fatal(err)
	}

	bus.faulty[regI2CSlv0Ctrl] = true
	d.WriteRegister(regI2CSlv0Ctrl, 0)
	d.WriteRegister(regI2CSlv0Ctrl, 0x81)
	if got := d.CommErrors(); got != 2 {
		t.Fatalf("CommErrors = %d, want 2", got)
	}
}

func TestUpdateTemperature(t *testing.T) {
	tests := []struct {
		name   string
		hi, lo byte
		want   float64
	}{
		{"zero raw", 0x00, 0x00, 21.0},
		{"positive raw", 0x0D, 0x0C, float64(0x0D0C)/333.87 + 21.0},
		{"negative raw", 0xFF, 0x00, float64(int16(-256))/333.87 + 21.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newFakeBus()
			d, err := NewMPU9250(bus, MPU9250Opts{})
			if err != nil {
				t.Fatal(err)
			}
			bus.regs[regTempOutH] = tt.hi
			bus.regs[regTempOutH+1] = tt.lo

			got, err := d.UpdateTemperature()
			if err != nil {
				t.Fatalf("UpdateTemperature: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("temperature = %v, want %v", got, tt.want)
			}
			if d.LastTemperature() != got {
				t.Fatal("LastTemperature not cached")
			}
		})
	}
}

func TestReadExternalSensorData(t *testing.T) {
	bus := newFakeBus()
	d, err := NewMPU9250(bus, MPU9250Opts{})
	if err != nil {
		t.Fatal(err)
	}
	for i := byte(0); i < 8; i++ {
		bus.regs[regExtSensData00+i] = 0xA0 + i
	}

	var buf [8]byte
	d.ReadExternalSensorData(buf[:])
	for i := byte(0); i < 8; i++ {
		if buf[i] != 0xA0+i {
			t.Fatalf("buf[%d] = 0x%02X, want 0x%02X", i, buf[i], 0xA0+i)
		}
	}
}
