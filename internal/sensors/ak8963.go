// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Ecols/Firmware/internal/mag"
)

// BringupState tracks the magnetometer bring-up sequence.
type BringupState int

const (
	StateUninitialized BringupState = iota
	StateMasterConfigured
	StateIdentified
	StateCalibrated
	StateContinuousActive
	StateFailed
)

func (s BringupState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateMasterConfigured:
		return "master-configured"
	case StateIdentified:
		return "identified"
	case StateCalibrated:
		return "calibrated"
	case StateContinuousActive:
		return "continuous-active"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("BringupState(%d)", int(s))
}

var (
	// ErrIdentityMismatch is returned when the observed WIA byte does not
	// match the AK8963 device id. Retried internally up to the setup budget.
	ErrIdentityMismatch = errors.New("magnetometer identity mismatch")
	// ErrMasterBusFault is returned when the setup retry budget is exhausted;
	// the auxiliary master is left disabled.
	ErrMasterBusFault = errors.New("auxiliary I2C master fault")
	// ErrInvalidCalibration is returned when a fuse ROM byte is a sentinel
	// value; no partial adjustment is applied.
	ErrInvalidCalibration = errors.New("invalid factory calibration")
)

const (
	setupRetries = 20

	// Settle time for a single passthrough register transfer. The value is
	// empirical; shorter waits return stale shadow data.
	regSettle = 50 * time.Microsecond

	// Settle time after pulsing the auxiliary master reset bit.
	masterResetSettle = 200 * time.Microsecond
)

// AK8963 drives the magnetometer embedded in an MPU-9250 package. The chip
// is not wired to the host bus; every register access goes through the
// parent's auxiliary I2C master (slave slot 0) and its shadow data area.
//
// All methods are synchronous and must be serialized by the caller, as the
// auxiliary master has a single transaction slot.
type AK8963 struct {
	parent Parent
	clock  Clock
	sink   mag.Publisher
	tag    string

	state  BringupState
	adj    mag.Adjustment
	hasAdj bool

	discarded uint64
	published uint64
}

// NewAK8963 creates a driver bound to its parent device. The parent must
// outlive the driver. A nil clock selects real wall-clock delays.
func NewAK8963(parent Parent, sink mag.Publisher, clock Clock) *AK8963 {
	if clock == nil {
		clock = realClock{}
	}
	return &AK8963{
		parent: parent,
		clock:  clock,
		sink:   sink,
		tag:    parent.DeviceID() + ":ak8963",
	}
}

// State returns the current bring-up state.
func (m *AK8963) State() BringupState { return m.state }

// Sensitivity returns the active factory adjustment, and whether a valid
// calibration has been read this bring-up.
func (m *AK8963) Sensitivity() (mag.Adjustment, bool) {
	if !m.hasAdj {
		return mag.UnityAdjustment, false
	}
	return m.adj, true
}

// Counters returns how many samples were discarded (data not ready) and
// republished since construction.
func (m *AK8963) Counters() (discarded, published uint64) {
	return m.discarded, m.published
}

// armTransaction programs the auxiliary master for a single transfer to the
// magnetometer: reg is the slave-side register, size the transfer length and
// value, when non-nil, the byte to write (nil selects a read).
//
// The slot is disabled first in every case: it is a shared single-slot
// resource and stale configuration corrupts the next transfer.
func (m *AK8963) armTransaction(reg, size byte, value *byte) {
	m.parent.WriteRegister(regI2CSlv0Ctrl, 0)

	addr := ak8963Addr
	if value != nil {
		m.parent.WriteRegister(regI2CSlv0DO, *value)
	} else {
		addr |= bitI2CRead
	}

	m.parent.WriteRegister(regI2CSlv0Addr, addr)
	m.parent.WriteRegister(regI2CSlv0Reg, reg)
	m.parent.WriteRegister(regI2CSlv0Ctrl, size|bitSlv0En)
}

// ReadRegister reads one magnetometer register through the passthrough.
// There is no retry at this level; retry policy belongs to the caller.
func (m *AK8963) ReadRegister(reg byte) byte {
	m.armTransaction(reg, 1, nil)
	m.clock.Sleep(regSettle) // wait for the transfer to land in the shadow area

	var buf [1]byte
	m.parent.Read(regExtSensData00, buf[:])

	m.parent.WriteRegister(regI2CSlv0Ctrl, 0) // disable new reads
	return buf[0]
}

// WriteRegister writes one magnetometer register through the passthrough.
func (m *AK8963) WriteRegister(reg, value byte) {
	m.armTransaction(reg, 1, &value)
	m.clock.Sleep(regSettle)
	m.parent.WriteRegister(regI2CSlv0Ctrl, 0) // disable new writes
}

// configureMaster enables the auxiliary I2C master on the parent and sets
// its clock and stop-between-reads behavior.
func (m *AK8963) configureMaster() {
	m.parent.ModifyRegisterChecked(regUserCtrl, 0, bitI2CMstEn)
	m.parent.WriteRegister(regI2CMstCtrl, bitI2CMstPNSR|mstClock400kHz)
	m.state = StateMasterConfigured
}

// checkIdentity reads WIA and compares it against the expected device id.
// The observed byte is returned for diagnostics.
func (m *AK8963) checkIdentity() (bool, byte) {
	id := m.ReadRegister(ak8963RegWIA)
	return id == ak8963DeviceID, id
}

// Setup brings the magnetometer into continuous sampling. Up to 20 attempts
// of master configuration, soft reset and identity check; between attempts
// the auxiliary master is pulsed through its reset bit. On exhaustion the
// master is disabled and the driver enters the failed state.
//
// On success the chip is switched to 16-bit continuous mode at 100Hz and a
// standing read of the full sample block is armed, so every parent fetch
// cycle refreshes the shadow area without further host involvement.
func (m *AK8963) Setup() error {
	retries := setupRetries
	for {
		m.configureMaster()
		m.WriteRegister(ak8963RegCNTL2, ak8963SoftReset)

		ok, id := m.checkIdentity()
		if ok {
			m.state = StateIdentified
			break
		}

		retries--
		log.Printf("%s: bad id 0x%02X (%v), retries %d", m.tag, id, ErrIdentityMismatch, retries)
		m.parent.ModifyRegister(regUserCtrl, 0, bitI2CMstRst)
		m.clock.Sleep(masterResetSettle)

		if retries == 0 {
			m.parent.ModifyRegisterChecked(regUserCtrl, bitI2CMstEn, 0)
			m.parent.WriteRegister(regI2CMstCtrl, 0)
			m.state = StateFailed
			log.Printf("%s: failed to initialize, disabled", m.tag)
			return fmt.Errorf("%s: %w: no valid id after %d attempts", m.tag, ErrMasterBusFault, setupRetries)
		}
	}

	m.WriteRegister(ak8963RegCNTL1, ak8963Output16Bit|ak8963ModeCont100Hz)
	m.RearmSampleTransaction()
	m.state = StateContinuousActive
	return nil
}

// RearmSampleTransaction re-arms the standing block read of ST1..ST2.
// Needed after any ad-hoc passthrough access, which tears the slot down.
func (m *AK8963) RearmSampleTransaction() {
	m.armTransaction(ak8963RegST1, mag.RawSampleSize, nil)
}

// Reset re-runs Setup, issues a device-level soft reset, then runs Setup
// once more to re-arm the standing transaction the reset cleared. If the
// first Setup fails the device reset is not attempted.
func (m *AK8963) Reset() error {
	if err := m.Setup(); err != nil {
		return err
	}
	m.WriteRegister(ak8963RegCNTL2, ak8963SoftReset)
	return m.Setup()
}

// ReadSensitivity loads the per-axis factory adjustment from the fuse ROM:
// fuse access mode, a 3-byte burst of ASAX..ASAZ through the shadow area,
// then power-down. A sentinel byte (0x00 or 0xFF) invalidates the whole
// read and no partial adjustment is applied.
//
// The chip is left powered down; the caller re-establishes continuous mode
// (typically via Reset).
func (m *AK8963) ReadSensitivity() error {
	m.WriteRegister(ak8963RegCNTL1, ak8963ModeFuseROM|ak8963Output16Bit)
	m.clock.Sleep(regSettle)

	m.armTransaction(ak8963RegASAX, 3, nil)
	m.clock.Sleep(regSettle)
	var asa [3]byte
	m.parent.Read(regExtSensData00, asa[:])
	m.parent.WriteRegister(regI2CSlv0Ctrl, 0)

	m.WriteRegister(ak8963RegCNTL1, ak8963ModePowerDown)

	for i, b := range asa {
		if b == 0x00 || b == 0xFF {
			return fmt.Errorf("%s: %w: asa[%d]=0x%02X", m.tag, ErrInvalidCalibration, i, b)
		}
	}

	m.adj = mag.Adjustment{
		X: (float64(asa[0])-128)/256 + 1,
		Y: (float64(asa[1])-128)/256 + 1,
		Z: (float64(asa[2])-128)/256 + 1,
	}
	m.hasAdj = true
	m.state = StateCalibrated
	log.Printf("%s: sensitivity adj x=%.4f y=%.4f z=%.4f", m.tag, m.adj.X, m.adj.Y, m.adj.Z)
	return nil
}

// Measure gates and republishes one raw sample fetched by the parent cycle.
//
// A clear data-ready bit means the shadow area holds stale or partially
// updated data; the record is dropped silently. Otherwise the sample is
// republished with the axes permuted to the board inertial frame shared
// with the accelerometer and gyro: (x, y, z) <- (rawY, rawX, -rawZ). The
// remap is a fixed mounting correction.
func (m *AK8963) Measure(timestamp time.Time, raw mag.RawSample) {
	if !raw.DataReady() {
		m.discarded++
		return
	}

	m.published++
	m.sink.Publish(mag.Sample{
		Tag:         m.tag,
		Timestamp:   timestamp,
		X:           raw.Y,
		Y:           raw.X,
		Z:           -raw.Z,
		External:    m.parent.IsExternal(),
		Temperature: m.parent.LastTemperature(),
	})
}
