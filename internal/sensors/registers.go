// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// MPU-9250 registers used by this project. Only the auxiliary I2C master
// block, the shadow data area and a handful of housekeeping registers are
// needed; the full map with bit-field metadata lives in register_map.go for
// the debug console.
const (
	regI2CMstCtrl  = 0x24
	regI2CSlv0Addr = 0x25
	regI2CSlv0Reg  = 0x26
	regI2CSlv0Ctrl = 0x27

	regTempOutH = 0x41

	regExtSensData00 = 0x49

	regI2CSlv0DO = 0x63

	regUserCtrl = 0x6A
	regPwrMgmt1 = 0x6B
	regWhoAmI   = 0x75
)

// MPU-9250 bit masks.
const (
	bitI2CRead byte = 0x80 // I2C_SLV0_ADDR read direction

	bitSlv0En byte = 0x80 // I2C_SLV0_CTRL enable; low nibble is length

	bitI2CMstEn  byte = 0x20 // USER_CTRL
	bitI2CMstRst byte = 0x02 // USER_CTRL

	bitI2CMstPNSR  byte = 0x10 // I2C_MST_CTRL: stop between slave reads
	mstClock400kHz byte = 0x0D // I2C_MST_CTRL clock select

	bitHReset   byte = 0x80 // PWR_MGMT_1
	clkselAuto  byte = 0x01 // PWR_MGMT_1
	whoAmIValue byte = 0x71
)

// AK8963 magnetometer, reachable only through the auxiliary master.
const (
	ak8963Addr byte = 0x0C

	ak8963RegWIA   = 0x00
	ak8963RegInfo  = 0x01
	ak8963RegST1   = 0x02
	ak8963RegHXL   = 0x03
	ak8963RegST2   = 0x09
	ak8963RegCNTL1 = 0x0A
	ak8963RegCNTL2 = 0x0B
	ak8963RegASAX  = 0x10

	ak8963DeviceID byte = 0x48

	// CNTL1 mode nibble plus the 16-bit output width flag.
	ak8963ModePowerDown byte = 0x00
	ak8963ModeCont100Hz byte = 0x06
	ak8963ModeFuseROM   byte = 0x0F
	ak8963Output16Bit   byte = 0x10

	// CNTL2
	ak8963SoftReset byte = 0x01
)
