// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// BitField documents one field of a register for the debug console.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is debug-console metadata for one register.
type RegisterInfo struct {
	Address     byte       `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// AK8963RegisterMap returns metadata for the magnetometer registers reachable
// through the passthrough path.
func AK8963RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: ak8963RegWIA, Name: "WIA", Description: "Device identification (0x48)", Access: "R"},
		{Address: ak8963RegInfo, Name: "INFO", Description: "Device information", Access: "R"},
		{Address: ak8963RegST1, Name: "ST1", Description: "Status 1", Access: "R",
			BitFields: []BitField{
				{Bits: "0", Name: "DRDY", Description: "Data ready", Values: "0=Not ready, 1=Ready"},
				{Bits: "1", Name: "DOR", Description: "Data overrun"},
			}},
		{Address: ak8963RegHXL, Name: "HXL", Description: "X-axis data low byte", Access: "R"},
		{Address: ak8963RegHXL + 1, Name: "HXH", Description: "X-axis data high byte", Access: "R"},
		{Address: ak8963RegHXL + 2, Name: "HYL", Description: "Y-axis data low byte", Access: "R"},
		{Address: ak8963RegHXL + 3, Name: "HYH", Description: "Y-axis data high byte", Access: "R"},
		{Address: ak8963RegHXL + 4, Name: "HZL", Description: "Z-axis data low byte", Access: "R"},
		{Address: ak8963RegHXL + 5, Name: "HZH", Description: "Z-axis data high byte", Access: "R"},
		{Address: ak8963RegST2, Name: "ST2", Description: "Status 2", Access: "R",
			BitFields: []BitField{
				{Bits: "3", Name: "HOFL", Description: "Magnetic sensor overflow"},
				{Bits: "4", Name: "BITM", Description: "Output bit width", Values: "0=14-bit, 1=16-bit"},
			}},
		{Address: ak8963RegCNTL1, Name: "CNTL1", Description: "Operation mode and resolution", Access: "RW",
			BitFields: []BitField{
				{Bits: "3:0", Name: "MODE", Description: "Operation mode", Values: "0=PowerDown, 6=Continuous 100Hz, 15=Fuse ROM"},
				{Bits: "4", Name: "BIT", Description: "Output bit width", Values: "0=14-bit, 1=16-bit"},
			}},
		{Address: ak8963RegCNTL2, Name: "CNTL2", Description: "Soft reset", Access: "RW",
			BitFields: []BitField{
				{Bits: "0", Name: "SRST", Description: "Soft reset", Values: "1=Reset"},
			}},
		{Address: ak8963RegASAX, Name: "ASAX", Description: "X-axis sensitivity adjustment (fuse ROM)", Access: "R"},
		{Address: ak8963RegASAX + 1, Name: "ASAY", Description: "Y-axis sensitivity adjustment (fuse ROM)", Access: "R"},
		{Address: ak8963RegASAX + 2, Name: "ASAZ", Description: "Z-axis sensitivity adjustment (fuse ROM)", Access: "R"},
	}
}

// MasterRegisterMap returns metadata for the parent-side auxiliary master
// block the passthrough sequence programs.
func MasterRegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: regI2CMstCtrl, Name: "I2C_MST_CTRL", Description: "Auxiliary master control", Access: "RW",
			BitFields: []BitField{
				{Bits: "4", Name: "I2C_MST_P_NSR", Description: "Stop between slave reads"},
				{Bits: "3:0", Name: "I2C_MST_CLK", Description: "Master clock select", Values: "13=400kHz"},
			}},
		{Address: regI2CSlv0Addr, Name: "I2C_SLV0_ADDR", Description: "Slave 0 address and direction", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "I2C_SLV0_RNW", Description: "Direction", Values: "0=Write, 1=Read"},
				{Bits: "6:0", Name: "I2C_ID_0", Description: "7-bit slave address"},
			}},
		{Address: regI2CSlv0Reg, Name: "I2C_SLV0_REG", Description: "Slave 0 target register", Access: "RW"},
		{Address: regI2CSlv0Ctrl, Name: "I2C_SLV0_CTRL", Description: "Slave 0 enable and length", Access: "RW",
			BitFields: []BitField{
				{Bits: "7", Name: "I2C_SLV0_EN", Description: "Enable transfer"},
				{Bits: "3:0", Name: "I2C_SLV0_LENG", Description: "Transfer length", Values: "0-15"},
			}},
		{Address: regI2CSlv0DO, Name: "I2C_SLV0_DO", Description: "Slave 0 output data", Access: "RW"},
		{Address: regUserCtrl, Name: "USER_CTRL", Description: "User control", Access: "RW",
			BitFields: []BitField{
				{Bits: "5", Name: "I2C_MST_EN", Description: "Enable auxiliary master"},
				{Bits: "1", Name: "I2C_MST_RST", Description: "Reset auxiliary master", Values: "1=Reset"},
			}},
		{Address: regExtSensData00, Name: "EXT_SENS_DATA_00", Description: "Shadow data area start", Access: "R"},
	}
}
