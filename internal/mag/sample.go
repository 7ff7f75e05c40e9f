// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mag

import (
	"encoding/binary"
	"fmt"
	"time"
)

// ST1/ST2 status bits of the AK8963 read block.
const (
	StatusDataReady = 0x01 // ST1 DRDY
	StatusOverrun   = 0x02 // ST1 DOR
	StatusOverflow  = 0x08 // ST2 HOFL
)

// RawSampleSize is the size of the AK8963 read block the auxiliary master
// copies into the parent's shadow area each fetch cycle: ST1, six data bytes,
// ST2.
const RawSampleSize = 8

// ScaleMicroTesla converts a raw 16-bit count to µT (±4912 µT full scale).
const ScaleMicroTesla = 4912.0 / 32760.0

// RawSample mirrors the AK8963 register block starting at ST1.
// Axis values are little-endian int16 on the wire (HXL before HXH).
type RawSample struct {
	ST1 byte
	X   int16
	Y   int16
	Z   int16
	ST2 byte
}

// DecodeRawSample parses the shadow-area bytes into a RawSample.
func DecodeRawSample(b []byte) (RawSample, error) {
	if len(b) < RawSampleSize {
		return RawSample{}, fmt.Errorf("raw sample: need %d bytes, got %d", RawSampleSize, len(b))
	}
	return RawSample{
		ST1: b[0],
		X:   int16(binary.LittleEndian.Uint16(b[1:3])),
		Y:   int16(binary.LittleEndian.Uint16(b[3:5])),
		Z:   int16(binary.LittleEndian.Uint16(b[5:7])),
		ST2: b[7],
	}, nil
}

// DataReady reports whether the block holds a fresh measurement.
func (s RawSample) DataReady() bool {
	return s.ST1&StatusDataReady != 0
}

// Sample is a gated, axis-corrected magnetometer sample as republished by the
// driver. X/Y/Z are raw counts already remapped into the board inertial frame.
type Sample struct {
	Tag         string    `json:"tag"`
	Timestamp   time.Time `json:"time"`
	X           int16     `json:"mx"`
	Y           int16     `json:"my"`
	Z           int16     `json:"mz"`
	External    bool      `json:"external"`
	Temperature float64   `json:"temp_c"`
}

// Publisher receives gated samples. The MQTT producer implements this for
// real runs; tests capture samples directly.
type Publisher interface {
	Publish(Sample)
}

// Adjustment holds the per-axis factory sensitivity correction factors
// derived from the AK8963 fuse ROM. The zero value is not meaningful; use
// UnityAdjustment when no calibration is available.
type Adjustment struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// UnityAdjustment is the no-op correction.
var UnityAdjustment = Adjustment{X: 1, Y: 1, Z: 1}

// Apply converts raw counts to µT with the sensitivity correction applied.
func (a Adjustment) Apply(x, y, z int16) (float64, float64, float64) {
	return float64(x) * a.X * ScaleMicroTesla,
		float64(y) * a.Y * ScaleMicroTesla,
		float64(z) * a.Z * ScaleMicroTesla
}
