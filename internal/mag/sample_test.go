// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRawSample(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want RawSample
	}{
		{
			name: "fresh positive sample",
			in:   []byte{0x01, 0x2C, 0x01, 0x58, 0x02, 0x84, 0x03, 0x10},
			want: RawSample{ST1: 0x01, X: 300, Y: 600, Z: 900, ST2: 0x10},
		},
		{
			name: "negative axes",
			in:   []byte{0x03, 0xFF, 0xFF, 0x00, 0x80, 0xD4, 0xFE, 0x18},
			want: RawSample{ST1: 0x03, X: -1, Y: -32768, Z: -300, ST2: 0x18},
		},
		{
			name: "stale sample",
			in:   []byte{0x00, 0x0A, 0x00, 0x0B, 0x00, 0x0C, 0x00, 0x10},
			want: RawSample{ST1: 0x00, X: 10, Y: 11, Z: 12, ST2: 0x10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRawSample(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRawSampleShortBuffer(t *testing.T) {
	_, err := DecodeRawSample(make([]byte, RawSampleSize-1))
	require.Error(t, err)
}

func TestDataReady(t *testing.T) {
	assert.True(t, RawSample{ST1: StatusDataReady}.DataReady())
	assert.True(t, RawSample{ST1: StatusDataReady | StatusOverrun}.DataReady())
	assert.False(t, RawSample{ST1: 0x00}.DataReady())
	assert.False(t, RawSample{ST1: StatusOverrun}.DataReady())
}

func TestAdjustmentApply(t *testing.T) {
	x, y, z := UnityAdjustment.Apply(32760, -32760, 0)
	assert.InDelta(t, 4912.0, x, 1e-9)
	assert.InDelta(t, -4912.0, y, 1e-9)
	assert.Zero(t, z)

	adj := Adjustment{X: 1.0, Y: 0.75, Z: 1.25}
	x, y, z = adj.Apply(1000, 1000, 1000)
	assert.InDelta(t, 1000*ScaleMicroTesla, x, 1e-9)
	assert.InDelta(t, 750*ScaleMicroTesla, y, 1e-9)
	assert.InDelta(t, 1250*ScaleMicroTesla, z, 1e-9)
}
