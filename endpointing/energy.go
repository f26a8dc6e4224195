package endpointing

import (
	"encoding/binary"
	"math"
)

// RMS is the root-mean-square amplitude of a chunk of little-endian PCM
// samples, used as the loudness measure for endpointing.
func RMS(chunk []byte, sampleWidth int) float64 {
	if sampleWidth != 2 {
		return 0
	}

	n := len(chunk) / sampleWidth
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(chunk[i*sampleWidth:]))
		sum += float64(s) * float64(s)
	}

	return math.Sqrt(sum / float64(n))
}
