package daemon

import (
	"math"
	"strconv"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a raw byte count with 1024-based units, rounded to
// two decimals: 0 -> "0 B", 1024 -> "1 KB", 1536 -> "1.5 KB". Display only;
// the raw count stays the source of truth.
func FormatBytes(n uint64) string {
	if n == 0 {
		return "0 B"
	}

	const k = 1024
	i := 0
	div := uint64(1)
	for i < len(byteUnits)-1 && n/div >= k {
		div *= k
		i++
	}
	v := math.Round(float64(n)/float64(div)*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}
