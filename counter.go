package blockcrypt

// Counter arithmetic for CTR and RandomDelta. Counters are big-endian
// integers over their full byte width.

// addCounterScalar adds n to the counter in place, propagating the carry
// leftward and stopping as soon as it clears.
func addCounterScalar(counter []byte, n uint64) {
	var carry uint64 = n
	for i := len(counter) - 1; i >= 0 && carry != 0; i-- {
		sum := uint64(counter[i]) + (carry & 0xFF)
		counter[i] = byte(sum)
		carry = carry>>8 + sum>>8
	}
}

// incrementCounter adds one to the counter in place.
func incrementCounter(counter []byte) {
	for i := len(counter) - 1; i >= 0; i-- {
		counter[i]++
		if counter[i] != 0 {
			break
		}
	}
}

// addCounterVector adds inc, aligned to the low (rightmost) end of the
// counter, with the carry continuing to propagate above the increment.
func addCounterVector(counter, inc []byte) {
	offset := len(counter) - len(inc)
	carry := 0
	for i := len(inc) - 1; i >= 0; i-- {
		sum := int(counter[offset+i]) + int(inc[i]) + carry
		counter[offset+i] = byte(sum)
		carry = sum >> 8
	}
	for i := offset - 1; i >= 0 && carry != 0; i-- {
		sum := int(counter[i]) + carry
		counter[i] = byte(sum)
		carry = sum >> 8
	}
}
