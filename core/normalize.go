package core

// normalizeRange applies GETRANGE's index-normalization rules, reused for
// LRANGE/LTRIM: negative indices count from the end, out-of-range
// starts/ends clamp instead of erroring, and the result is empty whenever
// the sequence is empty or the range inverts.
func normalizeRange(length, start, end int) (normStart, normEnd int, ok bool) {
	if length <= 0 {
		return 0, 0, false
	}

	if start < 0 {
		start += length
		if start < 0 {
			start = 0
		}
	}
	if end < 0 {
		end += length
		if end < 0 {
			end = 0
		}
	}

	if start >= length {
		return 0, 0, false
	}
	if end >= length {
		end = length - 1
	}
	if end < start {
		return 0, 0, false
	}

	return start, end, true
}

// normalizeIndex converts a possibly-negative single index (LINDEX) into a
// 0-based offset, reporting whether it lands in [0, length).
func normalizeIndex(length, index int) (int, bool) {
	if index < 0 {
		index += length
	}
	if index < 0 || index >= length {
		return 0, false
	}
	return index, true
}
