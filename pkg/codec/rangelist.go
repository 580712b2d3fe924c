package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRangeList parses a channel list of the form "1,3-5,9" into 1-based
// channel numbers. Ranges are inclusive. Every number must be within
// 1..max. A single "-" means an empty list.
func ParseRangeList(s string, max int) ([]int, error) {
	if s == "-" {
		return nil, nil
	}
	var out []int
	rest := s
	last := 0
	inRange := false
	for {
		i := 0
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 0 {
			return nil, fmt.Errorf("wrong channel list %q", rest)
		}
		num, _ := strconv.Atoi(rest[:i])
		if num < 1 || num > max {
			return nil, fmt.Errorf("wrong channel number %d", num)
		}

		if inRange {
			for c := last + 1; c <= num; c++ {
				out = append(out, c)
			}
		} else {
			out = append(out, num)
		}

		rest = rest[i:]
		if rest == "" {
			return out, nil
		}
		switch rest[0] {
		case ',':
			inRange = false
		case '-':
			inRange = true
		default:
			return nil, fmt.Errorf("wrong channel list %q", rest)
		}
		last = num
		rest = rest[1:]
	}
}

// FormatRangeList renders 1-based channel numbers back into the compact
// "1,3-5,9" notation, compressing contiguous runs into inclusive ranges.
// The input must be sorted ascending.
func FormatRangeList(chans []int) string {
	var b strings.Builder
	last := -1
	inRange := false
	for i, c := range chans {
		if c == last+1 {
			inRange = true
		} else {
			if inRange {
				fmt.Fprintf(&b, "-%d", last)
				inRange = false
			}
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", c)
		}
		last = c
	}
	if inRange {
		fmt.Fprintf(&b, "-%d", last)
	}
	return b.String()
}
