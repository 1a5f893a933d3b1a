package render

import "strings"

// runeWidth is the number of terminal cells r occupies.
func runeWidth(r rune) int {
	switch {
	case r < 0x20 || r == 0x7f:
		return 0
	case r < 0x300:
		return 1
	case r <= 0x36f, r == 0x200b, r == 0x200c, r == 0x200d, r == 0xfeff,
		r >= 0xfe00 && r <= 0xfe0f:
		return 0
	case r >= 0x1100 && r <= 0x115f,
		r >= 0x2e80 && r <= 0xa4cf,
		r >= 0xac00 && r <= 0xd7a3,
		r >= 0xf900 && r <= 0xfaff,
		r >= 0xff00 && r <= 0xff60,
		r >= 0x1f300 && r <= 0x1faff,
		r >= 0x20000 && r <= 0x3fffd:
		return 2
	}
	return 1
}

// StringWidth returns the display width of s in terminal cells.
func StringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += runeWidth(r)
	}
	return w
}

// WrapText wraps text at word boundaries so no line exceeds width cells.
// Existing newlines are kept; words wider than a line are split.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var line strings.Builder
		lw := 0
		for _, word := range words {
			ww := StringWidth(word)
			if lw > 0 && lw+1+ww <= width {
				line.WriteByte(' ')
				line.WriteString(word)
				lw += 1 + ww
				continue
			}
			if lw > 0 {
				lines = append(lines, line.String())
				line.Reset()
				lw = 0
			}
			if ww <= width {
				line.WriteString(word)
				lw = ww
				continue
			}
			pieces := splitWord(word, width)
			lines = append(lines, pieces[:len(pieces)-1]...)
			last := pieces[len(pieces)-1]
			line.WriteString(last)
			lw = StringWidth(last)
		}
		if lw > 0 {
			lines = append(lines, line.String())
		}
	}
	return lines
}

func splitWord(word string, width int) []string {
	var out []string
	var b strings.Builder
	w := 0
	for _, r := range word {
		rw := runeWidth(r)
		if w+rw > width && w > 0 {
			out = append(out, b.String())
			b.Reset()
			w = 0
		}
		b.WriteRune(r)
		w += rw
	}
	return append(out, b.String())
}
