// Package hexdump formats arbitrary byte slices for diagnostic logging:
// the classic 16-bytes-per-row offset/hex/ASCII layout, used wherever the
// bootloader needs to log a raw frame or buffer for debugging (spec §6's
// Logger.Debug calls are the expected consumer).
package hexdump

import (
	"strconv"
	"strings"
)

const bytesPerRow = 16
const bytesPerGroup = 8
const hexColumnWidth = bytesPerGroup*3 - 1 // "xx " * 8, minus the last trailing space

// String renders data as a multi-row hex dump: each row is an 8-digit
// hex offset, two space-separated 8-byte hex groups, and the row's ASCII
// rendering (non-printable bytes shown as '.'), all padded so that every
// row, including the last partial one, lines up.
func String(data []byte) string {
	var rows []string
	for off := 0; off < len(data); off += bytesPerRow {
		end := off + bytesPerRow
		if end > len(data) {
			end = len(data)
		}
		rows = append(rows, formatRow(off, data[off:end]))
	}
	return strings.Join(rows, "\n")
}

func formatRow(offset int, row []byte) string {
	var b strings.Builder
	b.WriteString(pad8Hex(offset))
	b.WriteString("  ")
	b.WriteString(formatGroup(firstN(row, 0, bytesPerGroup)))
	b.WriteString("  ")
	b.WriteString(formatGroup(firstN(row, bytesPerGroup, bytesPerRow)))
	b.WriteString("  ")
	b.WriteString(formatASCII(row))
	return b.String()
}

func firstN(row []byte, start, end int) []byte {
	if start >= len(row) {
		return nil
	}
	if end > len(row) {
		end = len(row)
	}
	return row[start:end]
}

func formatGroup(chunk []byte) string {
	parts := make([]string, len(chunk))
	for i, x := range chunk {
		parts[i] = pad2Hex(x)
	}
	s := strings.Join(parts, " ")
	return padRight(s, hexColumnWidth)
}

func formatASCII(row []byte) string {
	var b strings.Builder
	for _, x := range row {
		if x >= 32 && x < 127 {
			b.WriteByte(x)
		} else {
			b.WriteByte('.')
		}
	}
	return padRight(b.String(), bytesPerRow)
}

func pad8Hex(v int) string {
	s := strconv.FormatInt(int64(v), 16)
	for len(s) < 8 {
		s = "0" + s
	}
	return s
}

func pad2Hex(v byte) string {
	s := strconv.FormatInt(int64(v), 16)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}
