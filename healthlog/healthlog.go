// Package healthlog reads and writes the markdown check-in log: a pipe
// table of date, weight and body-fat rows kept in a flat file.
package healthlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const DayFormat = "2006-01-02"

// Entry is one check-in row. BodyFat is a percentage; 0 means not recorded.
type Entry struct {
	Date    time.Time
	Weight  float64
	BodyFat float64
}

func (e Entry) Day() string { return e.Date.Format(DayFormat) }

// ParseLog reads a markdown check-in table. Header rows, separator rows,
// blank lines and anything outside the table are skipped. A missing or "-"
// body-fat cell parses as 0.
func ParseLog(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "|") {
			continue
		}

		cells := splitRow(line)
		if len(cells) < 2 {
			continue
		}
		if isSeparator(cells) || isHeader(cells) {
			continue
		}

		date, err := time.ParseInLocation(DayFormat, cells[0], time.Local)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q: %w", lineNo, cells[0], err)
		}

		weight, err := parseCell(cells[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad weight %q: %w", lineNo, cells[1], err)
		}

		var bodyFat float64
		if len(cells) > 2 {
			bodyFat, err = parseCell(cells[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad body fat %q: %w", lineNo, cells[2], err)
			}
		}

		entries = append(entries, Entry{Date: date, Weight: weight, BodyFat: bodyFat})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// WriteLog rewrites the full table: deduplicated by day (last entry wins)
// and sorted ascending by date.
func WriteLog(w io.Writer, entries []Entry) error {
	entries = Dedupe(entries)

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Check-In Log")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "| Date | Weight (lbs) | Body Fat (%) |")
	fmt.Fprintln(bw, "|------|--------------|--------------|")
	for _, e := range entries {
		bf := "-"
		if e.BodyFat > 0 {
			bf = strconv.FormatFloat(e.BodyFat, 'f', 1, 64)
		}
		fmt.Fprintf(bw, "| %s | %s | %s |\n", e.Day(), strconv.FormatFloat(e.Weight, 'f', 1, 64), bf)
	}
	return bw.Flush()
}

// Dedupe collapses entries to one per day (last wins) and sorts ascending.
func Dedupe(entries []Entry) []Entry {
	byDay := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byDay[e.Day()] = e
	}

	out := make([]Entry, 0, len(byDay))
	for _, e := range byDay {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Merge combines an existing log with new entries; incoming entries replace
// existing ones that share a day.
func Merge(existing, incoming []Entry) []Entry {
	return Dedupe(append(append([]Entry{}, existing...), incoming...))
}

// LoadFile parses a log file. A missing file yields an empty log.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseLog(f)
}

// SaveFile rewrites the log file in place.
func SaveFile(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLog(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func splitRow(line string) []string {
	trimmed := strings.Trim(line, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			continue
		}
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// isHeader matches title rows like "| Date | Weight (lbs) |". Data rows start
// with a digit; a digit-leading cell that fails date parsing is reported as an
// error instead of being skipped.
func isHeader(cells []string) bool {
	return cells[0] == "" || cells[0][0] < '0' || cells[0][0] > '9'
}

func parseCell(cell string) (float64, error) {
	if cell == "" || cell == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(cell, 64)
}
