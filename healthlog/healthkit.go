package healthlog

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	hkBodyMass = "HKQuantityTypeIdentifierBodyMass"
	hkBodyFat  = "HKQuantityTypeIdentifierBodyFatPercentage"

	// HealthKit export timestamps look like "2024-03-01 07:12:45 -0500".
	hkTimeFormat = "2006-01-02 15:04:05 -0700"

	kgToLbs = 2.2046226218
)

type hkRecord struct {
	Type      string `xml:"type,attr"`
	Unit      string `xml:"unit,attr"`
	Value     string `xml:"value,attr"`
	StartDate string `xml:"startDate,attr"`
}

// ParseHealthKitExport streams a HealthKit export.xml and collapses body-mass
// and body-fat records to the last reading per local day. Records of other
// types are skipped without being decoded into memory.
func ParseHealthKitExport(r io.Reader) ([]Entry, error) {
	type dayReading struct {
		wAt     time.Time
		bfAt    time.Time
		weight  float64
		bodyFat float64
		hasW    bool
		hasBF   bool
	}
	days := make(map[string]*dayReading)

	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("healthkit export: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Record" {
			continue
		}

		var rec hkRecord
		if err := decoder.DecodeElement(&rec, &start); err != nil {
			return nil, fmt.Errorf("healthkit record: %w", err)
		}
		if rec.Type != hkBodyMass && rec.Type != hkBodyFat {
			continue
		}

		at, err := time.Parse(hkTimeFormat, rec.StartDate)
		if err != nil {
			return nil, fmt.Errorf("healthkit record date %q: %w", rec.StartDate, err)
		}
		value, err := strconv.ParseFloat(rec.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("healthkit record value %q: %w", rec.Value, err)
		}

		// Bucket by the device's own day: the export timestamps carry the
		// offset the reading was taken in.
		day := at.Format(DayFormat)
		dr := days[day]
		if dr == nil {
			dr = &dayReading{}
			days[day] = dr
		}

		// Exports group records by type, so each type keeps its own latest
		// timestamp; a day's weight reading must not shadow its body-fat
		// readings.
		switch rec.Type {
		case hkBodyMass:
			if rec.Unit == "kg" {
				value *= kgToLbs
			}
			if !dr.hasW || at.After(dr.wAt) {
				dr.weight = value
				dr.wAt = at
				dr.hasW = true
			}
		case hkBodyFat:
			// Exports store body fat as a 0-1 fraction.
			if value <= 1 {
				value *= 100
			}
			if !dr.hasBF || at.After(dr.bfAt) {
				dr.bodyFat = value
				dr.bfAt = at
				dr.hasBF = true
			}
		}
	}

	entries := make([]Entry, 0, len(days))
	for day, dr := range days {
		if !dr.hasW {
			// Body fat without a weigh-in is not a check-in.
			continue
		}
		date, _ := time.ParseInLocation(DayFormat, day, time.Local)
		entries = append(entries, Entry{Date: date, Weight: dr.weight, BodyFat: dr.bodyFat})
	}
	return Dedupe(entries), nil
}
