package fatnav

import (
	"time"
)

// Bit layout of directory entry dates: day 0-4, month 5-8, years since 1980 9-15.
const (
	dateDayMask   = 0x001F
	dateMonthMask = 0x01E0
	dateYearMask  = 0xFE00
	dosEpochYear  = 1980
)

// Bit layout of directory entry times: two-second units 0-4, minutes 5-10, hours 11-15.
const (
	timeHalfSecondsMask = 0x001F
	timeMinutesMask     = 0x07E0
	timeHoursMask       = 0xF800
)

// ParseDate decodes a FAT date stamp to midnight UTC of that day.
//
// Day and month 0 are invalid and yield time.Time{}, so IsZero reports them.
// A month above 12 rolls over into the next year as time.Date normalizes it.
func ParseDate(input uint16) time.Time {
	day := int(input & dateDayMask)
	month := int(input&dateMonthMask) >> 5
	year := dosEpochYear + int(input&dateYearMask)>>9

	if day == 0 || month == 0 {
		return time.Time{}
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseTime decodes a FAT time stamp, which has a two second resolution, onto
// January 1 of year 1 UTC. Midnight therefore is time.Time{}.
//
// Out of range fields are clamped to 23:59:59 instead of moving into the next day.
func ParseTime(input uint16) time.Time {
	seconds := int(input&timeHalfSecondsMask) * 2
	minutes := int(input&timeMinutesMask) >> 5
	hours := int(input&timeHoursMask) >> 11

	result := time.Date(1, 1, 1, hours, minutes, seconds, 0, time.UTC)
	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}
	return result
}
