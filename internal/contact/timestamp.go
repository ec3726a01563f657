package contact

import (
	"fmt"
	"time"
)

// wib is Western Indonesian Time. Indonesia has no daylight saving, so a
// fixed zone avoids depending on the host's tzdata.
var wib = time.FixedZone("WIB", 7*60*60)

var (
	indonesianDays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

	indonesianMonths = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember"}
)

// FormatSentAt renders t the way messages are stamped, e.g.
// "Senin, 19 Oktober 2026 pukul 14.05.09 WIB". The result depends only on
// the instant t, never on the server's time zone.
func FormatSentAt(t time.Time) string {
	l := t.In(wib)
	return fmt.Sprintf("%s, %d %s %d pukul %02d.%02d.%02d WIB",
		indonesianDays[l.Weekday()], l.Day(), indonesianMonths[l.Month()-1], l.Year(),
		l.Hour(), l.Minute(), l.Second())
}
