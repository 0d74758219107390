package timedates

const hour = 60 * 60

// zoneAbbreviations maps zone abbreviations to their UTC offset in seconds.
// IST and other abbreviations with several common readings are left out;
// CST and AST take their North American reading.
var zoneAbbreviations = map[string]int{
	"UT":   0,
	"GMT":  0,
	"WET":  0,
	"WEST": 1 * hour,
	"BST":  1 * hour,
	"CET":  1 * hour,
	"CEST": 2 * hour,
	"MET":  1 * hour,
	"MEST": 2 * hour,
	"EET":  2 * hour,
	"EEST": 3 * hour,
	"MSK":  3 * hour,
	"SAST": 2 * hour,
	"HKT":  8 * hour,
	"SGT":  8 * hour,
	"AWST": 8 * hour,
	"JST":  9 * hour,
	"KST":  9 * hour,
	"ACST": 9*hour + 30*60,
	"ACDT": 10*hour + 30*60,
	"AEST": 10 * hour,
	"AEDT": 11 * hour,
	"NZST": 12 * hour,
	"NZDT": 13 * hour,
	"HST":  -10 * hour,
	"AKST": -9 * hour,
	"AKDT": -8 * hour,
	"PST":  -8 * hour,
	"PDT":  -7 * hour,
	"MST":  -7 * hour,
	"MDT":  -6 * hour,
	"CST":  -6 * hour,
	"CDT":  -5 * hour,
	"EST":  -5 * hour,
	"EDT":  -4 * hour,
	"AST":  -4 * hour,
	"NST":  -3*hour - 30*60,
}
