package round

import "strconv"

// Suffix is appended to every generated document name.
const Suffix = ".xml"

// URI returns the document name for item index of round: {base}{round}/{index}.xml.
func URI(base string, round, index int) string {
	b := make([]byte, 0, len(base)+24)
	b = append(b, base...)
	b = strconv.AppendInt(b, int64(round), 10)
	b = append(b, '/')
	b = strconv.AppendInt(b, int64(index), 10)
	b = append(b, Suffix...)
	return string(b)
}

// Prefix returns the name prefix shared by all documents of a round.
func Prefix(base string, round int) string {
	return base + strconv.Itoa(round) + "/"
}
