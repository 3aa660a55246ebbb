package identity

import (
	"fmt"
	"regexp"
	"strconv"
)

const firstPatientCode = "PAT000001"

var patientCodePattern = regexp.MustCompile(`^PAT(\d+)`)

// NextPatientCode returns the code following latest. Codes look like
// PAT000042; anything that does not start with PAT followed by digits
// starts the sequence again at PAT000001.
func NextPatientCode(latest string) string {
	m := patientCodePattern.FindStringSubmatch(latest)
	if m == nil {
		return firstPatientCode
	}
	n, err := strconv.ParseUint(m[1], 10, 63)
	if err != nil {
		return firstPatientCode
	}
	return fmt.Sprintf("PAT%06d", n+1)
}
