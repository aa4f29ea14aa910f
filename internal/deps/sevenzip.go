package deps

import (
	"fmt"
	"strings"
)

// CheckSevenZip reports the first 7-Zip candidate present on this machine.
// It only checks presence; whether the binary starts is decided when a run
// actually locates it.
func CheckSevenZip(candidates []string) Status {
	result := Status{
		Name:        "7-Zip",
		Description: "Required to write AES-256 encrypted archives",
	}
	if len(candidates) == 0 {
		result.Detail = "no tool candidates configured"
		return result
	}

	requirements := make([]Requirement, 0, len(candidates))
	for _, candidate := range candidates {
		requirements = append(requirements, Requirement{Name: result.Name, Command: candidate})
	}
	for _, status := range CheckBinaries(requirements) {
		if status.Available {
			result.Command = status.Command
			result.Available = true
			return result
		}
	}

	result.Command = candidates[0]
	result.Detail = fmt.Sprintf("none of %d candidates found (%s)", len(candidates), strings.Join(candidates, ", "))
	return result
}
