package incident

import (
	"sort"
	"strconv"
	"strings"

	"github.com/netmon-dev/netmon/util"
)

//noiseCodes never participate in fingerprints so findings that differ
//only by reverse DNS noise collapse together
var noiseCodes = []string{"NO_RDNS"}

//DevicePrefix marks fingerprints of device-level triggers
const DevicePrefix = "DEVICE"

//Fingerprint builds the stable identity of a finding from its flow and
//its reason codes. When requiredCodes is configured and intersects the
//finding's codes, only the intersection identifies the finding.
func Fingerprint(deviceIP, dstIP string, dstPort int, proto string, codes []string, requiredCodes []string) string {
	kept := make([]string, 0, len(codes))
	for _, code := range codes {
		if !util.StringInSlice(code, noiseCodes) {
			kept = append(kept, code)
		}
	}

	if len(requiredCodes) > 0 {
		intersection := make([]string, 0, len(kept))
		for _, code := range kept {
			if util.StringInSlice(code, requiredCodes) {
				intersection = append(intersection, code)
			}
		}
		if len(intersection) > 0 {
			kept = intersection
		}
	}

	kept = uniqueSorted(kept)
	return strings.Join([]string{
		deviceIP,
		dstIP,
		strconv.Itoa(dstPort),
		proto,
		strings.Join(kept, ","),
	}, "|")
}

//DeviceFingerprint builds the identity of a device-wide trigger, which
//is independent of any particular destination
func DeviceFingerprint(deviceIP, code string) string {
	return strings.Join([]string{DevicePrefix, deviceIP, code}, "|")
}

func uniqueSorted(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
