package enrich

import (
	"regexp"
	"strings"
)

//Keys whose value names the owning organization, in the order common
//WHOIS servers emit them
var whoisOrgKeys = []string{
	"OrgName",
	"Org-name",
	"org-name",
	"Organization",
	"Org",
	"owner",
	"descr",
	"netname",
	"CustName",
	"customer",
}

//Keys whose value carries the origin AS number
var whoisASNKeys = []string{
	"OriginAS",
	"origin",
	"originas",
	"aut-num",
	"ASName",
}

var asnPattern = regexp.MustCompile(`(?i)AS\d+`)

//WhoisResult is the parsed output of one WHOIS lookup
type WhoisResult struct {
	Name    string
	RawLine string
	ASN     string
}

//ParseWhois scans WHOIS output for the first organization line and any
//AS number preceding it. Lines without a colon are skipped.
func ParseWhois(text string) WhoisResult {
	var result WhoisResult
	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if value == "" {
			continue
		}

		if result.ASN == "" && inKeys(key, whoisASNKeys) {
			result.ASN = extractASN(value)
		}

		if inKeys(key, whoisOrgKeys) {
			result.Name = value
			result.RawLine = key + ": " + value
			return result
		}
	}
	return result
}

func extractASN(value string) string {
	match := asnPattern.FindString(value)
	return strings.ToUpper(match)
}

func inKeys(key string, keys []string) bool {
	for _, k := range keys {
		if key == k {
			return true
		}
	}
	return false
}
