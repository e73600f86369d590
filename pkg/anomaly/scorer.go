package anomaly

import (
	"strconv"
	"strings"
	"time"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/pkg/baseline"
	"github.com/netmon-dev/netmon/pkg/remotehost"
	"github.com/netmon-dev/netmon/pkg/rules"
	"github.com/netmon-dev/netmon/util"
)

//Reason codes
const (
	CodeNewDst          = "NEW_DST"
	CodeDormantDst      = "DORMANT_DST"
	CodeNewASN          = "NEW_ASN"
	CodeRarePort        = "RARE_PORT"
	CodeUnexpectedProto = "UNEXPECTED_PROTO"
	CodeNoRDNS          = "NO_RDNS"
	CodeHighEgress      = "HIGH_EGRESS"
	CodeHighFanout      = "HIGH_FANOUT"
	CodePortScanLike    = "PORT_SCAN_LIKE"
)

//Reason is one triggered scoring rule
type Reason struct {
	Code   string `json:"code"`
	Weight int    `json:"weight"`
	Detail string `json:"detail"`
}

//WindowStats summarizes a device's trailing 10 minute window
type WindowStats struct {
	UplinkBytes10m  int64
	NewDstIPs10m    int
	UniquePorts10m  int
	UniqueDstIPs10m int
	TopPortShare    float64
}

//RuleMatcher answers allowlist and suppression lookups for the scorer.
//Implementations must be read only so scoring stays deterministic for
//fixed inputs.
type RuleMatcher interface {
	Allowed(kind, value, deviceIP string) bool
	Suppressed(code, kind, value, deviceIP string) bool
}

//Input carries everything ScoreConnection evaluates. NewASN is looked
//up by the caller so the scorer itself stays free of store access.
type Input struct {
	Proto    string
	DstPort  int
	DeviceIP string
	Host     remotehost.RemoteHost
	Baseline baseline.Baseline
	Window   WindowStats
	NewASN   bool
	Now      time.Time
}

//Organizations whose hosts routinely lack reverse DNS
var cdnKeywords = []string{
	"cloudflare", "akamai", "fastly", "amazon", "aws",
	"google", "microsoft", "azure", "cdn", "edgecast", "limelight",
}

//ScoreConnection evaluates one flow against the scoring rules and
//returns the clamped score with the surviving reasons. It is a pure
//function of its inputs and the matcher's rule set.
func ScoreConnection(in Input, cfg config.ScoringStaticCfg, matcher RuleMatcher) (int, []Reason) {
	asn := in.Host.WhoisASN
	org := in.Host.WhoisName

	if matcher.Allowed(rules.KindIP, in.Host.IP, in.DeviceIP) ||
		(asn != "" && matcher.Allowed(rules.KindIP, asn, in.DeviceIP)) ||
		(org != "" && matcher.Allowed(rules.KindIP, org, in.DeviceIP)) {
		return 0, nil
	}

	orgAllowlisted := (asn != "" && matcher.Allowed(rules.KindASN, asn, in.DeviceIP)) ||
		(org != "" && matcher.Allowed(rules.KindOrg, org, in.DeviceIP))

	var reasons []Reason

	newWindow := time.Duration(cfg.NewWindowSeconds) * time.Second
	if !in.Host.FirstSeenAt.IsZero() && !in.Host.FirstSeenAt.Before(in.Now.Add(-newWindow)) {
		weight := 30
		if orgAllowlisted {
			weight = 10
		}
		reasons = append(reasons, Reason{Code: CodeNewDst, Weight: weight, Detail: in.Host.IP})
	}

	dormant := time.Duration(cfg.DormantRemoteDays) * 24 * time.Hour
	if !in.Host.PrevLastSeenAt.IsZero() && in.Host.PrevLastSeenAt.Before(in.Now.Add(-dormant)) {
		reasons = append(reasons, Reason{Code: CodeDormantDst, Weight: 15, Detail: in.Host.IP})
	}

	if in.NewASN {
		reasons = append(reasons, Reason{Code: CodeNewASN, Weight: 20, Detail: in.Host.ASN()})
	}

	proto := strings.ToLower(in.Proto)
	if in.DstPort > 0 && !util.IntInSlice(in.DstPort, cfg.CommonPorts) {
		port := strconv.Itoa(in.DstPort)
		if !matcher.Allowed(rules.KindDevicePort, port, in.DeviceIP) {
			weight := 25
			if proto == "udp" && in.DstPort == 443 {
				weight = 5
			}
			reasons = append(reasons, Reason{Code: CodeRarePort, Weight: weight, Detail: port})
		}
	}

	if proto != "" && !util.StringInSlice(proto, cfg.CommonProtos) {
		reasons = append(reasons, Reason{Code: CodeUnexpectedProto, Weight: 20, Detail: proto})
	}

	if strings.TrimSpace(in.Host.RDNSName) == "" {
		weight := 10
		if orgAllowlisted {
			weight = 0
		} else if matchesCDNKeyword(org) {
			weight = 2
		}
		if weight > 0 {
			reasons = append(reasons, Reason{Code: CodeNoRDNS, Weight: weight, Detail: in.Host.IP})
		}
	}

	if in.Baseline.P95UplinkBytesPerMin > 0 {
		threshold := in.Baseline.P95UplinkBytesPerMin * 10 * 3
		if in.Window.UplinkBytes10m > threshold {
			reasons = append(reasons, Reason{
				Code:   CodeHighEgress,
				Weight: 25,
				Detail: strconv.FormatInt(in.Window.UplinkBytes10m, 10),
			})
		}
	}

	fanoutThreshold := util.Max(in.Baseline.P95NewDstIPsPer10m*3, cfg.HighFanoutThreshold)
	if in.Window.NewDstIPs10m > fanoutThreshold {
		reasons = append(reasons, Reason{
			Code:   CodeHighFanout,
			Weight: 25,
			Detail: strconv.Itoa(in.Window.NewDstIPs10m),
		})
	}

	portsThreshold := util.Max(in.Baseline.P95UniquePortsPer10m*3, cfg.HighUniquePortsThreshold)
	scanDstThreshold := util.Max(in.Baseline.P95NewDstIPsPer10m*3, cfg.HighUniquePortsThreshold)
	if in.Window.UniquePorts10m > portsThreshold &&
		in.Window.UniqueDstIPs10m > scanDstThreshold &&
		in.Window.TopPortShare < 0.80 {
		reasons = append(reasons, Reason{
			Code:   CodePortScanLike,
			Weight: 25,
			Detail: strconv.Itoa(in.Window.UniquePorts10m),
		})
	}

	reasons = dropSuppressed(reasons, in, asn, org, matcher)

	score := 0
	for _, reason := range reasons {
		score += reason.Weight
	}
	score = util.Min(util.Max(score, 0), 100)
	return score, reasons
}

func dropSuppressed(reasons []Reason, in Input, asn, org string, matcher RuleMatcher) []Reason {
	if len(reasons) == 0 {
		return reasons
	}

	port := ""
	if in.DstPort > 0 {
		port = strconv.Itoa(in.DstPort)
	}

	kept := reasons[:0]
	for _, reason := range reasons {
		if matcher.Suppressed(reason.Code, rules.KindIP, in.Host.IP, in.DeviceIP) ||
			matcher.Suppressed(reason.Code, rules.KindASN, asn, in.DeviceIP) ||
			matcher.Suppressed(reason.Code, rules.KindOrg, org, in.DeviceIP) ||
			matcher.Suppressed(reason.Code, rules.KindPort, port, in.DeviceIP) ||
			matcher.Suppressed(reason.Code, rules.KindDevicePort, port, in.DeviceIP) {
			continue
		}
		kept = append(kept, reason)
	}
	return kept
}

func matchesCDNKeyword(org string) bool {
	lowered := strings.ToLower(org)
	if lowered == "" {
		return false
	}
	for _, keyword := range cdnKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
