package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/pkg/baseline"
	"github.com/netmon-dev/netmon/pkg/remotehost"
	"github.com/netmon-dev/netmon/pkg/rules"
)

type fakeMatcher struct {
	allowed    map[string]bool
	suppressed map[string]bool
}

func (f *fakeMatcher) Allowed(kind, value, deviceIP string) bool {
	return f.allowed[kind+"|"+value]
}

func (f *fakeMatcher) Suppressed(code, kind, value, deviceIP string) bool {
	return f.suppressed[code+"|"+kind+"|"+value]
}

func emptyMatcher() *fakeMatcher {
	return &fakeMatcher{allowed: map[string]bool{}, suppressed: map[string]bool{}}
}

func testScoringCfg() config.ScoringStaticCfg {
	return config.ScoringStaticCfg{
		CommonPorts:              []int{53, 80, 123, 443},
		CommonProtos:             []string{"tcp", "udp"},
		NewWindowSeconds:         600,
		DormantRemoteDays:        30,
		HighFanoutThreshold:      30,
		HighUniquePortsThreshold: 20,
		AnomalyThreshold:         40,
		DedupSuppressSeconds:     300,
	}
}

func baseInput(now time.Time) Input {
	return Input{
		Proto:    "tcp",
		DstPort:  443,
		DeviceIP: "10.0.0.24",
		Host: remotehost.RemoteHost{
			IP:             "93.184.216.34",
			FirstSeenAt:    now.Add(-2 * time.Hour),
			LastSeenAt:     now,
			PrevLastSeenAt: now.Add(-time.Minute),
			RDNSName:       "example.com",
		},
		Now: now,
	}
}

func TestScoreQuietKnownDestination(t *testing.T) {
	now := time.Now()
	score, reasons := ScoreConnection(baseInput(now), testScoringCfg(), emptyMatcher())
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

func TestScoreIsDeterministic(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Host.FirstSeenAt = now.Add(-time.Minute)
	in.Host.RDNSName = ""
	in.DstPort = 8443

	score1, reasons1 := ScoreConnection(in, testScoringCfg(), emptyMatcher())
	score2, reasons2 := ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Equal(t, score1, score2)
	assert.Equal(t, reasons1, reasons2)
}

func TestAllowlistedIPShortCircuits(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Host.FirstSeenAt = now.Add(-time.Minute)
	in.Host.RDNSName = ""
	in.DstPort = 8443
	in.NewASN = true

	matcher := emptyMatcher()
	matcher.allowed[rules.KindIP+"|93.184.216.34"] = true

	score, reasons := ScoreConnection(in, testScoringCfg(), matcher)
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

func TestAllowlistedASNShortCircuitsViaIPKind(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Host.WhoisASN = "AS64512"
	in.Host.FirstSeenAt = now.Add(-time.Minute)

	matcher := emptyMatcher()
	matcher.allowed[rules.KindIP+"|AS64512"] = true

	score, reasons := ScoreConnection(in, testScoringCfg(), matcher)
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

func TestNewDstWeightReducedWhenOrgAllowlisted(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Host.FirstSeenAt = now.Add(-time.Minute)
	in.Host.WhoisName = "Example Networks"

	matcher := emptyMatcher()
	matcher.allowed[rules.KindOrg+"|Example Networks"] = true

	_, reasons := ScoreConnection(in, testScoringCfg(), matcher)
	assert.Len(t, reasons, 1)
	assert.Equal(t, CodeNewDst, reasons[0].Code)
	assert.Equal(t, 10, reasons[0].Weight)
}

func TestDormantDestination(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Host.PrevLastSeenAt = now.Add(-45 * 24 * time.Hour)

	_, reasons := ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Len(t, reasons, 1)
	assert.Equal(t, CodeDormantDst, reasons[0].Code)
	assert.Equal(t, 15, reasons[0].Weight)
}

func TestRarePortQUICReduction(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Proto = "udp"
	in.DstPort = 443
	score, reasons := ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)

	cfg := testScoringCfg()
	cfg.CommonPorts = []int{53, 80, 123}
	_, reasons = ScoreConnection(in, cfg, emptyMatcher())
	assert.Len(t, reasons, 1)
	assert.Equal(t, CodeRarePort, reasons[0].Code)
	assert.Equal(t, 5, reasons[0].Weight)

	in.Proto = "tcp"
	_, reasons = ScoreConnection(in, cfg, emptyMatcher())
	assert.Equal(t, 25, reasons[0].Weight)
}

func TestRarePortDroppedForAllowlistedDevicePort(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.DstPort = 8443

	matcher := emptyMatcher()
	matcher.allowed[rules.KindDevicePort+"|8443"] = true

	score, reasons := ScoreConnection(in, testScoringCfg(), matcher)
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

func TestUnexpectedProto(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Proto = "icmp"
	in.DstPort = 0

	_, reasons := ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Len(t, reasons, 1)
	assert.Equal(t, CodeUnexpectedProto, reasons[0].Code)
	assert.Equal(t, 20, reasons[0].Weight)
}

func TestNoRDNSWeights(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Host.RDNSName = "  "

	_, reasons := ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Len(t, reasons, 1)
	assert.Equal(t, CodeNoRDNS, reasons[0].Code)
	assert.Equal(t, 10, reasons[0].Weight)

	in.Host.WhoisName = "CLOUDFLARE, Inc."
	_, reasons = ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Equal(t, 2, reasons[0].Weight)

	matcher := emptyMatcher()
	matcher.allowed[rules.KindOrg+"|CLOUDFLARE, Inc."] = true
	score, reasons := ScoreConnection(in, testScoringCfg(), matcher)
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

func TestHighEgressNeedsPositiveBaseline(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Window.UplinkBytes10m = 1 << 30

	_, reasons := ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Empty(t, reasons)

	in.Baseline = baseline.Baseline{P95UplinkBytesPerMin: 1000}
	_, reasons = ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Len(t, reasons, 1)
	assert.Equal(t, CodeHighEgress, reasons[0].Code)
}

func TestPortScanLikeConjunction(t *testing.T) {
	now := time.Now()
	cfg := testScoringCfg()

	// high fanout but one dominant port must not look like a scan
	in := baseInput(now)
	in.Window = WindowStats{
		NewDstIPs10m:    30,
		UniquePorts10m:  1,
		UniqueDstIPs10m: 30,
		TopPortShare:    0.95,
	}
	_, reasons := ScoreConnection(in, cfg, emptyMatcher())
	for _, reason := range reasons {
		assert.NotEqual(t, CodePortScanLike, reason.Code)
	}

	// broad scan: dst ip count sits between the fanout floor (30) and
	// the ports floor (20), which is the one that gates the scan side
	in.Window = WindowStats{
		NewDstIPs10m:    50,
		UniquePorts10m:  25,
		UniqueDstIPs10m: 25,
		TopPortShare:    0.5,
	}
	_, reasons = ScoreConnection(in, cfg, emptyMatcher())
	codes := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		codes = append(codes, reason.Code)
	}
	assert.Contains(t, codes, CodePortScanLike)
	assert.Contains(t, codes, CodeHighFanout)
}

func TestSuppressionDropsSingleReason(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Host.FirstSeenAt = now.Add(-time.Minute)
	in.Host.RDNSName = ""

	matcher := emptyMatcher()
	matcher.suppressed[CodeNoRDNS+"|"+rules.KindIP+"|93.184.216.34"] = true

	score, reasons := ScoreConnection(in, testScoringCfg(), matcher)
	assert.Len(t, reasons, 1)
	assert.Equal(t, CodeNewDst, reasons[0].Code)
	assert.Equal(t, 30, score)
}

func TestScoreClampedAt100(t *testing.T) {
	now := time.Now()
	in := baseInput(now)
	in.Host.FirstSeenAt = now.Add(-time.Minute)
	in.Host.PrevLastSeenAt = now.Add(-60 * 24 * time.Hour)
	in.Host.RDNSName = ""
	in.Proto = "gre"
	in.DstPort = 47000
	in.NewASN = true
	in.Baseline = baseline.Baseline{P95UplinkBytesPerMin: 1}
	in.Window = WindowStats{
		UplinkBytes10m:  1 << 20,
		NewDstIPs10m:    100,
		UniquePorts10m:  50,
		UniqueDstIPs10m: 100,
		TopPortShare:    0.1,
	}

	score, reasons := ScoreConnection(in, testScoringCfg(), emptyMatcher())
	assert.Equal(t, 100, score)
	assert.True(t, len(reasons) >= 5)
}
