package sentinel

import (
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/netmon-dev/netmon/pkg/connection"
)

//AgentBatch is one event upload from a router collector
type AgentBatch struct {
	RouterID string       `json:"router_id"`
	SentAt   time.Time    `json:"sent_at"`
	Events   []AgentEvent `json:"events"`
}

//AgentEvent wraps one typed event in a batch
type AgentEvent struct {
	Type string          `json:"type"`
	TS   time.Time       `json:"ts"`
	Data jsoniter.RawMessage `json:"data"`
}

//flowEvent is the payload of a "flow" event. The collector reports the
//layer 4 protocol as either a number or a name.
type flowEvent struct {
	Event        string      `json:"event"`
	State        string      `json:"state"`
	SrcIP        string      `json:"src_ip"`
	DstIP        string      `json:"dst_ip"`
	SrcPort      int         `json:"src_port"`
	DstPort      int         `json:"dst_port"`
	L4Proto      interface{} `json:"l4proto"`
	Dir          string      `json:"dir"`
	Flags        string      `json:"flags"`
	BytesOrig    int64       `json:"bytes_orig"`
	BytesReply   int64       `json:"bytes_reply"`
	PacketsOrig  int64       `json:"packets_orig"`
	PacketsReply int64       `json:"packets_reply"`
	FirstSeen    time.Time   `json:"first_seen"`
	LastSeen     time.Time   `json:"last_seen"`
}

//IngestResult summarizes one processed batch
type IngestResult struct {
	Flows      int
	Heartbeats int
	Ignored    int
	Rejected   int

	DevicesUpserted     int
	RemoteHostsUpserted int
	ConnectionsUpserted int
}

//IngestAgentBatch folds a collector's event batch into the store
//through the same path snapshot flows take. Malformed events are
//counted and skipped, never fatal.
func (e *Engine) IngestAgentBatch(raw []byte, now time.Time) (IngestResult, error) {
	var batch AgentBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return IngestResult{}, err
	}

	var result IngestResult
	engineResult := Result{}
	cycle := make(map[string]*cycleStats)

	for _, event := range batch.Events {
		switch event.Type {
		case "flow":
			ts := event.TS
			if ts.IsZero() {
				ts = now
			}
			e.ingestFlowEvent(event.Data, ts, &result, &engineResult, cycle)
		case "heartbeat":
			result.Heartbeats++
		default:
			result.Ignored++
		}
	}

	for _, stats := range cycle {
		err := e.foldCycleCardinality(stats)
		if err != nil {
			return result, err
		}
	}

	result.DevicesUpserted = engineResult.DevicesUpserted
	result.RemoteHostsUpserted = engineResult.RemoteHostsUpserted
	result.ConnectionsUpserted = engineResult.ConnectionsUpserted
	return result, nil
}

func (e *Engine) ingestFlowEvent(data jsoniter.RawMessage, ts time.Time, result *IngestResult, engineResult *Result, cycle map[string]*cycleStats) {
	var flow flowEvent
	if err := json.Unmarshal(data, &flow); err != nil {
		result.Rejected++
		return
	}
	if flow.SrcIP == "" || flow.DstIP == "" {
		result.Rejected++
		return
	}
	if !e.filter.OutboundPair(flow.SrcIP, flow.DstIP) {
		result.Ignored++
		return
	}

	obs := connection.Observation{
		Proto:   normalizeProto(flow.L4Proto),
		SrcIP:   flow.SrcIP,
		SrcPort: flow.SrcPort,
		DstIP:   flow.DstIP,
		DstPort: flow.DstPort,
		State:   normalizeState(flow.State, flow.Event),
		Flags:   normalizeFlags(flow.Flags, flow.Dir),
		Counters: connection.Counters{
			UplinkBytes:     flow.BytesOrig,
			DownlinkBytes:   flow.BytesReply,
			UplinkPackets:   flow.PacketsOrig,
			DownlinkPackets: flow.PacketsReply,
		},
		FirstSeen: flow.FirstSeen,
		LastSeen:  flow.LastSeen,
	}

	if err := e.ingestFlow(obs, ts, engineResult, cycle); err != nil {
		e.log.WithFields(log.Fields{
			"src":   flow.SrcIP,
			"dst":   flow.DstIP,
			"error": err.Error(),
		}).Error("could not ingest agent flow")
		result.Rejected++
		return
	}
	result.Flows++
}

//normalizeProto maps the collector's numeric protocol to its name.
//Numbers without a name mapping keep their decimal form, so ICMP
//arrives as "1" rather than "unknown".
func normalizeProto(value interface{}) string {
	switch v := value.(type) {
	case float64:
		switch int(v) {
		case 6:
			return "tcp"
		case 17:
			return "udp"
		}
		return strconv.Itoa(int(v))
	case string:
		if v != "" {
			return strings.ToLower(v)
		}
	}
	return "unknown"
}

//normalizeState strips the collector's Event prefix and upcases, so
//EventUpdate becomes UPDATE
func normalizeState(state, event string) string {
	value := state
	if value == "" {
		value = event
	}
	if value == "" {
		return ""
	}
	if len(value) >= 5 && strings.EqualFold(value[:5], "Event") {
		value = value[5:]
	}
	return strings.ToUpper(value)
}

func normalizeFlags(flags, dir string) string {
	value := flags
	if value == "" {
		value = dir
	}
	return strings.ToUpper(value)
}
