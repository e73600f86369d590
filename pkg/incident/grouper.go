package incident

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/pkg/anomaly"
	"github.com/netmon-dev/netmon/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//deviceTriggerCodes fire one incident per device rather than one per
//destination, since the behavior they describe is device wide
var deviceTriggerCodes = []string{anomaly.CodeHighFanout, anomaly.CodePortScanLike}

//Finding is one scored flow handed to the grouper
type Finding struct {
	DeviceIP     string
	RemoteHostIP string
	Proto        string
	SrcIP        string
	DstIP        string
	DstPort      int
	Score        int
	TotalBytes   int64
	Reasons      []anomaly.Reason
}

//Grouper records raw hits and folds alertable findings into
//time-windowed incidents
type Grouper struct {
	repo Repository
	conf *config.Config
	log  *log.Logger
}

//NewGrouper creates a Grouper over the given hit/incident repository
func NewGrouper(repo Repository, conf *config.Config, logger *log.Logger) *Grouper {
	return &Grouper{
		repo: repo,
		conf: conf,
		log:  logger,
	}
}

//Emit processes one scored finding. Findings with no reasons are
//ignored. A finding inside the dedup window of an earlier identical
//finding is dropped entirely.
func (g *Grouper) Emit(f Finding, now time.Time) error {
	if len(f.Reasons) == 0 {
		return nil
	}

	alertCfg := g.conf.S.Alert
	codes := make([]string, 0, len(f.Reasons))
	for _, reason := range f.Reasons {
		codes = append(codes, reason.Code)
	}

	fingerprint := Fingerprint(f.DeviceIP, f.DstIP, f.DstPort, f.Proto, codes, alertCfg.RequiredCodes)

	suppressed, err := g.repo.HitSuppressed(fingerprint, now)
	if err != nil {
		return err
	}
	if suppressed {
		return nil
	}

	alertable := Alertable(f.Score, codes, alertCfg)

	reasonsJSON, err := json.MarshalToString(f.Reasons)
	if err != nil {
		return err
	}

	dedup := time.Duration(g.conf.S.Scoring.DedupSuppressSeconds) * time.Second
	err = g.repo.RecordHit(Hit{
		OccurredAt:      now,
		DeviceIP:        f.DeviceIP,
		RemoteHostIP:    f.RemoteHostIP,
		Proto:           f.Proto,
		SrcIP:           f.SrcIP,
		DstIP:           f.DstIP,
		DstPort:         f.DstPort,
		Score:           f.Score,
		TotalBytes:      f.TotalBytes,
		Summary:         strings.Join(codes, ","),
		ReasonsJSON:     reasonsJSON,
		Fingerprint:     fingerprint,
		Alertable:       alertable,
		SuppressedUntil: now.Add(dedup),
	})
	if err != nil {
		return err
	}

	if !alertable {
		return nil
	}

	window := time.Duration(alertCfg.IncidentWindowSeconds) * time.Second
	created, err := g.repo.UpsertIncident(Update{
		Fingerprint: fingerprint,
		DeviceIP:    f.DeviceIP,
		DstIP:       f.DstIP,
		DstPort:     f.DstPort,
		Proto:       f.Proto,
		CodesCSV:    strings.Join(uniqueSorted(codes), ","),
		Score:       f.Score,
	}, now, window)
	if err != nil {
		return err
	}
	if created {
		g.log.WithFields(log.Fields{
			"fingerprint": fingerprint,
			"device":      f.DeviceIP,
			"score":       f.Score,
		}).Info("opened incident")
	}

	for _, code := range codes {
		if !util.StringInSlice(code, deviceTriggerCodes) {
			continue
		}
		_, err := g.repo.UpsertIncident(Update{
			Fingerprint: DeviceFingerprint(f.DeviceIP, code),
			DeviceIP:    f.DeviceIP,
			CodesCSV:    code,
			Score:       f.Score,
		}, now, window)
		if err != nil {
			return err
		}
	}
	return nil
}
