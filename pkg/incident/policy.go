package incident

import (
	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/util"
)

//Alertable decides whether a scored finding may open or extend an
//incident. A finding is alertable when the score meets the threshold,
//at least one required code is present (or none are configured), and
//the codes are not entirely within the suppress-if-only set.
func Alertable(score int, codes []string, cfg config.AlertStaticCfg) bool {
	if score < cfg.ThresholdScore {
		return false
	}

	if len(cfg.RequiredCodes) > 0 {
		hasRequired := false
		for _, code := range codes {
			if util.StringInSlice(code, cfg.RequiredCodes) {
				hasRequired = true
				break
			}
		}
		if !hasRequired {
			return false
		}
	}

	if len(cfg.SuppressIfOnlyCodes) > 0 && len(codes) > 0 {
		onlySuppressed := true
		for _, code := range codes {
			if !util.StringInSlice(code, cfg.SuppressIfOnlyCodes) {
				onlySuppressed = false
				break
			}
		}
		if onlySuppressed {
			return false
		}
	}

	return true
}
