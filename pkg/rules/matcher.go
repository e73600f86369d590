package rules

import log "github.com/sirupsen/logrus"

//Matcher adapts a Repository to the boolean matching interface the
//anomaly scorer consumes. Lookup errors are logged and treated as no
//match so a store hiccup can never allowlist traffic by accident.
type Matcher struct {
	repo Repository
	log  *log.Logger
}

//NewMatcher creates a Matcher over the given rule repository
func NewMatcher(repo Repository, logger *log.Logger) *Matcher {
	return &Matcher{repo: repo, log: logger}
}

//Allowed implements anomaly.RuleMatcher
func (m *Matcher) Allowed(kind, value, deviceIP string) bool {
	if value == "" {
		return false
	}
	matched, err := m.repo.Allowed(kind, value, deviceIP)
	if err != nil {
		m.log.WithFields(log.Fields{
			"kind":  kind,
			"value": value,
			"error": err.Error(),
		}).Error("allowlist rule lookup failed")
		return false
	}
	return matched
}

//Suppressed implements anomaly.RuleMatcher
func (m *Matcher) Suppressed(code, kind, value, deviceIP string) bool {
	if value == "" {
		return false
	}
	matched, err := m.repo.Suppressed(code, kind, value, deviceIP)
	if err != nil {
		m.log.WithFields(log.Fields{
			"code":  code,
			"kind":  kind,
			"value": value,
			"error": err.Error(),
		}).Error("suppression rule lookup failed")
		return false
	}
	return matched
}
