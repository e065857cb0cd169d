package analysis

// ComputeRiskDrivers splits the weighted impairment into per-domain
// percentages. When no domain is impaired every driver is zero.
func (s *Scorer) ComputeRiskDrivers(d DomainScores) RiskDrivers {
	c := s.Impairment(d)
	total := 0.0
	for _, v := range c {
		total += v
	}
	if total <= 0 {
		total = 1
	}
	pct := func(v float64) float64 { return round(v/total*100, 1) }
	return RiskDrivers{
		Speech:    pct(c[0]),
		Memory:    pct(c[1]),
		Reaction:  pct(c[2]),
		Executive: pct(c[3]),
		Motor:     pct(c[4]),
	}
}
