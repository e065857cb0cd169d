package analysis

// RetestThreshold is the confidence below which a retest is recommended.
const RetestThreshold = 0.75

// RetestMessage is shown whenever a retest is recommended.
const RetestMessage = "Results may be less reliable due to fatigue or incomplete test data. Please retake the assessment when you are well rested."

// FatiguePenalty sums the weights of the true fatigue flags.
func FatiguePenalty(f FatigueFlags) float64 {
	p := 0.0
	if f.Tired {
		p += 0.10
	}
	if f.SleepDeprived {
		p += 0.12
	}
	if f.Sick {
		p += 0.08
	}
	if f.Anxious {
		p += 0.06
	}
	return p
}

// ComputeConfidence discounts confidence for missing data and fatigue.
func ComputeConfidence(missingRatio float64, flags FatigueFlags) ConfidenceResult {
	confidence := clip(1-clip(missingRatio, 0, 1)-FatiguePenalty(flags), 0, 1)
	result := ConfidenceResult{
		Confidence:      round(confidence, 4),
		RecommendRetest: confidence < RetestThreshold,
	}
	if result.RecommendRetest {
		msg := RetestMessage
		result.RetestMessage = &msg
	}
	return result
}

// MissingDataRatio is the share of submitted test sections that carry no
// measurement. Sections the caller did not submit are not counted, so an
// empty request has a ratio of zero.
func MissingDataRatio(req AssessmentRequest) float64 {
	submitted, empty := 0, 0
	count := func(present, hasData bool) {
		if !present {
			return
		}
		submitted++
		if !hasData {
			empty++
		}
	}

	if req.Speech != nil {
		s := req.Speech
		count(true, req.SpeechAudio != "" || s.WPM != nil || s.SpeedDeviation != nil ||
			s.SpeechVariability != nil || s.PauseRatio != nil || s.CompletionRatio != nil ||
			s.RestartCount != nil || s.StartDelay != nil)
	} else if req.SpeechAudio != "" {
		count(true, true)
	}

	if req.Memory != nil {
		m := req.Memory
		count(true, m.ImmediateRecall != nil || m.DelayedRecall != nil || m.RecallLatency != nil ||
			m.OrderMatch != nil || m.IntrusionCount != nil)
	} else if req.MemoryResults != nil {
		count(true, len(req.MemoryResults) > 0)
	}

	if req.Reaction != nil {
		count(true, len(req.Reaction.Times) > 0 || len(req.ReactionTimes) > 0)
	} else if req.ReactionTimes != nil {
		count(true, len(req.ReactionTimes) > 0)
	}

	if req.Stroop != nil {
		s := req.Stroop
		count(true, (s.TotalTrials != nil && *s.TotalTrials > 0) || s.MeanRT != nil || s.IncongruentRT != nil)
	}

	if req.Tap != nil {
		count(true, len(req.Tap.Intervals) > 0)
	}

	if submitted == 0 {
		return 0
	}
	return float64(empty) / float64(submitted)
}
