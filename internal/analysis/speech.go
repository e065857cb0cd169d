package analysis

// SpeechFeatures are the speech entries of the feature vector.
type SpeechFeatures struct {
	WPM               float64
	SpeedDeviation    float64
	SpeechVariability float64
	PauseRatio        float64
	StartDelay        float64
}

// ExtractSpeech scores speech fluency. Speech rate is normalized against
// age peers; variability, pauses, restarts and a slow start cost points and
// finishing the passage earns them back.
func ExtractSpeech(m SpeechMetrics, age *int, norms NormSet) (float64, SpeechFeatures) {
	z := Normalize(m.WPM, norms.SpeechWPM, age, false)
	score := ZToScore(z)

	score -= clip((m.SpeechVariability-10)*1.5, 0, 25)
	score -= clip((m.PauseRatio-0.15)*100, 0, 25)
	score -= clip(m.RestartCount*5, 0, 15)
	score -= clip((m.StartDelay-1)*4, 0, 10)
	score += clip(m.CompletionRatio, 0, 1) * 15

	return clip(score, 0, 100), SpeechFeatures{
		WPM:               m.WPM,
		SpeedDeviation:    m.SpeedDeviation,
		SpeechVariability: m.SpeechVariability,
		PauseRatio:        m.PauseRatio,
		StartDelay:        m.StartDelay,
	}
}
