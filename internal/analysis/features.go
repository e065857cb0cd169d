package analysis

// FeatureCount is the fixed length of the disease model input.
const FeatureCount = 18

// FeatureVector holds the raw values fed to the disease models, in the fixed
// order of FeatureNames.
type FeatureVector struct {
	WPM               float64 `json:"wpm"`
	SpeedDeviation    float64 `json:"speed_deviation"`
	SpeechVariability float64 `json:"speech_variability"`
	PauseRatio        float64 `json:"pause_ratio"`
	SpeechStartDelay  float64 `json:"speech_start_delay"`
	ImmediateRecall   float64 `json:"immediate_recall"`
	DelayedRecall     float64 `json:"delayed_recall"`
	IntrusionCount    float64 `json:"intrusion_count"`
	RecallLatency     float64 `json:"recall_latency"`
	OrderMatchRatio   float64 `json:"order_match_ratio"`
	MeanRT            float64 `json:"mean_rt"`
	StdRT             float64 `json:"std_rt"`
	MinRT             float64 `json:"min_rt"`
	ReactionDrift     float64 `json:"reaction_drift"`
	MissCount         float64 `json:"miss_count"`
	StroopErrorRate   float64 `json:"stroop_error_rate"`
	StroopRT          float64 `json:"stroop_rt"`
	TapIntervalStd    float64 `json:"tap_interval_std"`
}

var FeatureNames = [FeatureCount]string{
	"wpm", "speed_deviation", "speech_variability", "pause_ratio", "speech_start_delay",
	"immediate_recall", "delayed_recall", "intrusion_count", "recall_latency", "order_match_ratio",
	"mean_rt", "std_rt", "min_rt", "reaction_drift", "miss_count",
	"stroop_error_rate", "stroop_rt",
	"tap_interval_std",
}

// featureScale divides each raw feature before it enters the models.
var featureScale = [FeatureCount]float64{
	200, 50, 30, 1, 5,
	100, 100, 10, 15, 1,
	800, 300, 600, 300, 10,
	1, 1000,
	200,
}

// BuildFeatureVector assembles the 18 features from the extractor outputs.
func BuildFeatureVector(s SpeechFeatures, m MemoryFeatures, r ReactionFeatures, e ExecutiveFeatures, tapStd float64) FeatureVector {
	return FeatureVector{
		WPM:               s.WPM,
		SpeedDeviation:    s.SpeedDeviation,
		SpeechVariability: s.SpeechVariability,
		PauseRatio:        s.PauseRatio,
		SpeechStartDelay:  s.StartDelay,
		ImmediateRecall:   m.ImmediateRecall,
		DelayedRecall:     m.DelayedRecall,
		IntrusionCount:    m.IntrusionCount,
		RecallLatency:     m.RecallLatency,
		OrderMatchRatio:   m.OrderMatch,
		MeanRT:            r.MeanRT,
		StdRT:             r.StdRT,
		MinRT:             r.MinRT,
		ReactionDrift:     r.Drift,
		MissCount:         r.MissCount,
		StroopErrorRate:   e.ErrorRate,
		StroopRT:          e.RT,
		TapIntervalStd:    tapStd,
	}
}

// Values returns the raw features in FeatureNames order.
func (f FeatureVector) Values() [FeatureCount]float64 {
	return [FeatureCount]float64{
		f.WPM, f.SpeedDeviation, f.SpeechVariability, f.PauseRatio, f.SpeechStartDelay,
		f.ImmediateRecall, f.DelayedRecall, f.IntrusionCount, f.RecallLatency, f.OrderMatchRatio,
		f.MeanRT, f.StdRT, f.MinRT, f.ReactionDrift, f.MissCount,
		f.StroopErrorRate, f.StroopRT,
		f.TapIntervalStd,
	}
}

// Normalized returns the scaled features the disease models consume.
func (f FeatureVector) Normalized() [FeatureCount]float64 {
	v := f.Values()
	for i := range v {
		v[i] /= featureScale[i]
	}
	return v
}
