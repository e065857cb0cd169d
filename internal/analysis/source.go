package analysis

import (
	"math/rand"
	"sync"
)

type SpeechMetrics struct {
	WPM               float64
	SpeedDeviation    float64
	SpeechVariability float64
	PauseRatio        float64
	CompletionRatio   float64
	RestartCount      float64
	StartDelay        float64
}

type MemoryMetrics struct {
	ImmediateRecall float64
	DelayedRecall   float64
	RecallLatency   float64
	OrderMatch      float64
	IntrusionCount  float64
}

type ReactionMetrics struct {
	Times           []float64
	MissCount       float64
	InitiationDelay float64
}

type StroopMetrics struct {
	TotalTrials   float64
	ErrorCount    float64
	MeanRT        float64
	IncongruentRT float64
	// DefaultErrorRate is used when TotalTrials is zero.
	DefaultErrorRate float64
}

type TapMetrics struct {
	Intervals []float64
	// DefaultStd is used when fewer than three intervals are present.
	DefaultStd float64
}

// Measurements are the fully resolved inputs of the five extractors.
type Measurements struct {
	Speech   SpeechMetrics
	Memory   MemoryMetrics
	Reaction ReactionMetrics
	Stroop   StroopMetrics
	Tap      TapMetrics
}

// FeatureSource turns an optional raw payload into complete measurements.
type FeatureSource interface {
	Resolve(req AssessmentRequest, norms NormSet) Measurements
}

// StubSource ignores the payload and returns fixed population-typical values.
// Normed metrics sit at the age band mean, so their z-score is zero.
type StubSource struct{}

func (StubSource) Resolve(req AssessmentRequest, norms NormSet) Measurements {
	age := req.Age()
	rt := norms.ReactionMeanRT.Mean(age)
	recall := norms.RecallAccuracy.Mean(age)
	return Measurements{
		Speech: SpeechMetrics{
			WPM:               norms.SpeechWPM.Mean(age),
			SpeedDeviation:    10,
			SpeechVariability: 8,
			PauseRatio:        0.12,
			CompletionRatio:   1,
			RestartCount:      0,
			StartDelay:        0.8,
		},
		Memory: MemoryMetrics{
			ImmediateRecall: recall,
			DelayedRecall:   recall,
			RecallLatency:   1.5,
			OrderMatch:      0.8,
			IntrusionCount:  0,
		},
		Reaction: ReactionMetrics{
			// symmetric around the mean: zero drift, std 20
			Times: []float64{rt - 20, rt + 20, rt + 20, rt - 20},
		},
		Stroop: StroopMetrics{
			MeanRT:           norms.StroopRT.Mean(age),
			DefaultErrorRate: norms.StroopErrorRate.Mean(age),
		},
		Tap: TapMetrics{
			DefaultStd: norms.TapIntervalStd.Mean(age),
		},
	}
}

// JitterSource returns bounded random placeholders around the band means.
// It stands in for instruments that did not run and is never deterministic
// unless seeded identically.
type JitterSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewJitterSource(seed int64) *JitterSource {
	return &JitterSource{rng: rand.New(rand.NewSource(seed))}
}

// within samples uniformly from center ± spread.
func (j *JitterSource) within(center, spread float64) float64 {
	return center + (j.rng.Float64()*2-1)*spread
}

func (j *JitterSource) Resolve(req AssessmentRequest, norms NormSet) Measurements {
	j.mu.Lock()
	defer j.mu.Unlock()

	age := req.Age()
	band := func(t NormTable) AgeBand { return t.Band(age) }
	wpm, recall, rt := band(norms.SpeechWPM), band(norms.RecallAccuracy), band(norms.ReactionMeanRT)
	stroopRT, stroopErr, tap := band(norms.StroopRT), band(norms.StroopErrorRate), band(norms.TapIntervalStd)

	times := make([]float64, 6)
	for i := range times {
		times[i] = j.within(rt.Mean, rt.Std/2)
	}
	return Measurements{
		Speech: SpeechMetrics{
			WPM:               j.within(wpm.Mean, wpm.Std/2),
			SpeedDeviation:    j.within(10, 4),
			SpeechVariability: j.within(8, 3),
			PauseRatio:        j.within(0.12, 0.04),
			CompletionRatio:   clip(j.within(0.95, 0.05), 0, 1),
			StartDelay:        j.within(0.8, 0.3),
		},
		Memory: MemoryMetrics{
			ImmediateRecall: clip(j.within(recall.Mean, recall.Std/2), 0, 100),
			DelayedRecall:   clip(j.within(recall.Mean, recall.Std/2), 0, 100),
			RecallLatency:   j.within(1.5, 0.4),
			OrderMatch:      clip(j.within(0.8, 0.1), 0, 1),
		},
		Reaction: ReactionMetrics{Times: times},
		Stroop: StroopMetrics{
			MeanRT:           j.within(stroopRT.Mean, stroopRT.Std/2),
			DefaultErrorRate: clip(j.within(stroopErr.Mean, stroopErr.Std/2), 0, 1),
		},
		Tap: TapMetrics{DefaultStd: clip(j.within(tap.Mean, tap.Std/2), 1, 1000)},
	}
}

// StructuredSource uses caller-supplied values where present and asks the
// fallback for everything else.
type StructuredSource struct {
	Fallback FeatureSource
}

func NewStructuredSource(fallback FeatureSource) StructuredSource {
	if fallback == nil {
		fallback = StubSource{}
	}
	return StructuredSource{Fallback: fallback}
}

func set(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// audioWPMProxy estimates speech rate from payload size. It is a placeholder
// for transcription, not a measurement.
func audioWPMProxy(audio string) float64 {
	return 100 + 50*clip(float64(len(audio))/10000, 0, 1)
}

func (s StructuredSource) Resolve(req AssessmentRequest, norms NormSet) Measurements {
	m := s.Fallback.Resolve(req, norms)

	if req.SpeechAudio != "" {
		m.Speech.WPM = audioWPMProxy(req.SpeechAudio)
	}
	if in := req.Speech; in != nil {
		set(&m.Speech.WPM, in.WPM)
		set(&m.Speech.SpeedDeviation, in.SpeedDeviation)
		set(&m.Speech.SpeechVariability, in.SpeechVariability)
		set(&m.Speech.PauseRatio, in.PauseRatio)
		set(&m.Speech.CompletionRatio, in.CompletionRatio)
		set(&m.Speech.RestartCount, in.RestartCount)
		set(&m.Speech.StartDelay, in.StartDelay)
	}

	if in := req.Memory; in != nil {
		set(&m.Memory.ImmediateRecall, in.ImmediateRecall)
		set(&m.Memory.DelayedRecall, in.DelayedRecall)
		set(&m.Memory.RecallLatency, in.RecallLatency)
		set(&m.Memory.OrderMatch, in.OrderMatch)
		set(&m.Memory.IntrusionCount, in.IntrusionCount)
	} else if len(req.MemoryResults) > 0 {
		if v, ok := req.MemoryResults["word_recall_accuracy"]; ok {
			m.Memory.ImmediateRecall = v
		}
		if v, ok := req.MemoryResults["pattern_accuracy"]; ok {
			m.Memory.DelayedRecall = v
		}
	}

	times := req.ReactionTimes
	if in := req.Reaction; in != nil {
		if len(in.Times) > 0 {
			times = in.Times
		}
		set(&m.Reaction.MissCount, in.MissCount)
		set(&m.Reaction.InitiationDelay, in.InitiationDelay)
	}
	if cleaned := SanitizeReactionTimes(times); len(cleaned) > 0 {
		m.Reaction.Times = cleaned
	}

	if in := req.Stroop; in != nil {
		set(&m.Stroop.TotalTrials, in.TotalTrials)
		set(&m.Stroop.ErrorCount, in.ErrorCount)
		set(&m.Stroop.MeanRT, in.MeanRT)
		set(&m.Stroop.IncongruentRT, in.IncongruentRT)
	}

	if in := req.Tap; in != nil && len(in.Intervals) > 0 {
		m.Tap.Intervals = SanitizeIntervals(in.Intervals)
	}

	return m
}
