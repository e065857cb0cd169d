package analysis

// Delayed recall is the stronger decline marker and carries more weight.
const (
	immediateRecallWeight = 0.45
	delayedRecallWeight   = 0.55
)

type MemoryFeatures struct {
	ImmediateRecall float64
	DelayedRecall   float64
	IntrusionCount  float64
	RecallLatency   float64
	OrderMatch      float64
}

// ExtractMemory scores the word-recall task against age peers.
func ExtractMemory(m MemoryMetrics, age *int, norms NormSet) (float64, MemoryFeatures) {
	blend := immediateRecallWeight*m.ImmediateRecall + delayedRecallWeight*m.DelayedRecall
	score := ZToScore(Normalize(blend, norms.RecallAccuracy, age, false))

	score -= clip((m.RecallLatency-2)*5, 0, 20)
	score -= clip(m.IntrusionCount*6, 0, 24)
	score += clip(m.OrderMatch, 0, 1) * 12

	return clip(score, 0, 100), MemoryFeatures{
		ImmediateRecall: m.ImmediateRecall,
		DelayedRecall:   m.DelayedRecall,
		IntrusionCount:  m.IntrusionCount,
		RecallLatency:   m.RecallLatency,
		OrderMatch:      m.OrderMatch,
	}
}

// DigitSpanScore maps the longest forward span onto 0-100.
func DigitSpanScore(span int) float64 {
	switch {
	case span >= 9:
		return 100
	case span == 8:
		return 92
	case span == 7:
		return 85
	case span == 6:
		return 75
	case span == 5:
		return 60
	case span == 4:
		return 40
	default:
		return 20
	}
}

// FluencyScore maps a verbal fluency word count onto 0-100.
func FluencyScore(wordCount int) float64 {
	return clip(float64(wordCount-8)*8+50, 0, 100)
}

// BlendMemory folds the optional digit-span and fluency tasks into the memory
// score. Each blend applies only when its task produced a positive result.
func BlendMemory(memory float64, digitSpan *DigitSpanInput, fluency *FluencyInput) float64 {
	if digitSpan != nil && digitSpan.MaxForwardSpan > 0 {
		memory = memory*0.80 + DigitSpanScore(digitSpan.MaxForwardSpan)*0.20
	}
	if fluency != nil && fluency.WordCount > 0 {
		memory = memory*0.85 + FluencyScore(fluency.WordCount)*0.15
	}
	return clip(memory, 0, 100)
}
