package analysis

import "fmt"

// NeutralAge selects the band used when no age is supplied (35-49).
const NeutralAge = 40

// AgeBand is a closed integer age interval with population statistics.
type AgeBand struct {
	MinAge int     `json:"min_age" yaml:"min_age"`
	MaxAge int     `json:"max_age" yaml:"max_age"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
}

// NormTable maps ordered, disjoint age bands to (mean, std) for one metric.
type NormTable struct {
	Metric string    `json:"metric" yaml:"metric"`
	Bands  []AgeBand `json:"bands" yaml:"bands"`
}

// NormSet holds the tables used by the extractors.
type NormSet struct {
	SpeechWPM       NormTable `json:"speech_wpm" yaml:"speech_wpm"`
	RecallAccuracy  NormTable `json:"recall_accuracy" yaml:"recall_accuracy"`
	ReactionMeanRT  NormTable `json:"reaction_mean_rt" yaml:"reaction_mean_rt"`
	StroopErrorRate NormTable `json:"stroop_error_rate" yaml:"stroop_error_rate"`
	StroopRT        NormTable `json:"stroop_rt" yaml:"stroop_rt"`
	TapIntervalStd  NormTable `json:"tap_interval_std" yaml:"tap_interval_std"`
}

func (n NormSet) tables() []NormTable {
	return []NormTable{n.SpeechWPM, n.RecallAccuracy, n.ReactionMeanRT, n.StroopErrorRate, n.StroopRT, n.TapIntervalStd}
}

// Validate checks every table is non-empty, ordered and disjoint with std > 0.
func (n NormSet) Validate() error {
	for _, t := range n.tables() {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (t NormTable) Validate() error {
	if len(t.Bands) == 0 {
		return fmt.Errorf("norm table %q has no bands", t.Metric)
	}
	for i, b := range t.Bands {
		if b.MinAge > b.MaxAge {
			return fmt.Errorf("norm table %q band %d: min age %d above max age %d", t.Metric, i, b.MinAge, b.MaxAge)
		}
		if b.Std <= 0 {
			return fmt.Errorf("norm table %q band %d: std must be positive", t.Metric, i)
		}
		if i > 0 && b.MinAge <= t.Bands[i-1].MaxAge {
			return fmt.Errorf("norm table %q band %d overlaps or is out of order", t.Metric, i)
		}
	}
	return nil
}

// Band selects the band for age. A nil age uses NeutralAge, and ages outside
// every band fall back to the nearest band.
func (t NormTable) Band(age *int) AgeBand {
	a := NeutralAge
	if age != nil {
		a = *age
	}
	if len(t.Bands) == 0 {
		return AgeBand{Mean: 0, Std: 1}
	}
	if a < t.Bands[0].MinAge {
		return t.Bands[0]
	}
	nearest := t.Bands[0]
	for _, b := range t.Bands {
		if a >= b.MinAge && a <= b.MaxAge {
			return b
		}
		if a > b.MaxAge {
			nearest = b
		}
	}
	return nearest
}

// Mean is the population mean for the band selected by age.
func (t NormTable) Mean(age *int) float64 {
	return t.Band(age).Mean
}

// Normalize converts raw into a z-score against the age band, rounded to
// three decimals. With invert set, lower raw values give a positive z.
func Normalize(raw float64, table NormTable, age *int, invert bool) float64 {
	b := table.Band(age)
	std := b.Std
	if std <= 0 {
		std = 1
	}
	z := round(((raw - b.Mean) / std), 3)
	if invert {
		z = -z
	}
	return z
}

// ZToScore maps z onto 0-100, clamping z to [-3, 3] first.
func ZToScore(z float64) float64 {
	return clip(50+clip(z, -clipZ, clipZ)*zScale, 0, 100)
}

func bands(means, stds [6]float64) []AgeBand {
	limits := [6][2]int{{18, 34}, {35, 49}, {50, 64}, {65, 74}, {75, 84}, {85, 120}}
	out := make([]AgeBand, len(limits))
	for i, l := range limits {
		out[i] = AgeBand{MinAge: l[0], MaxAge: l[1], Mean: means[i], Std: stds[i]}
	}
	return out
}

// DefaultNormSet returns the built-in population norms.
func DefaultNormSet() NormSet {
	return NormSet{
		SpeechWPM: NormTable{
			Metric: "speech_wpm",
			Bands:  bands([6]float64{150, 145, 140, 132, 125, 115}, [6]float64{25, 25, 25, 26, 27, 28}),
		},
		RecallAccuracy: NormTable{
			Metric: "recall_accuracy",
			Bands:  bands([6]float64{78, 75, 70, 64, 58, 52}, [6]float64{12, 12, 13, 14, 15, 16}),
		},
		ReactionMeanRT: NormTable{
			Metric: "reaction_mean_rt",
			Bands:  bands([6]float64{300, 320, 350, 390, 430, 480}, [6]float64{45, 50, 55, 65, 75, 85}),
		},
		StroopErrorRate: NormTable{
			Metric: "stroop_error_rate",
			Bands:  bands([6]float64{0.04, 0.05, 0.06, 0.08, 0.10, 0.13}, [6]float64{0.03, 0.03, 0.035, 0.04, 0.045, 0.05}),
		},
		StroopRT: NormTable{
			Metric: "stroop_rt",
			Bands:  bands([6]float64{650, 690, 740, 800, 870, 950}, [6]float64{100, 105, 110, 120, 130, 140}),
		},
		TapIntervalStd: NormTable{
			Metric: "tap_interval_std",
			Bands:  bands([6]float64{25, 28, 32, 38, 45, 52}, [6]float64{8, 9, 10, 12, 14, 16}),
		},
	}
}
