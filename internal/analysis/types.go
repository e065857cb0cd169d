package analysis

// Float returns a pointer to v. Used to fill optional measurement fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

type SpeechInput struct {
	WPM               *float64 `json:"wpm,omitempty"`
	SpeedDeviation    *float64 `json:"speed_deviation,omitempty"`
	SpeechVariability *float64 `json:"speech_variability,omitempty"`
	PauseRatio        *float64 `json:"pause_ratio,omitempty"`
	CompletionRatio   *float64 `json:"completion_ratio,omitempty"`
	RestartCount      *float64 `json:"restart_count,omitempty"`
	StartDelay        *float64 `json:"speech_start_delay,omitempty"`
}

type MemoryInput struct {
	ImmediateRecall *float64 `json:"immediate_recall_accuracy,omitempty"`
	DelayedRecall   *float64 `json:"delayed_recall_accuracy,omitempty"`
	RecallLatency   *float64 `json:"recall_latency,omitempty"`
	OrderMatch      *float64 `json:"order_match_ratio,omitempty"`
	IntrusionCount  *float64 `json:"intrusion_count,omitempty"`
}

type ReactionInput struct {
	Times           []float64 `json:"times,omitempty"`
	MissCount       *float64  `json:"miss_count,omitempty"`
	InitiationDelay *float64  `json:"initiation_delay,omitempty"`
}

type StroopInput struct {
	TotalTrials   *float64 `json:"total_trials,omitempty"`
	ErrorCount    *float64 `json:"error_count,omitempty"`
	MeanRT        *float64 `json:"mean_rt,omitempty"`
	IncongruentRT *float64 `json:"incongruent_rt,omitempty"`
}

type TapInput struct {
	Intervals []float64 `json:"intervals,omitempty"`
}

type DigitSpanInput struct {
	MaxForwardSpan int `json:"max_forward_span"`
}

type FluencyInput struct {
	WordCount int `json:"word_count"`
}

// Conditions are the medical flags that raise disease probabilities.
type Conditions struct {
	Diabetes            bool `json:"diabetes"`
	Hypertension        bool `json:"hypertension"`
	StrokeHistory       bool `json:"stroke_history"`
	FamilyAlzheimers    bool `json:"family_alzheimers"`
	ParkinsonsDiagnosis bool `json:"parkinsons_diagnosis"`
	Depression          bool `json:"depression"`
	ThyroidDisorder     bool `json:"thyroid_disorder"`
}

// FatigueFlags are self-reported states that lower result confidence.
type FatigueFlags struct {
	Tired         bool `json:"tired"`
	SleepDeprived bool `json:"sleep_deprived"`
	Sick          bool `json:"sick"`
	Anxious       bool `json:"anxious"`
}

type Profile struct {
	Age               *int         `json:"age,omitempty"`
	EducationLevel    *int         `json:"education_level,omitempty"`
	SleepHours        *float64     `json:"sleep_hours,omitempty"`
	SleepQuality      string       `json:"sleep_quality,omitempty"`
	FamilyHistory     bool         `json:"family_history"`
	ExistingDiagnosis bool         `json:"existing_diagnosis"`
	MedicalConditions Conditions   `json:"medical_conditions"`
	FatigueFlags      FatigueFlags `json:"fatigue_flags"`
}

// AssessmentRequest is the raw, fully optional payload of one assessment.
type AssessmentRequest struct {
	SpeechAudio   string             `json:"speech_audio,omitempty"`
	Speech        *SpeechInput       `json:"speech,omitempty"`
	Memory        *MemoryInput       `json:"memory,omitempty"`
	MemoryResults map[string]float64 `json:"memory_results,omitempty"`
	Reaction      *ReactionInput     `json:"reaction,omitempty"`
	ReactionTimes []float64          `json:"reaction_times,omitempty"`
	Stroop        *StroopInput       `json:"stroop,omitempty"`
	Tap           *TapInput          `json:"tap,omitempty"`
	DigitSpan     *DigitSpanInput    `json:"digit_span,omitempty"`
	Fluency       *FluencyInput      `json:"fluency,omitempty"`
	Profile       *Profile           `json:"profile,omitempty"`
}

// Age returns the profile age, or nil when no profile was sent.
func (r AssessmentRequest) Age() *int {
	if r.Profile == nil {
		return nil
	}
	return r.Profile.Age
}

// DomainScores holds the five 0-100 health scores, higher is healthier.
type DomainScores struct {
	Speech    float64 `json:"speech"`
	Memory    float64 `json:"memory"`
	Reaction  float64 `json:"reaction"`
	Executive float64 `json:"executive"`
	Motor     float64 `json:"motor"`
}

type CompositeResult struct {
	Score            float64 `json:"composite_risk_score"`
	Level            string  `json:"composite_risk_level"`
	Lower            float64 `json:"confidence_lower"`
	Upper            float64 `json:"confidence_upper"`
	IntervalLabel    string  `json:"confidence_interval_label"`
	ModelUncertainty float64 `json:"model_uncertainty"`
}

type DiseaseRisks struct {
	Alzheimers float64 `json:"alzheimers_risk"`
	Dementia   float64 `json:"dementia_risk"`
	Parkinsons float64 `json:"parkinsons_risk"`
}

type DiseaseRiskLevels struct {
	Alzheimers string `json:"alzheimers"`
	Dementia   string `json:"dementia"`
	Parkinsons string `json:"parkinsons"`
}

// RiskDrivers are per-domain percentage contributions to composite risk.
type RiskDrivers struct {
	Speech    float64 `json:"speech"`
	Memory    float64 `json:"memory"`
	Reaction  float64 `json:"reaction"`
	Executive float64 `json:"executive"`
	Motor     float64 `json:"motor"`
}

// Sum adds the five percentages.
func (d RiskDrivers) Sum() float64 {
	return d.Speech + d.Memory + d.Reaction + d.Executive + d.Motor
}

type ConfidenceResult struct {
	Confidence      float64 `json:"confidence_score"`
	RecommendRetest bool    `json:"recommend_retest"`
	RetestMessage   *string `json:"retest_message"`
}

type ModelValidation struct {
	AUC         float64 `json:"auc"`
	Sensitivity float64 `json:"sensitivity"`
	Specificity float64 `json:"specificity"`
	Cohort      string  `json:"cohort"`
	Note        string  `json:"note"`
}

// RiskOutput is the complete, immutable result of one assessment.
type RiskOutput struct {
	SpeechScore         float64 `json:"speech_score"`
	MemoryScore         float64 `json:"memory_score"`
	ReactionScore       float64 `json:"reaction_score"`
	ExecutiveScore      float64 `json:"executive_score"`
	MotorScore          float64 `json:"motor_score"`
	AdjustedMemoryScore float64 `json:"adjusted_memory_score"`

	CompositeResult

	LogisticProbability float64 `json:"logistic_risk_probability"`
	LogisticLevel       string  `json:"logistic_risk_level"`

	ConfidenceResult

	DiseaseRisks
	RiskLevels DiseaseRiskLevels `json:"risk_levels"`

	RiskDrivers               RiskDrivers     `json:"risk_drivers"`
	ModelValidation           ModelValidation `json:"model_validation"`
	FeatureVector             FeatureVector   `json:"feature_vector"`
	AttentionVariabilityIndex float64         `json:"attention_variability_index"`
	Disclaimer                string          `json:"disclaimer"`
}
