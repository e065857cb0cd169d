package analysis

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrProcessing is returned when the pipeline panics or yields a non-finite
// value. No partial result accompanies it.
var ErrProcessing = errors.New("assessment processing failed")

// Analyzer orchestrates the full scoring pipeline. It holds no per-request
// state and is safe for concurrent use.
type Analyzer struct {
	settings     Settings
	source       FeatureSource
	preprocessor *Preprocessor
	scorer       *Scorer
}

// NewAnalyzer validates the settings and wires the pipeline stages. A nil
// source defaults to the structured source over stub values.
func NewAnalyzer(settings Settings, source FeatureSource) (*Analyzer, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring settings: %w", err)
	}
	if source == nil {
		source = NewStructuredSource(StubSource{})
	}
	return &Analyzer{
		settings:     settings,
		source:       source,
		preprocessor: NewPreprocessor(StubSource{}),
		scorer:       NewScorer(settings.Weights, settings.Thresholds),
	}, nil
}

// Settings returns the configuration the analyzer was built with.
func (a *Analyzer) Settings() Settings {
	return a.settings
}

// extraction carries the per-domain results shared by the consumers.
type extraction struct {
	domains  DomainScores
	memory   float64
	reaction ReactionFeatures
	features FeatureVector
}

func (a *Analyzer) extract(req AssessmentRequest) extraction {
	norms := a.settings.Norms
	age := req.Age()

	m := a.preprocessor.Clean(req, norms, a.source.Resolve(req, norms))

	speech, sf := ExtractSpeech(m.Speech, age, norms)
	memory, mf := ExtractMemory(m.Memory, age, norms)
	reaction, rf := ExtractReaction(m.Reaction, age, norms)
	executive, ef := ExtractExecutive(m.Stroop, age, norms)
	motor, tapStd := ExtractMotor(m.Tap, age, norms)

	memory = BlendMemory(memory, req.DigitSpan, req.Fluency)

	var education *int
	if req.Profile != nil {
		education = req.Profile.EducationLevel
	}
	adjusted := ApplyEducationAdjustment(memory, education)

	return extraction{
		domains: DomainScores{
			Speech:    speech,
			Memory:    adjusted,
			Reaction:  reaction,
			Executive: executive,
			Motor:     motor,
		},
		memory:   memory,
		reaction: rf,
		features: BuildFeatureVector(sf, mf, rf, ef, tapStd),
	}
}

// Analyze runs one assessment end to end.
func (a *Analyzer) Analyze(ctx context.Context, req AssessmentRequest) (out *RiskOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("assessment pipeline panicked", zap.Any("panic", r))
			out, err = nil, fmt.Errorf("%w: %v", ErrProcessing, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ex := a.extract(req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		composite CompositeResult
		logP      float64
		logLabel  string
		risks     DiseaseRisks
		levels    DiseaseRiskLevels
		drivers   RiskDrivers
		conds     Conditions
	)
	if req.Profile != nil {
		conds = req.Profile.MedicalConditions
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(guard(func() {
		composite = a.scorer.Score(ex.domains, conds)
	}))
	g.Go(guard(func() {
		logP, logLabel = LogisticRiskProbability(ex.domains.Speech, ex.domains.Memory, ex.domains.Reaction, req.Age())
	}))
	g.Go(guard(func() {
		risks, levels = a.settings.Diseases.Predict(ex.features, req.Profile)
	}))
	g.Go(guard(func() {
		drivers = a.scorer.ComputeRiskDrivers(ex.domains)
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flags FatigueFlags
	if req.Profile != nil {
		flags = req.Profile.FatigueFlags
	}
	confidence := ComputeConfidence(MissingDataRatio(req), flags)

	out = &RiskOutput{
		SpeechScore:               round(ex.domains.Speech, 2),
		MemoryScore:               round(ex.memory, 2),
		ReactionScore:             round(ex.domains.Reaction, 2),
		ExecutiveScore:            round(ex.domains.Executive, 2),
		MotorScore:                round(ex.domains.Motor, 2),
		AdjustedMemoryScore:       round(ex.domains.Memory, 2),
		CompositeResult:           composite,
		LogisticProbability:       logP,
		LogisticLevel:             logLabel,
		ConfidenceResult:          confidence,
		DiseaseRisks:              risks,
		RiskLevels:                levels,
		RiskDrivers:               drivers,
		ModelValidation:           SimulatedValidation(),
		FeatureVector:             ex.features,
		AttentionVariabilityIndex: ex.reaction.AttentionVariabilityIndex(),
		Disclaimer:                Disclaimer,
	}
	if !out.finite() {
		return nil, fmt.Errorf("%w: non-finite value in result", ErrProcessing)
	}
	return out, nil
}

// guard converts a panic inside a consumer goroutine into ErrProcessing.
func guard(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("assessment consumer panicked", zap.Any("panic", r))
				err = fmt.Errorf("%w: %v", ErrProcessing, r)
			}
		}()
		fn()
		return nil
	}
}

func (o *RiskOutput) finite() bool {
	fv := o.FeatureVector.Values()
	return finite(fv[:]...) && finite(
		o.SpeechScore, o.MemoryScore, o.ReactionScore, o.ExecutiveScore, o.MotorScore,
		o.AdjustedMemoryScore, o.Score, o.Lower, o.Upper, o.ModelUncertainty,
		o.LogisticProbability, o.Confidence,
		o.Alzheimers, o.Dementia, o.Parkinsons,
		o.RiskDrivers.Speech, o.RiskDrivers.Memory, o.RiskDrivers.Reaction,
		o.RiskDrivers.Executive, o.RiskDrivers.Motor,
		o.AttentionVariabilityIndex,
	)
}
