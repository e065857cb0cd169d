package analysis

// Disclaimer is attached verbatim to every result.
const Disclaimer = "⚠️ This tool does NOT provide medical diagnosis. It provides early cognitive risk signals for further evaluation by a qualified professional. Always consult a neurologist or physician for clinical decisions."

// SimulatedValidation reports the metrics of the simulated validation cohort.
// No clinical study backs these numbers.
func SimulatedValidation() ModelValidation {
	return ModelValidation{
		AUC:         0.87,
		Sensitivity: 0.82,
		Specificity: 0.79,
		Cohort:      "simulated",
		Note:        "Metrics come from a simulated cohort and have not been clinically validated.",
	}
}
