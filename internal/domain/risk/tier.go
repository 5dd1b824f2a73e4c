package risk

// Tier is the risk band a probability falls into.
type Tier string

// Risk tiers.
const (
	TierLow      Tier = "LOW"
	TierModerate Tier = "MODERATE"
	TierHigh     Tier = "HIGH"
)

// Tier thresholds. Intervals are half-open: ModerateThreshold belongs to
// MODERATE and HighThreshold belongs to HIGH.
const (
	ModerateThreshold = 0.30
	HighThreshold     = 0.60
)

// TierFor maps the positive-class probability to a tier.
func TierFor(p float64) Tier {
	switch {
	case p < ModerateThreshold:
		return TierLow
	case p < HighThreshold:
		return TierModerate
	default:
		return TierHigh
	}
}

// Advice returns the recommendation shown with a tier.
func (t Tier) Advice() string {
	switch t {
	case TierLow:
		return "Low risk of developing a metabolic abnormality within 3 years; keep up a healthy lifestyle."
	case TierModerate:
		return "Borderline risk within 3 years; lifestyle intervention and regular follow-up are recommended."
	case TierHigh:
		return "High likelihood of a metabolic abnormality within 3 years; further clinical evaluation is recommended."
	default:
		return ""
	}
}

// EndpointDefinition describes the outcome the probabilities refer to.
const EndpointDefinition = `The primary end point is a first new-onset metabolic abnormality within 3 years (36 months) of the baseline visit, defined as abnormalities in two or more of the following components.
(1) Blood pressure: two measurements on different days at or above 130/85 mmHg, a hypertension diagnosis with antihypertensive prescription, or self-reported elevated blood pressure or regular antihypertensive use.
(2) Glucose: fasting plasma glucose at or above 5.6 mmol/L, a new prediabetes or type 2 diabetes diagnosis with glucose-lowering prescription, or self-reported elevated glucose or regular glucose-lowering medication.
(3) Lipids: triglycerides at or above 1.7 mmol/L, HDL-C below 1.0 mmol/L (men) or 1.3 mmol/L (women), LDL-C at or above 3.4 mmol/L, total cholesterol at or above 5.2 mmol/L, a new dyslipidemia diagnosis with lipid-lowering prescription, or self-reported abnormal lipids or regular lipid-lowering medication.
Tier thresholds are reference values set by this system; clinical decisions should follow applicable guidelines.`
