package registry

import c "github.com/okian/metarisk/internal/domain/catalog"

// Model identifiers of the default registry.
const (
	ModelFull            = "full"
	ModelBodyComposition = "body_composition"
	ModelClinical        = "clinical"
	ModelBaseline        = "baseline"
)

func defaultSpecs() []ModelSpec {
	return []ModelSpec{
		{
			ID:          ModelFull,
			Name:        "Model A (all variables)",
			Description: "Uses every multi-dimensional indicator to estimate the upper bound of predictive performance.",
			Features: []string{
				c.LowerLimbMuscleRatio, c.TyGIndex, c.HbA1c, c.BMI, c.TotalCholesterol, c.Urea,
				c.ECWTBWRatio, c.GGT, c.Triglycerides, c.Albumin, c.EosinophilPercentage,
				c.SystolicBP, c.BasophilPercentage, c.Hemoglobin, c.UpperLimbMuscleRatio,
				c.LowerLimbFatRatio,
			},
			ArtifactRef: "lasso_model.yaml",
		},
		{
			ID:          ModelBodyComposition,
			Name:        "Model B (body composition)",
			Description: "Basic indicators plus non-invasive body composition data; no blood draw needed. Suited to primary care screening with a body composition analyzer.",
			Features: []string{
				c.Age, c.BMI, c.WaistHipRatio, c.BodyFatMass, c.BodyFatPercentage,
				c.UpperLimbMuscleRatio, c.TrunkMuscleRatio, c.LowerLimbMuscleRatio,
				c.TrunkFatRatio, c.LowerLimbFatRatio, c.ECWTBWRatio, c.SmokingHistory,
				c.TotalBodyWater, c.TBWFFMRatio,
			},
			ArtifactRef: "svm_model.yaml",
		},
		{
			ID:          ModelClinical,
			Name:        "Model C (routine clinical)",
			Description: "Basic indicators plus routine blood biochemistry, without a body composition analyzer. Close to conventional clinical practice.",
			Features: []string{
				c.Triglycerides, c.HbA1c, c.BMI, c.TyGIndex, c.UricAcid, c.AST, c.Age, c.Urea,
				c.EosinophilPercentage, c.Creatinine, c.Hemoglobin, c.TotalCholesterol,
				c.BasophilPercentage, c.ALT, c.LipoproteinA, c.RBCCount, c.DiastolicBP,
				c.WBCCount, c.SystolicBP, c.GGT, c.Albumin, c.WaistHipRatio,
			},
			ArtifactRef: "xgb_model.yaml",
		},
		{
			ID:          ModelBaseline,
			Name:        "Model D (baseline)",
			Description: "Only demographics, lifestyle and basic anthropometrics (BMI, waist-hip ratio); the simplest reference model.",
			Features: []string{
				c.Sex, c.Age, c.ExerciseFrequency, c.SmokingHistory, c.DrinkingHistory,
				c.BMI, c.WaistHipRatio,
			},
			ArtifactRef: "lr_model.yaml",
		},
	}
}

var defaultRegistry = func() *Registry { //nolint:gochecknoglobals // immutable process-wide registry
	r, err := New(defaultSpecs()...)
	if err != nil {
		panic(err)
	}
	return r
}()

// Default returns the process-wide model registry.
func Default() *Registry {
	return defaultRegistry
}
