package catalog

// Feature names known to the default catalog.
const (
	Age               = "age"
	Sex               = "sex"
	ExerciseFrequency = "exercise_frequency"
	SmokingHistory    = "smoking_history"
	DrinkingHistory   = "drinking_history"

	BMI           = "bmi"
	WaistHipRatio = "waist_hip_ratio"
	SystolicBP    = "systolic_bp"
	DiastolicBP   = "diastolic_bp"

	BodyFatMass          = "body_fat_mass"
	BodyFatPercentage    = "body_fat_percentage"
	UpperLimbMuscleRatio = "upper_limb_muscle_ratio"
	TrunkMuscleRatio     = "trunk_muscle_ratio"
	LowerLimbMuscleRatio = "lower_limb_muscle_ratio"
	TrunkFatRatio        = "trunk_fat_ratio"
	LowerLimbFatRatio    = "lower_limb_fat_ratio"
	ECWTBWRatio          = "ecw_tbw_ratio"
	TotalBodyWater       = "total_body_water"
	TBWFFMRatio          = "tbw_ffm_ratio"

	Triglycerides         = "triglycerides"
	HbA1c                 = "hba1c"
	TyGIndex              = "tyg_index"
	UricAcid              = "uric_acid"
	AST                   = "ast"
	Urea                  = "urea"
	EosinophilPercentage  = "eosinophil_percentage"
	Creatinine            = "creatinine"
	Hemoglobin            = "hemoglobin"
	TotalCholesterol      = "total_cholesterol"
	BasophilPercentage    = "basophil_percentage"
	ALT                   = "alt"
	LipoproteinA          = "lipoprotein_a"
	RBCCount              = "rbc_count"
	WBCCount              = "wbc_count"
	GGT                   = "ggt"
	Albumin               = "albumin"
)

func num(v float64) *float64 { return &v }

func defaultFeatures() []FeatureSpec {
	return []FeatureSpec{
		{Name: Age, Label: "Age", Category: CategoryDemographics, Unit: "years", Default: num(50)},
		{Name: Sex, Label: "Sex", Category: CategoryDemographics},
		{Name: ExerciseFrequency, Label: "Exercise frequency", Category: CategoryDemographics},
		{Name: SmokingHistory, Label: "Smoking history", Category: CategoryDemographics},
		{Name: DrinkingHistory, Label: "Drinking history", Category: CategoryDemographics},

		{Name: BMI, Label: "Body mass index", Category: CategoryPhysicalExam, Unit: "kg/m²", Default: num(24)},
		{Name: WaistHipRatio, Label: "Waist-hip ratio", Category: CategoryPhysicalExam, Default: num(0.85)},
		{Name: SystolicBP, Label: "Systolic blood pressure", Category: CategoryPhysicalExam, Unit: "mmHg", Default: num(120)},
		{Name: DiastolicBP, Label: "Diastolic blood pressure", Category: CategoryPhysicalExam, Unit: "mmHg", Default: num(80)},

		{Name: BodyFatMass, Label: "Body fat mass", Category: CategoryBodyComposition, Unit: "kg", Default: num(15)},
		{Name: BodyFatPercentage, Label: "Body fat percentage", Category: CategoryBodyComposition, Unit: "%", Default: num(25)},
		{Name: UpperLimbMuscleRatio, Label: "Upper limb muscle ratio", Category: CategoryBodyComposition, Unit: "upper limb muscle / total muscle", Default: num(0.11)},
		{Name: TrunkMuscleRatio, Label: "Trunk muscle ratio", Category: CategoryBodyComposition, Unit: "trunk muscle / total muscle", Default: num(0.47)},
		{Name: LowerLimbMuscleRatio, Label: "Lower limb muscle ratio", Category: CategoryBodyComposition, Unit: "lower limb muscle / total muscle", Default: num(0.33)},
		{Name: TrunkFatRatio, Label: "Trunk fat ratio", Category: CategoryBodyComposition, Unit: "trunk fat / total fat", Default: num(0.44)},
		{Name: LowerLimbFatRatio, Label: "Lower limb fat ratio", Category: CategoryBodyComposition, Unit: "lower limb fat / total fat", Default: num(0.33)},
		{Name: ECWTBWRatio, Label: "Extracellular water / total body water", Category: CategoryBodyComposition, Default: num(0.38)},
		{Name: TotalBodyWater, Label: "Total body water", Category: CategoryBodyComposition, Unit: "kg", Default: num(37.5)},
		{Name: TBWFFMRatio, Label: "Total body water / fat-free mass", Category: CategoryBodyComposition, Unit: "ratio", Default: num(0.73)},

		{Name: Triglycerides, Label: "Triglycerides", Category: CategoryLaboratory, Unit: "mmol/L", Default: num(1.5)},
		{Name: HbA1c, Label: "Glycated hemoglobin", Category: CategoryLaboratory, Unit: "%", Default: num(5.5)},
		{Name: TyGIndex, Label: "TyG index", Category: CategoryLaboratory, Default: num(8.5)},
		{Name: UricAcid, Label: "Uric acid", Category: CategoryLaboratory, Unit: "μmol/L", Default: num(300)},
		{Name: AST, Label: "Aspartate aminotransferase", Category: CategoryLaboratory, Unit: "U/L", Default: num(20)},
		{Name: Urea, Label: "Urea", Category: CategoryLaboratory, Unit: "mmol/L", Default: num(5)},
		{Name: EosinophilPercentage, Label: "Eosinophil percentage", Category: CategoryLaboratory, Unit: "%", Default: num(2)},
		{Name: Creatinine, Label: "Creatinine", Category: CategoryLaboratory, Unit: "μmol/L", Default: num(70)},
		{Name: Hemoglobin, Label: "Hemoglobin", Category: CategoryLaboratory, Unit: "g/L", Default: num(135)},
		{Name: TotalCholesterol, Label: "Total cholesterol", Category: CategoryLaboratory, Unit: "mmol/L", Default: num(4.5)},
		{Name: BasophilPercentage, Label: "Basophil percentage", Category: CategoryLaboratory, Unit: "%", Default: num(0.5)},
		{Name: ALT, Label: "Alanine aminotransferase", Category: CategoryLaboratory, Unit: "U/L", Default: num(20)},
		{Name: LipoproteinA, Label: "Lipoprotein(a)", Category: CategoryLaboratory, Unit: "mg/L", Default: num(150)},
		{Name: RBCCount, Label: "Red blood cell count", Category: CategoryLaboratory, Unit: "10^12/L", Default: num(4.5)},
		{Name: WBCCount, Label: "White blood cell count", Category: CategoryLaboratory, Unit: "10^9/L", Default: num(6)},
		{Name: GGT, Label: "Gamma-glutamyl transferase", Category: CategoryLaboratory, Unit: "U/L", Default: num(25)},
		{Name: Albumin, Label: "Albumin", Category: CategoryLaboratory, Unit: "g/L", Default: num(45)},
	}
}

// Codes are the values the models were trained on and must not follow the
// order the options are displayed in.
func defaultOptions() map[string]Options {
	return map[string]Options{
		Sex: {
			{Label: "1 (male)", Value: 1},
			{Label: "0 (female)", Value: 0},
		},
		SmokingHistory: {
			{Label: "0 (no smoking history)", Value: 0},
			{Label: "1 (has smoking history)", Value: 1},
		},
		DrinkingHistory: {
			{Label: "0 (no drinking history)", Value: 0},
			{Label: "1 (has drinking history)", Value: 1},
		},
		ExerciseFrequency: {
			{Label: "0: rarely (<1 per week)", Value: 0},
			{Label: "1: occasionally (1-2 per week)", Value: 1},
			{Label: "2: regularly (3-5 per week)", Value: 2},
			{Label: "3: frequently (>5 per week)", Value: 3},
		},
	}
}

var defaultCatalog = mustNew(defaultFeatures(), defaultOptions()) //nolint:gochecknoglobals // immutable process-wide catalog

func mustNew(features []FeatureSpec, options map[string]Options) *Catalog {
	c, err := New(features, options)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the process-wide clinical feature catalog.
func Default() *Catalog {
	return defaultCatalog
}
