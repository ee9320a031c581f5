package services

// relatedTerms groups the clinically associated concepts for one condition.
type relatedTerms struct {
	Diagnoses   []string
	Labs        []string
	Medications []string
}

// clinicalRelationships maps common conditions to related diagnoses, labs,
// and medications. Used as the offline fallback when semantic expansion is
// disabled or unavailable.
var clinicalRelationships = map[string]relatedTerms{
	// Metabolic conditions
	"diabetes": {
		Diagnoses:   []string{"diabetic neuropathy", "diabetic retinopathy", "diabetic nephropathy", "diabetic foot", "hypoglycemia"},
		Labs:        []string{"hemoglobin A1c", "fasting glucose", "glucose tolerance test", "fructosamine", "C-peptide"},
		Medications: []string{"metformin", "insulin", "glipizide", "sitagliptin", "empagliflozin"},
	},
	"hyperlipidemia": {
		Diagnoses:   []string{"atherosclerosis", "coronary artery disease", "xanthoma"},
		Labs:        []string{"lipid panel", "LDL cholesterol", "HDL cholesterol", "triglycerides"},
		Medications: []string{"atorvastatin", "simvastatin", "rosuvastatin", "ezetimibe"},
	},
	"obesity": {
		Diagnoses:   []string{"metabolic syndrome", "sleep apnea", "fatty liver"},
		Labs:        []string{"fasting glucose", "lipid panel", "liver function tests"},
		Medications: []string{"orlistat", "liraglutide", "semaglutide"},
	},
	"thyroid": {
		Diagnoses:   []string{"hypothyroidism", "hyperthyroidism", "thyroiditis", "goiter"},
		Labs:        []string{"TSH", "free T4", "free T3", "thyroid antibodies"},
		Medications: []string{"levothyroxine", "methimazole", "propylthiouracil"},
	},
	// Cardiovascular conditions
	"hypertension": {
		Diagnoses:   []string{"hypertensive heart disease", "hypertensive nephropathy", "left ventricular hypertrophy"},
		Labs:        []string{"basic metabolic panel", "lipid panel", "urinalysis", "creatinine"},
		Medications: []string{"lisinopril", "amlodipine", "hydrochlorothiazide", "losartan", "metoprolol"},
	},
	"heart failure": {
		Diagnoses:   []string{"cardiomyopathy", "pulmonary edema", "cardiac arrhythmia"},
		Labs:        []string{"BNP", "NT-proBNP", "troponin", "basic metabolic panel"},
		Medications: []string{"furosemide", "carvedilol", "spironolactone", "sacubitril", "digoxin"},
	},
	"atrial fibrillation": {
		Diagnoses:   []string{"stroke", "heart failure", "thromboembolism"},
		Labs:        []string{"INR", "PT", "complete blood count", "thyroid function"},
		Medications: []string{"warfarin", "apixaban", "rivaroxaban", "metoprolol", "diltiazem"},
	},
	"coronary artery disease": {
		Diagnoses:   []string{"angina", "myocardial infarction", "heart failure"},
		Labs:        []string{"troponin", "lipid panel", "BNP", "CRP"},
		Medications: []string{"aspirin", "clopidogrel", "atorvastatin", "metoprolol", "nitroglycerin"},
	},
	"deep vein thrombosis": {
		Diagnoses:   []string{"pulmonary embolism", "post-thrombotic syndrome"},
		Labs:        []string{"D-dimer", "PT", "INR", "factor V Leiden"},
		Medications: []string{"heparin", "enoxaparin", "warfarin", "rivaroxaban"},
	},
	// Respiratory conditions
	"asthma": {
		Diagnoses:   []string{"allergic rhinitis", "eczema", "COPD"},
		Labs:        []string{"IgE", "pulmonary function test", "peak flow"},
		Medications: []string{"albuterol", "fluticasone", "montelukast", "budesonide", "ipratropium"},
	},
	"copd": {
		Diagnoses:   []string{"chronic bronchitis", "emphysema", "pneumonia"},
		Labs:        []string{"pulmonary function test", "arterial blood gas", "chest x-ray"},
		Medications: []string{"tiotropium", "fluticasone", "salmeterol", "prednisone", "azithromycin"},
	},
	"pneumonia": {
		Diagnoses:   []string{"respiratory failure", "sepsis", "pleural effusion"},
		Labs:        []string{"chest x-ray", "sputum culture", "complete blood count", "procalcitonin"},
		Medications: []string{"azithromycin", "amoxicillin", "levofloxacin", "ceftriaxone"},
	},
	// Gastrointestinal conditions
	"gerd": {
		Diagnoses:   []string{"esophagitis", "Barrett's esophagus", "hiatal hernia"},
		Labs:        []string{"upper endoscopy", "pH monitoring"},
		Medications: []string{"omeprazole", "pantoprazole", "famotidine", "sucralfate"},
	},
	"peptic ulcer": {
		Diagnoses:   []string{"gastritis", "H. pylori infection", "GI bleeding"},
		Labs:        []string{"H. pylori test", "hemoglobin", "stool guaiac"},
		Medications: []string{"omeprazole", "clarithromycin", "amoxicillin", "bismuth"},
	},
	"inflammatory bowel disease": {
		Diagnoses:   []string{"Crohn's disease", "ulcerative colitis", "malnutrition"},
		Labs:        []string{"CRP", "ESR", "fecal calprotectin", "colonoscopy"},
		Medications: []string{"mesalamine", "prednisone", "azathioprine", "infliximab"},
	},
	"cirrhosis": {
		Diagnoses:   []string{"hepatic encephalopathy", "ascites", "esophageal varices"},
		Labs:        []string{"liver function tests", "albumin", "INR", "ammonia"},
		Medications: []string{"lactulose", "spironolactone", "propranolol", "rifaximin"},
	},
	// Renal conditions
	"chronic kidney disease": {
		Diagnoses:   []string{"anemia", "hyperkalemia", "metabolic acidosis"},
		Labs:        []string{"creatinine", "BUN", "GFR", "urinalysis", "phosphorus"},
		Medications: []string{"lisinopril", "furosemide", "erythropoietin", "calcitriol"},
	},
	"nephrotic syndrome": {
		Diagnoses:   []string{"edema", "hyperlipidemia", "thrombosis"},
		Labs:        []string{"urinalysis", "24-hour urine protein", "albumin", "lipid panel"},
		Medications: []string{"prednisone", "lisinopril", "furosemide", "atorvastatin"},
	},
	"urinary tract infection": {
		Diagnoses:   []string{"pyelonephritis", "cystitis", "sepsis"},
		Labs:        []string{"urinalysis", "urine culture", "complete blood count"},
		Medications: []string{"ciprofloxacin", "nitrofurantoin", "trimethoprim", "cephalexin"},
	},
	// Neurological conditions
	"stroke": {
		Diagnoses:   []string{"transient ischemic attack", "atrial fibrillation", "carotid stenosis"},
		Labs:        []string{"CT scan", "MRI", "carotid ultrasound", "echocardiogram"},
		Medications: []string{"aspirin", "clopidogrel", "alteplase", "atorvastatin"},
	},
	"epilepsy": {
		Diagnoses:   []string{"seizure disorder", "status epilepticus"},
		Labs:        []string{"EEG", "MRI brain", "drug levels"},
		Medications: []string{"levetiracetam", "phenytoin", "valproic acid", "lamotrigine"},
	},
	"parkinson": {
		Diagnoses:   []string{"tremor", "bradykinesia", "dementia"},
		Labs:        []string{"DaTscan", "MRI brain"},
		Medications: []string{"levodopa", "carbidopa", "pramipexole", "rasagiline"},
	},
	"migraine": {
		Diagnoses:   []string{"tension headache", "cluster headache", "aura"},
		Labs:        []string{"MRI brain", "CT scan"},
		Medications: []string{"sumatriptan", "topiramate", "propranolol", "amitriptyline"},
	},
	"dementia": {
		Diagnoses:   []string{"Alzheimer's disease", "vascular dementia", "Lewy body dementia"},
		Labs:        []string{"cognitive testing", "MRI brain", "vitamin B12"},
		Medications: []string{"donepezil", "memantine", "rivastigmine", "galantamine"},
	},
	// Musculoskeletal conditions
	"osteoarthritis": {
		Diagnoses:   []string{"joint pain", "joint stiffness", "bone spur"},
		Labs:        []string{"X-ray", "MRI joint"},
		Medications: []string{"acetaminophen", "ibuprofen", "celecoxib", "duloxetine"},
	},
	"rheumatoid arthritis": {
		Diagnoses:   []string{"joint swelling", "joint deformity", "rheumatoid nodule"},
		Labs:        []string{"rheumatoid factor", "anti-CCP", "ESR", "CRP"},
		Medications: []string{"methotrexate", "hydroxychloroquine", "adalimumab", "prednisone"},
	},
	"osteoporosis": {
		Diagnoses:   []string{"fracture", "kyphosis", "bone loss"},
		Labs:        []string{"DEXA scan", "calcium", "vitamin D"},
		Medications: []string{"alendronate", "risedronate", "denosumab", "teriparatide"},
	},
	"gout": {
		Diagnoses:   []string{"hyperuricemia", "tophus", "nephrolithiasis"},
		Labs:        []string{"uric acid", "joint fluid analysis", "renal function"},
		Medications: []string{"colchicine", "allopurinol", "febuxostat", "indomethacin"},
	},
	"back pain": {
		Diagnoses:   []string{"herniated disc", "spinal stenosis", "sciatica"},
		Labs:        []string{"MRI spine", "X-ray spine"},
		Medications: []string{"ibuprofen", "cyclobenzaprine", "gabapentin", "lidocaine patch"},
	},
	// Infectious diseases
	"sepsis": {
		Diagnoses:   []string{"septic shock", "bacteremia", "multi-organ failure"},
		Labs:        []string{"blood culture", "lactate", "procalcitonin", "complete blood count"},
		Medications: []string{"vancomycin", "piperacillin-tazobactam", "ceftriaxone", "norepinephrine"},
	},
	"cellulitis": {
		Diagnoses:   []string{"abscess", "lymphangitis", "necrotizing fasciitis"},
		Labs:        []string{"complete blood count", "blood culture", "wound culture"},
		Medications: []string{"cephalexin", "clindamycin", "vancomycin", "doxycycline"},
	},
	"hepatitis": {
		Diagnoses:   []string{"cirrhosis", "hepatocellular carcinoma", "liver failure"},
		Labs:        []string{"hepatitis panel", "liver function tests", "viral load"},
		Medications: []string{"entecavir", "tenofovir", "sofosbuvir", "ledipasvir"},
	},
	"hiv": {
		Diagnoses:   []string{"AIDS", "opportunistic infection", "Kaposi sarcoma"},
		Labs:        []string{"CD4 count", "viral load", "HIV genotype"},
		Medications: []string{"emtricitabine", "tenofovir", "dolutegravir", "bictegravir"},
	},
	// Psychiatric conditions
	"depression": {
		Diagnoses:   []string{"major depressive disorder", "dysthymia", "suicidal ideation"},
		Labs:        []string{"thyroid function", "vitamin B12", "folate"},
		Medications: []string{"sertraline", "fluoxetine", "bupropion", "venlafaxine"},
	},
	"anxiety": {
		Diagnoses:   []string{"generalized anxiety disorder", "panic disorder", "social anxiety"},
		Labs:        []string{"thyroid function", "drug screen"},
		Medications: []string{"sertraline", "buspirone", "lorazepam", "gabapentin"},
	},
	"bipolar": {
		Diagnoses:   []string{"mania", "hypomania", "psychosis"},
		Labs:        []string{"lithium level", "thyroid function", "renal function"},
		Medications: []string{"lithium", "valproic acid", "lamotrigine", "quetiapine"},
	},
	"schizophrenia": {
		Diagnoses:   []string{"psychosis", "hallucination", "delusion"},
		Labs:        []string{"drug screen", "metabolic panel", "prolactin"},
		Medications: []string{"risperidone", "olanzapine", "aripiprazole", "clozapine"},
	},
	// Dermatological conditions
	"psoriasis": {
		Diagnoses:   []string{"psoriatic arthritis", "plaque psoriasis"},
		Labs:        []string{"skin biopsy", "rheumatoid factor"},
		Medications: []string{"methotrexate", "adalimumab", "ustekinumab", "apremilast"},
	},
	"eczema": {
		Diagnoses:   []string{"atopic dermatitis", "contact dermatitis"},
		Labs:        []string{"IgE", "allergy testing", "skin biopsy"},
		Medications: []string{"hydrocortisone", "tacrolimus", "dupilumab", "crisaborole"},
	},
	// Oncology conditions
	"breast cancer": {
		Diagnoses:   []string{"ductal carcinoma", "lobular carcinoma", "metastasis"},
		Labs:        []string{"mammogram", "biopsy", "ER/PR/HER2", "tumor markers"},
		Medications: []string{"tamoxifen", "anastrozole", "trastuzumab", "paclitaxel"},
	},
	"lung cancer": {
		Diagnoses:   []string{"non-small cell lung cancer", "small cell lung cancer", "metastasis"},
		Labs:        []string{"CT chest", "PET scan", "biopsy", "EGFR mutation"},
		Medications: []string{"cisplatin", "carboplatin", "pembrolizumab", "osimertinib"},
	},
	"colon cancer": {
		Diagnoses:   []string{"colorectal cancer", "adenocarcinoma", "metastasis"},
		Labs:        []string{"colonoscopy", "CEA", "CT scan", "biopsy"},
		Medications: []string{"fluorouracil", "oxaliplatin", "bevacizumab", "cetuximab"},
	},
	"prostate cancer": {
		Diagnoses:   []string{"adenocarcinoma", "metastatic prostate cancer"},
		Labs:        []string{"PSA", "prostate biopsy", "bone scan", "CT scan"},
		Medications: []string{"leuprolide", "enzalutamide", "abiraterone", "docetaxel"},
	},
	// Hematological conditions
	"anemia": {
		Diagnoses:   []string{"iron deficiency anemia", "B12 deficiency", "hemolytic anemia"},
		Labs:        []string{"complete blood count", "iron studies", "reticulocyte count", "vitamin B12"},
		Medications: []string{"ferrous sulfate", "cyanocobalamin", "epoetin alfa", "folic acid"},
	},
	"leukemia": {
		Diagnoses:   []string{"acute lymphoblastic leukemia", "chronic myeloid leukemia"},
		Labs:        []string{"complete blood count", "bone marrow biopsy", "flow cytometry"},
		Medications: []string{"imatinib", "dasatinib", "vincristine", "daunorubicin"},
	},
	// Endocrine conditions
	"cushing": {
		Diagnoses:   []string{"Cushing syndrome", "adrenal adenoma", "pituitary adenoma"},
		Labs:        []string{"cortisol", "ACTH", "dexamethasone suppression test"},
		Medications: []string{"ketoconazole", "metyrapone", "pasireotide"},
	},
	"addison": {
		Diagnoses:   []string{"adrenal insufficiency", "hypocortisolism"},
		Labs:        []string{"cortisol", "ACTH", "ACTH stimulation test"},
		Medications: []string{"hydrocortisone", "fludrocortisone", "prednisone"},
	},
	// Autoimmune conditions
	"lupus": {
		Diagnoses:   []string{"systemic lupus erythematosus", "lupus nephritis", "antiphospholipid syndrome"},
		Labs:        []string{"ANA", "anti-dsDNA", "complement levels", "urinalysis"},
		Medications: []string{"hydroxychloroquine", "prednisone", "mycophenolate", "belimumab"},
	},
	"multiple sclerosis": {
		Diagnoses:   []string{"optic neuritis", "transverse myelitis", "demyelination"},
		Labs:        []string{"MRI brain", "MRI spine", "lumbar puncture", "evoked potentials"},
		Medications: []string{"interferon beta", "glatiramer", "dimethyl fumarate", "ocrelizumab"},
	},
}
