package pharma

var dosageUnits = []string{
	"MG", "GM", "G", "ML", "MCG", "IU", "UNIT", "UNITS",
	"MICROGRAM", "MILLIGRAM", "GRAM", "MILLILITRE", "LITRE",
}

var forms = []string{
	"TAB", "TABS", "TABLET", "TABLETS",
	"CAP", "CAPS", "CAPSULE", "CAPSULES",
	"SYRUP", "SUSPENSION", "SUSP", "DROPS",
	"INJ", "INJECTION", "CREAM", "OINTMENT", "GEL",
	"LOTION", "SPRAY", "POWDER", "SACHET", "SACHETS",
	"SOLUTION", "SOL", "AMPOULE", "AMP", "VIAL",
	"SUPPOSITORY", "SUPP", "PESSARY",
}

var canonicalForms = map[string]string{
	"TABLETS": "TAB", "TABLET": "TAB", "TABS": "TAB",
	"CAPSULES": "CAP", "CAPSULE": "CAP", "CAPS": "CAP",
	"SUSPENSION":  "SUSP",
	"INJECTION":   "INJ",
	"SOLUTION":    "SOL",
	"AMPOULE":     "AMP",
	"SUPPOSITORY": "SUPP",
	"SACHETS":     "SACHET",
}

var abbreviations = map[string]string{
	"CAL":        "CALCIUM",
	"MAG":        "MAGNESIUM",
	"VIT":        "VITAMIN",
	"PARACET":    "PARACETAMOL",
	"PMOL":       "PARACETAMOL",
	"IBUPROF":    "IBUPROFEN",
	"DICLO":      "DICLOFENAC",
	"AMOXI":      "AMOXICILLIN",
	"AMOX":       "AMOXICILLIN",
	"CEFU":       "CEFUROXIME",
	"CEFURO":     "CEFUROXIME",
	"CLAV":       "CLAVULANIC",
	"ATORVA":     "ATORVASTATIN",
	"ROSUVA":     "ROSUVASTATIN",
	"MONTE":      "MONTELUKAST",
	"LEVO":       "LEVOCETIRIZINE",
	"CETIRIZ":    "CETIRIZINE",
	"CETIRI":     "CETIRIZINE",
	"LORA":       "LORATADINE",
	"DEXA":       "DEXAMETHASONE",
	"PRED":       "PREDNISOLONE",
	"HYDRO":      "HYDROCORTISONE",
	"DECONGEST":  "DECONGESTANT",
	"ANTIHISTAM": "ANTIHISTAMINE",
	"SUPPL":      "SUPPLEMENT",
	"MULTIVIT":   "MULTIVITAMIN",
}

var stopwords = map[string]struct{}{
	"THE": {}, "AND": {}, "WITH": {}, "FOR": {}, "PLUS": {}, "NEW": {}, "ADVANCED": {},
	"EXTRA": {}, "SUPER": {}, "MAXIMUM": {}, "ORIGINAL": {}, "REGULAR": {},
}
