package knowledge

import "github.com/fieldwise/fieldwise"

// Accepted date layouts for the built-in domains.
var (
	usDateLayouts   = []string{"01/02/2006", "2006-01-02"}
	longDateLayouts = []string{"01/02/2006", "2006-01-02", "January 2, 2006"}
)

// BuiltinBases returns fresh copies of the five built-in knowledge bases.
// Each call builds new values so callers can extend one before registering
// it without affecting others.
func BuiltinBases() []*KnowledgeBase {
	return []*KnowledgeBase{
		RealEstateBase(),
		MedicalBase(),
		InsuranceBase(),
		FinanceBase(),
		LegalBase(),
	}
}

// RealEstateBase covers deeds, closings, and recording references.
func RealEstateBase() *KnowledgeBase {
	return &KnowledgeBase{
		Domain: RealEstate,
		Glossary: map[string]TermEntry{
			"Property Address": {
				Aliases:       []string{"address", "property location", "real estate location", "premises"},
				Abbreviations: []string{"addr"},
				Category:      "property",
				Description:   "The physical location of the property",
				Examples:      []string{"123 Main St, Nashville, TN 37201"},
			},
			"Deed Book": {
				Aliases:       []string{"book number", "deed reference", "recording book"},
				Abbreviations: []string{"book"},
				Category:      "recording",
				Description:   "Reference to the deed recording book",
				Examples:      []string{"Book 5432"},
			},
			"Page Number": {
				Aliases:       []string{"page", "recording page"},
				Abbreviations: []string{"pg"},
				Category:      "recording",
				Description:   "Page number in the deed recording",
				Examples:      []string{"Page 234"},
			},
			"Legal Description": {
				Aliases:       []string{"property description", "land description"},
				Abbreviations: []string{"legal desc"},
				Category:      "property",
				Description:   "Official legal description of the property",
				Examples:      []string{"Lot 5, Block 2, Green Hills Subdivision"},
			},
			"Grantor": {
				Aliases:     []string{"seller", "conveyor", "donor"},
				Category:    "party",
				Description: "The party transferring the property",
				Examples:    []string{"John Smith"},
			},
			"Grantee": {
				Aliases:     []string{"buyer", "purchaser", "recipient"},
				Category:    "party",
				Description: "The party receiving the property",
				Examples:    []string{"Jane Doe"},
			},
			"Purchase Price": {
				Aliases:     []string{"sale price", "consideration amount"},
				Abbreviations: []string{"price"},
				Category:    "financial",
				Description: "Amount paid for the property",
				Examples:    []string{"$250,000"},
			},
			"Closing Date": {
				Aliases:       []string{"settlement date", "date of closing"},
				Abbreviations: []string{"close date"},
				Category:      "temporal",
				Description:   "Date the transaction closes",
				Examples:      []string{"January 15, 2024"},
			},
			"Contract Date": {
				Aliases:     []string{"agreement date", "date of contract"},
				Category:    "temporal",
				Description: "Date the purchase contract was executed",
				Examples:    []string{"December 1, 2023"},
			},
			"Title Company": {
				Aliases:       []string{"title agent", "closing agent", "title insurer"},
				Abbreviations: []string{"title co"},
				Category:      "service",
				Description:   "Entity providing title services",
				Examples:      []string{"First National Title Company"},
			},
		},
		FieldMappings: map[string]string{
			"seller name":         "Grantor",
			"buyer name":          "Grantee",
			"recording reference": "Deed Book",
			"transaction amount":  "Purchase Price",
		},
		Relationships: []Relation{
			{Term: "Deed Book", Related: "Page Number", Kind: RelationRecordedIn},
			{Term: "Deed Book", Related: "Legal Description", Kind: RelationRecordedIn},
			{Term: "Grantor", Related: "Grantee", Kind: RelationPartyTo},
			{Term: "Grantor", Related: "Property Address", Kind: RelationPartyTo},
			{Term: "Grantee", Related: "Purchase Price", Kind: RelationPartyTo},
			{Term: "Purchase Price", Related: "Closing Date", Kind: RelationAssociated},
			{Term: "Property Address", Related: "Legal Description", Kind: RelationAssociated},
			{Term: "Property Address", Related: "Deed Book", Kind: RelationAssociated},
		},
		CategoryPatterns: map[string][]string{
			"property":  {"address", "location", "property", "premises", "land", "real estate"},
			"party":     {"seller", "buyer", "grantor", "grantee", "owner"},
			"financial": {"price", "consideration", "amount", "cost", "payment"},
			"recording": {"deed", "book", "page", "reference", "instrument"},
			"temporal":  {"date", "closing", "settlement", "commencement"},
		},
		Rules: []Rule{
			{
				Name:     "purchase_price_format",
				Kind:     RuleRegex,
				Field:    "Purchase Price",
				Pattern:  `^-?\$?\d+(?:,\d{3})*(?:\.\d{2})?$`,
				Severity: fieldwise.SeverityCritical,
				Message:  "purchase price must look like $XXX,XXX.XX",
			},
			{
				Name:     "purchase_price_range",
				Kind:     RuleRange,
				Field:    "Purchase Price",
				Min:      floatPtr(0),
				Max:      floatPtr(100_000_000),
				Severity: fieldwise.SeverityCritical,
				Message:  "purchase price must be between $0 and $100,000,000",
			},
			{
				Name:     "closing_date_format",
				Kind:     RuleDate,
				Field:    "Closing Date",
				Formats:  longDateLayouts,
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "deed_book_format",
				Kind:     RuleRegex,
				Field:    "Deed Book",
				Pattern:  `^[Bb]ook\s*\d+`,
				Severity: fieldwise.SeverityWarning,
				Message:  "deed book should be formatted: Book XXXXX",
			},
			{
				Name:     "page_number_format",
				Kind:     RuleRegex,
				Field:    "Page Number",
				Pattern:  `^\d+`,
				Severity: fieldwise.SeverityWarning,
				Message:  "page number must be numeric",
			},
			{
				Name:     "valid_parties",
				Kind:     RuleCrossField,
				Relation: CrossBothPresent,
				Fields:   []string{"Grantor", "Grantee"},
				Mandatory: true,
				Severity: fieldwise.SeverityCritical,
				Message:  "both seller and buyer must be specified",
			},
			{
				Name:     "closing_after_contract",
				Kind:     RuleCrossField,
				Relation: CrossDateBefore,
				Fields:   []string{"Contract Date", "Closing Date"},
				Formats:  longDateLayouts,
				Severity: fieldwise.SeverityCritical,
				Message:  "closing date must fall after the contract date",
			},
			{
				Name:     "transaction_completeness",
				Kind:     RuleCompliance,
				Check:    ComplianceRequiredFields,
				Fields:   []string{"Grantor", "Grantee", "Property Address", "Purchase Price"},
				Severity: fieldwise.SeverityCritical,
			},
		},
	}
}

// MedicalBase covers patient records, with HIPAA-flavored compliance rules.
func MedicalBase() *KnowledgeBase {
	return &KnowledgeBase{
		Domain: Medical,
		Glossary: map[string]TermEntry{
			"Patient Name": {
				Aliases:       []string{"patient", "patient identifier"},
				Abbreviations: []string{"pt name"},
				Category:      "demographic",
				Description:   "Name of the patient",
				Examples:      []string{"John Smith"},
			},
			"Date of Birth": {
				Aliases:       []string{"birth date", "birthday"},
				Abbreviations: []string{"DOB"},
				Category:      "demographic",
				Description:   "Patient's date of birth",
				Examples:      []string{"01/15/1980"},
			},
			"Patient ID": {
				Aliases:       []string{"medical record number", "chart number"},
				Abbreviations: []string{"MRN"},
				Category:      "demographic",
				Description:   "Patient identifier within the facility",
				Examples:      []string{"ABC123456"},
			},
			"Diagnosis": {
				Aliases:       []string{"diagnosis code", "condition", "ICD code"},
				Abbreviations: []string{"dx"},
				Category:      "clinical",
				Description:   "Medical diagnosis code or description",
				Examples:      []string{"I10 - Essential hypertension"},
			},
			"Medication": {
				Aliases:       []string{"drug", "prescription", "medicine"},
				Abbreviations: []string{"med", "rx"},
				Category:      "treatment",
				Description:   "Prescribed medication",
				Examples:      []string{"Lisinopril 10mg"},
			},
			"Allergy": {
				Aliases:     []string{"allergies", "adverse reaction", "intolerance"},
				Category:    "safety",
				Description: "Known allergies",
				Examples:    []string{"Penicillin, Peanuts"},
			},
			"Provider": {
				Aliases:       []string{"physician", "doctor", "nurse"},
				Abbreviations: []string{"MD", "RN"},
				Category:      "personnel",
				Description:   "Healthcare provider name",
				Examples:      []string{"Dr. Jane Smith, MD"},
			},
			"Insurance ID": {
				Aliases:     []string{"member ID", "group number"},
				Category:    "insurance",
				Description: "Insurance policy or member ID",
				Examples:    []string{"ABC123456"},
			},
			"Hypertension": {
				Category:    "clinical",
				Description: "High blood pressure",
			},
			"Diabetes Mellitus": {
				Category:    "clinical",
				Description: "Metabolic disease marked by high blood sugar",
			},
			"Congestive Heart Failure": {
				Category:    "clinical",
				Description: "Chronic condition where the heart pumps inadequately",
			},
			"Chronic Obstructive Pulmonary Disease": {
				Category:    "clinical",
				Description: "Progressive obstructive lung disease",
			},
			"Myocardial Infarction": {
				Category:    "clinical",
				Description: "Heart attack",
			},
		},
		Abbreviations: map[string]string{
			"HTN":  "Hypertension",
			"DM":   "Diabetes Mellitus",
			"CHF":  "Congestive Heart Failure",
			"COPD": "Chronic Obstructive Pulmonary Disease",
			"MI":   "Myocardial Infarction",
		},
		Relationships: []Relation{
			{Term: "Patient Name", Related: "Date of Birth", Kind: RelationAssociated},
			{Term: "Patient Name", Related: "Diagnosis", Kind: RelationAssociated},
			{Term: "Patient Name", Related: "Allergy", Kind: RelationAssociated},
			{Term: "Diagnosis", Related: "Medication", Kind: RelationAssociated},
			{Term: "Diagnosis", Related: "Provider", Kind: RelationAssociated},
			{Term: "Medication", Related: "Allergy", Kind: RelationAssociated},
			{Term: "Provider", Related: "Insurance ID", Kind: RelationAssociated},
		},
		CategoryPatterns: map[string][]string{
			"demographic": {"name", "patient", "age", "birth", "dob"},
			"clinical":    {"diagnosis", "condition", "disease", "icd"},
			"treatment":   {"medication", "drug", "prescription", "rx", "therapy"},
			"safety":      {"allergy", "adverse", "reaction", "intolerance"},
			"vital":       {"blood pressure", "heart rate", "temperature", "weight", "height"},
		},
		Rules: []Rule{
			{
				Name:     "dob_format",
				Kind:     RuleDate,
				Field:    "Date of Birth",
				Formats:  usDateLayouts,
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "patient_id_format",
				Kind:     RuleRegex,
				Field:    "Patient ID",
				Pattern:  `^[A-Z0-9]{6,12}$`,
				Severity: fieldwise.SeverityCritical,
				Message:  "patient ID must be 6-12 alphanumeric characters",
			},
			{
				Name:     "age_range",
				Kind:     RuleRange,
				Field:    "Age",
				Min:      floatPtr(0),
				Max:      floatPtr(150),
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "hipaa_patient_identifier",
				Kind:     RuleCompliance,
				Check:    ComplianceRequiredFields,
				Fields:   []string{"Patient ID"},
				Severity: fieldwise.SeverityWarning,
				Message:  "patient must be de-identified or have proper access controls",
			},
			{
				Name:     "clinical_completeness",
				Kind:     RuleCompliance,
				Check:    ComplianceAnyPresent,
				Fields:   []string{"Diagnosis", "Reason for Visit"},
				Severity: fieldwise.SeverityWarning,
				Message:  "clinical record should include diagnosis or reason for visit",
			},
			{
				Name:     "no_raw_ssn",
				Kind:     RuleCompliance,
				Check:    ComplianceDisallowedPattern,
				Pattern:  `\b\d{3}-\d{2}-\d{4}\b`,
				Severity: fieldwise.SeverityCritical,
				Message:  "field values must not carry raw social security numbers",
			},
		},
	}
}

// InsuranceBase covers policies, coverage, and premiums.
func InsuranceBase() *KnowledgeBase {
	return &KnowledgeBase{
		Domain: Insurance,
		Glossary: map[string]TermEntry{
			"Policy Number": {
				Aliases:       []string{"policy ID", "contract number"},
				Abbreviations: []string{"pol"},
				Category:      "policy",
				Description:   "Unique insurance policy identifier",
				Examples:      []string{"POL2024001234"},
			},
			"Policyholder": {
				Aliases:       []string{"insured", "primary insured", "named insured"},
				Abbreviations: []string{"ph"},
				Category:      "party",
				Description:   "Person or entity holding the policy",
				Examples:      []string{"John Smith"},
			},
			"Beneficiary": {
				Aliases:       []string{"beneficiaries", "dependent", "named beneficiary"},
				Abbreviations: []string{"ben"},
				Category:      "party",
				Description:   "Designated recipient of policy benefits",
				Examples:      []string{"Jane Smith"},
			},
			"Coverage Limit": {
				Aliases:     []string{"coverage amount", "benefit maximum"},
				Abbreviations: []string{"limit"},
				Category:    "coverage",
				Description: "Maximum amount the insurer will pay",
				Examples:    []string{"$500,000"},
			},
			"Premium": {
				Aliases:       []string{"monthly payment", "annual premium"},
				Abbreviations: []string{"prem"},
				Category:      "financial",
				Description:   "Amount paid for insurance",
				Examples:      []string{"$1,250"},
			},
			"Deductible": {
				Aliases:       []string{"out of pocket", "deductable"},
				Abbreviations: []string{"ded"},
				Category:      "financial",
				Description:   "Amount the insured pays before coverage starts",
				Examples:      []string{"$1,000"},
			},
			"Effective Date": {
				Aliases:       []string{"start date", "policy start"},
				Abbreviations: []string{"eff date"},
				Category:      "temporal",
				Description:   "Date the policy becomes active",
				Examples:      []string{"January 1, 2024"},
			},
		},
		Relationships: []Relation{
			{Term: "Policy Number", Related: "Policyholder", Kind: RelationAssociated},
			{Term: "Policy Number", Related: "Beneficiary", Kind: RelationAssociated},
			{Term: "Policy Number", Related: "Effective Date", Kind: RelationAssociated},
			{Term: "Policyholder", Related: "Beneficiary", Kind: RelationPartyTo},
			{Term: "Policyholder", Related: "Coverage Limit", Kind: RelationAssociated},
			{Term: "Coverage Limit", Related: "Premium", Kind: RelationAssociated},
			{Term: "Coverage Limit", Related: "Deductible", Kind: RelationAssociated},
		},
		CategoryPatterns: map[string][]string{
			"policy":    {"policy", "contract", "number"},
			"party":     {"policyholder", "beneficiary", "insured", "recipient"},
			"coverage":  {"limit", "coverage", "benefit"},
			"financial": {"premium", "deductible", "payment", "rate"},
			"temporal":  {"date", "effective", "start", "expiration"},
		},
		Rules: []Rule{
			{
				Name:     "policy_number_format",
				Kind:     RuleRegex,
				Field:    "Policy Number",
				Pattern:  `^[A-Z0-9]{6,20}$`,
				Severity: fieldwise.SeverityCritical,
				Message:  "policy number must be 6-20 alphanumeric characters",
			},
			{
				Name:     "premium_range",
				Kind:     RuleRange,
				Field:    "Premium",
				Min:      floatPtr(0),
				Max:      floatPtr(100_000),
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "deductible_range",
				Kind:     RuleRange,
				Field:    "Deductible",
				Min:      floatPtr(0),
				Max:      floatPtr(10_000),
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "coverage_limit_range",
				Kind:     RuleRange,
				Field:    "Coverage Limit",
				Min:      floatPtr(0),
				Max:      floatPtr(5_000_000),
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "coverage_consistency",
				Kind:     RuleCrossField,
				Relation: CrossLessOrEqual,
				Fields:   []string{"Deductible", "Coverage Limit"},
				Severity: fieldwise.SeverityCritical,
				Message:  "deductible cannot exceed coverage limit",
			},
			{
				Name:     "premium_relationship",
				Kind:     RuleCrossField,
				Relation: CrossMaxRatio,
				Fields:   []string{"Premium", "Coverage Limit"},
				Ratio:    0.1,
				Severity: fieldwise.SeverityWarning,
				Message:  "premium seems high relative to coverage limit",
			},
			{
				Name:     "policy_validity",
				Kind:     RuleCompliance,
				Check:    ComplianceRequiredFields,
				Fields:   []string{"Policy Number", "Policyholder"},
				Severity: fieldwise.SeverityCritical,
			},
		},
	}
}

// FinanceBase covers accounting statements.
func FinanceBase() *KnowledgeBase {
	return &KnowledgeBase{
		Domain: Finance,
		Glossary: map[string]TermEntry{
			"Revenue": {
				Aliases:       []string{"sales", "income", "proceeds"},
				Abbreviations: []string{"rev"},
				Category:      "financial",
				Description:   "Total income from business operations",
				Examples:      []string{"$1,000,000"},
			},
			"Expense": {
				Aliases:       []string{"cost", "expenditure", "outflow"},
				Abbreviations: []string{"exp"},
				Category:      "financial",
				Description:   "Costs of doing business",
				Examples:      []string{"$500,000"},
			},
			"Net Income": {
				Aliases:       []string{"profit", "earnings", "bottom line"},
				Abbreviations: []string{"NI"},
				Category:      "financial",
				Description:   "Revenue minus expenses",
				Examples:      []string{"$500,000"},
			},
			"Account Number": {
				Aliases:       []string{"GL account", "account code"},
				Abbreviations: []string{"acct"},
				Category:      "accounting",
				Description:   "General ledger account identifier",
				Examples:      []string{"4000-001"},
			},
			"Tax Amount": {
				Aliases:       []string{"taxes", "tax liability"},
				Abbreviations: []string{"tax"},
				Category:      "tax",
				Description:   "Tax liability",
				Examples:      []string{"$100,000"},
			},
		},
		Relationships: []Relation{
			{Term: "Revenue", Related: "Expense", Kind: RelationAssociated},
			{Term: "Revenue", Related: "Net Income", Kind: RelationDerivedOf},
			{Term: "Expense", Related: "Net Income", Kind: RelationDerivedOf},
			{Term: "Expense", Related: "Account Number", Kind: RelationRecordedIn},
			{Term: "Net Income", Related: "Tax Amount", Kind: RelationAssociated},
		},
		CategoryPatterns: map[string][]string{
			"financial":  {"revenue", "expense", "income", "cost", "profit"},
			"accounting": {"account", "ledger", "journal", "entry"},
			"tax":        {"tax", "liability", "deduction", "filing"},
		},
		Rules: []Rule{
			{
				Name:     "revenue_range",
				Kind:     RuleRange,
				Field:    "Revenue",
				Min:      floatPtr(0),
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "expense_range",
				Kind:     RuleRange,
				Field:    "Expense",
				Min:      floatPtr(0),
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "account_number_format",
				Kind:     RuleRegex,
				Field:    "Account Number",
				Pattern:  `^\d{4}-\d{3}$`,
				Severity: fieldwise.SeverityCritical,
				Message:  "account number format: XXXX-XXX",
			},
			{
				Name:      "income_calculation",
				Kind:      RuleCrossField,
				Relation:  CrossDifferenceEquals,
				Fields:    []string{"Revenue", "Expense", "Net Income"},
				Tolerance: 0.01,
				Severity:  fieldwise.SeverityCritical,
				Message:   "net income must equal revenue minus expenses",
			},
			{
				Name:     "loss_situation",
				Kind:     RuleCrossField,
				Relation: CrossLessOrEqual,
				Fields:   []string{"Expense", "Revenue"},
				Severity: fieldwise.SeverityWarning,
				Message:  "expenses exceed revenue (loss situation)",
			},
		},
	}
}

// LegalBase covers contracts.
func LegalBase() *KnowledgeBase {
	return &KnowledgeBase{
		Domain: Legal,
		Glossary: map[string]TermEntry{
			"Party": {
				Aliases:     []string{"parties", "contracting party"},
				Category:    "party",
				Description: "Entity entering into the contract",
				Examples:    []string{"John Smith"},
			},
			"Consideration": {
				Aliases:       []string{"benefit", "exchange"},
				Abbreviations: []string{"consid"},
				Category:      "obligation",
				Description:   "Something of value exchanged",
				Examples:      []string{"$10,000"},
			},
			"Effective Date": {
				Aliases:       []string{"start date", "commencement date"},
				Abbreviations: []string{"eff date"},
				Category:      "temporal",
				Description:   "Date the contract becomes effective",
				Examples:      []string{"January 1, 2024"},
			},
			"Termination Date": {
				Aliases:     []string{"end date", "expiration date"},
				Category:    "temporal",
				Description: "Date the contract ends",
				Examples:    []string{"December 31, 2024"},
			},
			"Termination Clause": {
				Aliases:       []string{"termination conditions", "expiration terms"},
				Abbreviations: []string{"term clause"},
				Category:      "termination",
				Description:   "Conditions for ending the contract",
				Examples:      []string{"Either party may terminate with 30 days notice"},
			},
			"Liability": {
				Aliases:       []string{"indemnification", "responsibility"},
				Abbreviations: []string{"liab"},
				Category:      "obligation",
				Description:   "Legal obligation or responsibility",
				Examples:      []string{"Each party is liable for their own negligence"},
			},
		},
		Relationships: []Relation{
			{Term: "Party", Related: "Consideration", Kind: RelationPartyTo},
			{Term: "Party", Related: "Effective Date", Kind: RelationAssociated},
			{Term: "Party", Related: "Liability", Kind: RelationPartyTo},
			{Term: "Consideration", Related: "Termination Clause", Kind: RelationAssociated},
			{Term: "Effective Date", Related: "Termination Date", Kind: RelationAssociated},
		},
		CategoryPatterns: map[string][]string{
			"party":       {"party", "parties", "entity", "person", "organization"},
			"obligation":  {"obligation", "liability", "responsibility", "duty", "consideration"},
			"termination": {"termination", "expiration", "renewal"},
			"temporal":    {"date", "effective", "commencement"},
		},
		Rules: []Rule{
			{
				Name:     "effective_date_format",
				Kind:     RuleDate,
				Field:    "Effective Date",
				Formats:  usDateLayouts,
				Severity: fieldwise.SeverityCritical,
			},
			{
				Name:     "date_sequence",
				Kind:     RuleCrossField,
				Relation: CrossDateBefore,
				Fields:   []string{"Effective Date", "Termination Date"},
				Formats:  longDateLayouts,
				Severity: fieldwise.SeverityCritical,
				Message:  "effective date must precede termination date",
			},
			{
				Name:     "contract_completeness",
				Kind:     RuleCompliance,
				Check:    ComplianceRequiredFields,
				Fields:   []string{"Party", "Effective Date", "Consideration"},
				Severity: fieldwise.SeverityCritical,
			},
		},
	}
}
