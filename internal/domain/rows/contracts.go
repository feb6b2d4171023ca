package rows

import "time"

// ContractCode is verified contract source fetched from a block explorer,
// appended to the contract_code table.
type ContractCode struct {
	ContractAddress    string    `bigquery:"contract_address"`
	ChainID            int64     `bigquery:"chain_id"`
	ContractName       string    `bigquery:"contract_name"`
	CompilerVersion    string    `bigquery:"compiler_version"`
	SourceCode         string    `bigquery:"source_code"`
	ABI                string    `bigquery:"abi"`
	Opcodes            string    `bigquery:"opcodes"`
	IsVerified         bool      `bigquery:"is_verified"`
	IngestionTimestamp time.Time `bigquery:"ingestion_timestamp"`
}

// StaticAnalysis is the result of a static analyzer pass over one contract,
// appended to the contract_static_analysis table.
type StaticAnalysis struct {
	ContractAddress    string    `bigquery:"contract_address"`
	HighSeverityCount  int64     `bigquery:"high_severity_count"`
	MedSeverityCount   int64     `bigquery:"medium_severity_count"`
	LowSeverityCount   int64     `bigquery:"low_severity_count"`
	SecurityScore      float64   `bigquery:"security_score"`
	DetectorsTriggered []string  `bigquery:"detectors_triggered"`
	AnalyzedAt         time.Time `bigquery:"analyzed_at"`
}

// MLAnalysis is a hosted-model risk score for one contract, appended to
// the contract_ml_analysis table.
type MLAnalysis struct {
	ContractAddress    string    `bigquery:"contract_address"`
	HoneypotProb       float64   `bigquery:"honeypot_probability"`
	ModelVersion       string    `bigquery:"model_version"`
	AnalyzedAt         time.Time `bigquery:"analyzed_at"`
}
