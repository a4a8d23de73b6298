package model

// Digest is the compact, LLM-ready result of one filtering call.
type Digest struct {
	Query                   string         `json:"query" yaml:"query"`
	ProcessingSummary       string         `json:"processing_summary" yaml:"processing_summary"`
	TotalLogs               int            `json:"total_logs" yaml:"total_logs"`
	SelectedLogs            int            `json:"selected_logs" yaml:"selected_logs"`
	CostReductionPercentage float64        `json:"cost_reduction_percentage" yaml:"cost_reduction_percentage"`
	EstimatedTokens         int            `json:"estimated_tokens,omitempty" yaml:"estimated_tokens,omitempty"`
	Criteria                *Criteria      `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	Windows                 []WindowDigest `json:"windows" yaml:"windows"`
}

// WindowDigest is a window reduced to its summary and representative logs.
type WindowDigest struct {
	Summary string      `json:"summary" yaml:"summary"`
	Score   float64     `json:"score" yaml:"score"`
	TraceID string      `json:"trace_id,omitempty" yaml:"trace_id,omitempty"`
	Logs    []LogDigest `json:"logs" yaml:"logs"`
}

// LogDigest is a single log entry as handed to the analysis step.
type LogDigest struct {
	Service   string `json:"service" yaml:"service"`
	Severity  string `json:"severity" yaml:"severity"`
	Message   string `json:"message" yaml:"message"`
	Status    int    `json:"status,omitempty" yaml:"status,omitempty"`
	Route     string `json:"route,omitempty" yaml:"route,omitempty"`
	Method    string `json:"method,omitempty" yaml:"method,omitempty"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	TraceID   string `json:"trace_id,omitempty" yaml:"trace_id,omitempty"`
}

// Criteria is the structured form of a free-text query.
type Criteria struct {
	Services        []string `json:"services,omitempty" yaml:"services,omitempty"`
	Routes          []string `json:"routes,omitempty" yaml:"routes,omitempty"`
	Methods         []string `json:"methods,omitempty" yaml:"methods,omitempty"`
	UserIDs         []string `json:"user_ids,omitempty" yaml:"user_ids,omitempty"`
	StatusCodes     []int    `json:"status_codes,omitempty" yaml:"status_codes,omitempty"`
	ErrorIndicators bool     `json:"error_indicators" yaml:"error_indicators"`
	TimeRecent      bool     `json:"time_recent" yaml:"time_recent"`
	Keywords        []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}
