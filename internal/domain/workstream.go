package domain

// Workstream is a sub-task of an incident. PartitionKey is the incident number.
type Workstream struct {
	PartitionKey string `json:"partitionKey"`
	RowKey       string `json:"rowKey"`
	Priority     int    `json:"priority"`
	Description  string `json:"description"`
	AssignedTo   string `json:"assignedTo"`
	AssignedName string `json:"assignedName,omitempty"`
	InActive     bool   `json:"inActive"`
}
