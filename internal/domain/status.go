package domain

// StatusPartition is the partition of the StatusConfiguration table.
const StatusPartition = "status"

// StatusConfiguration maps a card action name to a backend status code.
type StatusConfiguration struct {
	PartitionKey string         `json:"partitionKey"`
	Name         string         `json:"name"`
	Code         IncidentStatus `json:"code"`
}

// DefaultStatuses lists the built-in actions, used when no configuration rows exist.
func DefaultStatuses() []StatusConfiguration {
	return []StatusConfiguration{
		{PartitionKey: StatusPartition, Name: IncidentStatusNew.Label(), Code: IncidentStatusNew},
		{PartitionKey: StatusPartition, Name: IncidentStatusSuspended.Label(), Code: IncidentStatusSuspended},
		{PartitionKey: StatusPartition, Name: IncidentStatusRestored.Label(), Code: IncidentStatusRestored},
	}
}
