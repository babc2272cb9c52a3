package domain

// UserConfigurationPartition is the partition for Teams user rows.
const UserConfigurationPartition = "msteams"

// User is a read-only projection of a directory identity.
type User struct {
	ID                string `json:"id"`
	UserPrincipalName string `json:"userPrincipalName"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail,omitempty"`
	TeamsID           string `json:"teamsId,omitempty"`
	ServiceURL        string `json:"serviceUrl,omitempty"`
}

// UserConfiguration records where a user's personal chat with the bot lives.
// RowKey is the AAD object id.
type UserConfiguration struct {
	PartitionKey   string `json:"partitionKey"`
	RowKey         string `json:"rowKey"`
	TeamsID        string `json:"teamsId"`
	UserName       string `json:"userName"`
	ConversationID string `json:"conversationId"`
	ServiceURL     string `json:"serviceUrl"`
	TenantID       string `json:"tenantId"`
}
