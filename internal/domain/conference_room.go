package domain

// ConferenceRoomPartition is the single partition holding all bridges.
const ConferenceRoomPartition = "conferencerooms"

// ConferenceRoom is a bridge line bound to at most one open incident.
type ConferenceRoom struct {
	PartitionKey string `json:"partitionKey"`
	Code         string `json:"code"`
	Available    bool   `json:"available"`
	BridgeURL    string `json:"bridgeUrl"`
	ChannelID    string `json:"channelId"`
}
