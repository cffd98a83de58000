package constants

const (
	CHANNEL_SIZE          = 100 // observer and hub channel buffer
	REDIS_TIMEOUT         = 1   // cached list TTL (minutes)
	UPLOAD_BATCH_SIZE     = 100 // default CSV batch size
	INBOUND_DEDUP_MINUTES = 1440
)

// Cache and lock keys.
const (
	CONTACT_LIST_CACHE_KEY = "contact_lists"
	INBOUND_DEDUP_PREFIX   = "inbound:dedup:"
	CAMPAIGN_LOCK_PREFIX   = "campaign:"
)

// OptOutKeywords trigger an opt-out when found anywhere in an inbound body, case-insensitively.
var OptOutKeywords = []string{"STOP", "UNSUBSCRIBE", "QUIT", "CANCEL", "OPT-OUT"}

// Campaign status values.
const (
	CampaignDraft     = "draft"
	CampaignSending   = "sending"
	CampaignCompleted = "completed"
)

// Message direction values.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message status values written by this service. Providers may report others.
const (
	MessagePending   = "pending"
	MessageDelivered = "delivered"
	MessageFailed    = "failed"
	MessageReceived  = "received"
)

// OptOutConfirmation is sent back to a contact after an opt-out keyword.
const OptOutConfirmation = "You have been unsubscribed from our messages. Reply START to resubscribe."
