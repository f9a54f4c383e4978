// Package flow implements the conversation state machines behind the bot:
// panel setup, single client creation and bulk client import. Each flow is a
// sequence of steps persisted per user; an incoming message is interpreted
// against the user's current step and either advances the flow, re-prompts, or
// finishes with panel side effects.
package flow

// Step marks a user's position inside one of the flows. An absent state record
// means no flow is active.
type Step string

const (
	// Setup flow: collect panel URL, username and password, then log in.
	StepSetupAwaitingURL      Step = "setup_awaiting_url"
	StepSetupAwaitingUsername Step = "setup_awaiting_username"
	StepSetupAwaitingPassword Step = "setup_awaiting_password"

	// Single-client flow: inbound picked, waiting for the client email.
	StepClientAwaitingEmail Step = "client_awaiting_email"

	// Bulk flow: inbound picked, waiting for the UUID/email list.
	StepBulkAwaitingList Step = "bulk_awaiting_list"
)

// Data keys accumulated in ConversationState.Data across steps.
const (
	dataURL       = "url"
	dataUsername  = "username"
	dataPassword  = "password"
	dataInboundID = "inboundId"
	dataProtocol  = "protocol"
)
