package chain

// toolMeta is one row of the per-tool display table.
type toolMeta struct {
	Label  string
	Detail string
	Source string
}

// toolTable maps the agent's closed tool vocabulary to display metadata.
// Tool names not present here fall back to the verbatim name at runtime so
// the timeline degrades gracefully when the producer grows new tools before
// this table is extended.
var toolTable = map[string]toolMeta{
	"search_task_context": {
		Label:  "Retrieved Task Context",
		Detail: "Loaded the task brief and prior research for this call",
		Source: "task store",
	},
	"tavily_search": {
		Label:  "Live Market Search",
		Detail: "Searched current competitor rates mid-call",
		Source: "research engine",
	},
	"extract_entities": {
		Label:  "Extracting Entities",
		Detail: "Pulling structured values from the conversation",
		Source: "entity extractor",
	},
	"update_neo4j": {
		Label:  "Writing Knowledge Graph",
		Detail: "Recording the negotiation outcome in the relationship graph",
		Source: "knowledge graph",
	},
	"end_task": {
		Label:  "Closing Task",
		Detail: "Marking the task resolved with its final outcome",
		Source: "task store",
	},
	"get_subscription_analysis": {
		Label:  "Subscription Analysis",
		Detail: "Reviewed the user's active subscriptions and spend",
		Source: "subscription analyzer",
	},
	"confirm_action": {
		Label:  "Action Confirmed",
		Detail: "Captured the user's approval for a service action",
		Source: "user consult",
	},
	"calculate_cost_per_use": {
		Label:  "Cost-Per-Use Check",
		Detail: "Compared subscription cost against actual usage",
		Source: "subscription analyzer",
	},
}
