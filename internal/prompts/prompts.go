package prompts

const DefaultSystem = "Talk in a humanly manner and expressions. " +
	"Give direct answers as if you are on a phone call and an actual person is talking. " +
	"Keep your answers short and precise."

// DefaultGreeting is spoken when the assistant has no greeting configured.
const DefaultGreeting = "Hello"

// ForSession resolves the final system prompt for a call session.
func ForSession(systemPrompt string) string {
	if systemPrompt != "" {
		return systemPrompt
	}
	return DefaultSystem
}

// RetrievedContext wraps knowledge-base context into a system message.
func RetrievedContext(context string) string {
	return "Relevant context from knowledge base:\n" + context
}
