package agent

import (
	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/search"
	"github.com/tjfontaine/searchbot/internal/tools"
)

const (
	SearchAgentName    = "search"
	TimestampAgentName = "timestamp"
)

const searchPrompt = `You are a research assistant with access to a web search tool.
Use the SearchTool to look up current information about the user's question,
then answer it concisely from what you found. Mention the most relevant
source URLs. If the search returns nothing useful, say so.`

const timestampPrompt = `You receive a piece of text written by another assistant.
Call the SystemTime tool to read the current date and time, then reply with
the text unchanged followed by a final line of the form
"Timestamp: <current date and time>". Do not add anything else.`

// NewSearchAgent creates the agent that answers questions from web search.
func NewSearchAgent(chat domain.ChatModel, model string, provider search.Provider, opts ...Option) *ToolAgent {
	return NewToolAgent(SearchAgentName, chat, model, searchPrompt,
		[]tools.Tool{tools.NewSearchTool(provider)}, opts...)
}

// NewTimestampAgent creates the agent that stamps text with the clock reading
// formatted by the strftime pattern format.
func NewTimestampAgent(chat domain.ChatModel, model string, clock tools.Clock, format string, opts ...Option) *ToolAgent {
	return NewToolAgent(TimestampAgentName, chat, model, timestampPrompt,
		[]tools.Tool{tools.NewSystemTime(clock, format)}, opts...)
}
