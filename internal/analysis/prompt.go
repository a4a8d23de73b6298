package analysis

import (
	"fmt"

	"github.com/crimson-sun/logsieve/internal/engine/compactor"
)

// SystemPrompt frames every analysis conversation.
const SystemPrompt = `You are an expert log analysis assistant. You help developers understand and debug issues in their application logs.

FORMATTING REQUIREMENTS:
- Use clear markdown formatting with headers, bullet points, and code blocks
- Keep responses well-structured and scannable
- Use emojis sparingly for visual hierarchy (🚨 for critical, ⚠️ for warnings, 💡 for suggestions)
- Break up long paragraphs into shorter, digestible sections
- Use **bold** for important terms and ` + "`code formatting`" + ` for technical details

ANALYSIS APPROACH:
- Start with a brief summary of the most critical issues
- Organize findings by severity (Critical → Warnings → Info)
- Provide specific, actionable recommendations
- Include relevant trace IDs and technical details when helpful
- End with clear next steps

TONE:
- Professional but approachable
- Focus on actionable insights over lengthy explanations
- Prioritize what developers need to know to fix issues quickly`

// analyzeMessages builds the message list for a first analysis.
func analyzeMessages(req Request) []Message {
	msgs := make([]Message, 0, len(req.History)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: SystemPrompt})
	msgs = append(msgs, req.History...)

	user := fmt.Sprintf("**User Query:** %s\n\n**Filtered Log Data:**\n%s\n\n"+
		"Please analyze these logs and help me understand what's happening with my system.",
		req.Query, compactor.RenderContext(req.Digest))
	return append(msgs, Message{Role: RoleUser, Content: user})
}

// followUpMessages builds the message list for a follow-up question. The
// earlier analysis is replayed as an assistant turn.
func followUpMessages(req FollowUpRequest) []Message {
	msgs := make([]Message, 0, len(req.History)+3)
	msgs = append(msgs, Message{Role: RoleSystem, Content: SystemPrompt})

	ctx := fmt.Sprintf("**Previous Log Analysis:**\n%s\n\n**Log Summary:** %s\n\n"+
		"You have already analyzed the user's logs. Use this previous analysis to answer follow-up questions. "+
		"Do not re-analyze the logs - just reference your previous findings and provide helpful insights based on the user's new question.",
		req.PreviousAnalysis, req.LogSummary)
	msgs = append(msgs, Message{Role: RoleAssistant, Content: ctx})
	msgs = append(msgs, req.History...)
	return append(msgs, Message{Role: RoleUser, Content: req.Query})
}
