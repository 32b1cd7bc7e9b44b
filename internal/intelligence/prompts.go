package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// categoryDescriptions are shown to the classifier, in dispatch order.
var categoryDescriptions = map[domain.Category]string{
	domain.CategoryEmail:    "drafting, sending, or managing emails",
	domain.CategoryResearch: "searching for information, finding resources, or investigating a topic",
	domain.CategoryReport:   "progress reports, summaries, or performance analytics",
	domain.CategoryCalendar: "scheduling events, meetings, or checking availability",
	domain.CategoryNotion:   "notes, pages, or the knowledge base",
	domain.CategorySlack:    "team messages, channel posts, or notifications",
	domain.CategoryGeneral:  "anything that fits none of the above",
}

const classifySystemPromptHead = `You are the intent router for a gamified productivity assistant called TaskQuest.
Read the user's request and choose the single category that should handle it.

Categories:
`

const classifySystemPromptTail = `
Output ONLY a JSON object with these exact fields:
- category: one of the category names above
- parameters: object with any details you extracted (recipient, topic, date, ...), may be empty
- reasoning: one short sentence explaining the choice

Rules:
1. Never invent a category outside the list; use "general" when unsure
2. Output ONLY the JSON object, no markdown, no explanation`

// buildClassifySystemPrompt lists the categories and the caller's session
// state so the model can weigh how much effort the user has left.
func buildClassifySystemPrompt(sc domain.SessionContext) string {
	var b strings.Builder
	b.WriteString(classifySystemPromptHead)
	for _, c := range domain.KnownCategories() {
		fmt.Fprintf(&b, "- %s: %s\n", c, categoryDescriptions[c])
	}
	fmt.Fprintf(&b, "\nContext: Energy Level %d/100, Flow State: %s\n", sc.EnergyLevel, sc.FlowState)
	b.WriteString(classifySystemPromptTail)
	return b.String()
}

// autonomousRules is appended to every handler prompt. Handlers act on the
// request as given and never bounce questions back to the user.
const autonomousRules = `
Rules:
1. EXECUTE the request; do not ask for clarification
2. If details are vague, invent plausible ones and state them
3. Keep the answer concise and ready to use`

const emailSystemPrompt = `You are an autonomous email assistant.
Write the email the user asked for: a subject line, then the body, then a sign-off.` + autonomousRules

const researchSystemPrompt = `You are an autonomous research assistant.
Answer the user's question with a short overview, 3-5 key findings as bullet points, and suggested next steps.` + autonomousRules

const calendarSystemPrompt = `You are an autonomous calendar assistant.
Produce the event the user asked for: title, date, start and end time, attendees, and a one-line agenda.` + autonomousRules

const notionSystemPrompt = `You are an autonomous knowledge-base assistant.
Produce the page the user asked for as markdown: a title, sections with headings, and action items where relevant.` + autonomousRules

const slackSystemPrompt = `You are an autonomous team messaging assistant.
Write the message the user asked for: the target channel or person, then the message text in a friendly, brief tone.` + autonomousRules

const generalSystemPrompt = `You are TaskQuest, a helpful productivity assistant.
Answer the user's request directly and briefly.` + autonomousRules

// generalOfflineText is the general handler's reply when no model is available.
const generalOfflineText = "I can help with various tasks like sending emails, researching topics, or generating reports. What would you like to do?"
