package domain

import "fmt"

// Token budgets for paid chat requests
const (
	AnalysisMaxTokens = 1000
	AnswerMaxTokens   = 800
)

// DefaultAnalysisPrompt is sent with an image when the caller has no specific question.
const DefaultAnalysisPrompt = "Analyze this NASA Astronomy Picture of the Day. Describe what you see, explain the scientific concepts, and provide interesting facts about the subject matter."

// AnalysisPrompt returns question, or DefaultAnalysisPrompt when it is empty
func AnalysisPrompt(question string) string {
	if question == "" {
		return DefaultAnalysisPrompt
	}
	return question
}

// AnswerSystemPrompt builds the system instruction for question answering.
// contextText is expected to end with a blank line when non-empty.
func AnswerSystemPrompt(contextText string) string {
	return fmt.Sprintf("You are a knowledgeable astronomy and space science assistant. You have access to NASA's Astronomy Picture of the Day (APOD) and can analyze space images. %sAnswer the user's question about astronomy, space science, or the NASA image. Be informative, accurate, and engaging.", contextText)
}
