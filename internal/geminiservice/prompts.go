package geminiservice

import (
	"fmt"
	"strings"
)

/* =================================================================================
						PROMPT ENGINEERING & GUARDRAILS
=================================================================================*/

/*
ClassifierPromptTemplate asks the model for a bare boolean verdict on whether
a message belongs to the healthcare/medicine/wellness domain. The caller
compares the trimmed, lower-cased reply against the literal "true"; anything
else counts as out-of-domain.
*/
const ClassifierPromptTemplate = `You are a strict content gate for a healthcare assistant.
Decide whether the following message is related to healthcare, medicine, fitness, nutrition, mental health, or general wellness.

Reply with exactly one word: true or false. No punctuation, no explanation.

Message: %s`

/*
ChatPromptTemplate wraps a user's health question with the formatting contract
the Text Normalizer depends on: one complete sentence per line, no markdown.
*/
const ChatPromptTemplate = `You are a knowledgeable health assistant. Answer the question below as a list of discrete points.

FORMATTING RULES:
1. Each point MUST be one complete sentence.
2. Fold any subpoints into the same sentence using connective words such as "including", "such as" or "for example".
3. Do NOT use markdown, bullets, numbering, asterisks or headings.
4. Put exactly one point per line.
5. Be concise but informative.

Question: %s`

// ImageAnalysisPrompt replaces the per-question template when a request
// carries an image but no text.
const ImageAnalysisPrompt = `You are a knowledgeable health assistant. Analyze this image from a health and wellness perspective and describe what you observe.

FORMATTING RULES:
1. Each observation MUST be one complete sentence.
2. Fold any subpoints into the same sentence using connective words such as "including", "such as" or "for example".
3. Do NOT use markdown, bullets, numbering, asterisks or headings.
4. Put exactly one observation per line.
5. Be concise but informative.`

/*
RoutinePromptTemplate is the persona prompt for daily-routine generation. The
reply contract is load-bearing: the Routine Generator parses it as a strict
JSON array of strings with no salvage path, so the template forbids prose and
fencing outright.
*/
const RoutinePromptTemplate = `You are Dr. Early Pulse, a wellness expert. A user has completed the onboarding questionnaire below. Design a personalized daily routine for them, from waking up to going to bed.

%s

Reply with EXCLUSIVELY a JSON array of strings, one task per element, ordered chronologically through the day. Each task should be a short actionable instruction, for example "Drink a glass of water right after waking up". Do not wrap the array in markdown fencing and do not add any text before or after it.`

// RoutineQuestions is the fixed onboarding questionnaire. Answers submitted to
// the routine generator must match it positionally, one answer per question.
var RoutineQuestions = []string{
	"What time do you usually wake up?",
	"What time do you usually go to bed?",
	"How many hours do you work or study on a typical day?",
	"How would you describe your current physical activity level?",
	"Do you have any medical conditions or injuries we should consider?",
	"What are your main wellness goals?",
	"How would you rate your current stress level?",
	"How many meals do you eat on a typical day, and at what times?",
	"How much water do you drink in a typical day?",
	"How much free time do you have for exercise or relaxation?",
}

// BuildClassifierPrompt renders the domain-gate prompt for one message.
func BuildClassifierPrompt(message string) string {
	return fmt.Sprintf(ClassifierPromptTemplate, message)
}

// BuildChatPrompt wraps a user question with the point-list formatting rules.
func BuildChatPrompt(message string) string {
	return fmt.Sprintf(ChatPromptTemplate, message)
}

// BuildChatParts assembles the multimodal parts sequence for a chat request.
// With text present the question is wrapped in the point-list template; an
// image-only request substitutes the fixed analysis instruction. The image,
// when present, is appended as an inline-data part. The caller guarantees at
// least one of message or image is set.
func BuildChatParts(message, mimeType string, image []byte) []Part {
	var parts []Part
	if message != "" {
		parts = append(parts, TextPart(BuildChatPrompt(message)))
	} else {
		parts = append(parts, TextPart(ImageAnalysisPrompt))
	}
	if len(image) > 0 {
		parts = append(parts, ImagePart(mimeType, image))
	}
	return parts
}

// BuildRoutinePrompt renders the questionnaire as "Q:/A:" pairs and wraps it
// in the Dr. Early Pulse persona prompt. Questions and answers correspond
// positionally; the caller validates the lengths match.
func BuildRoutinePrompt(questions, answers []string) string {
	pairs := make([]string, 0, len(questions))
	for i, q := range questions {
		pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s", q, answers[i]))
	}
	return fmt.Sprintf(RoutinePromptTemplate, strings.Join(pairs, "\n\n"))
}
