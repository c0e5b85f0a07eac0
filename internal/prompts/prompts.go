// Package prompts holds the texts sent to the question generator and shown to the candidate.
package prompts

import (
	"fmt"
	"strings"

	_ "embed"
)

const techStackPlaceholder = "{{TECH_STACK}}"

const (
	Greeting = "Hello! I'm TalentScout, your virtual hiring assistant. I'll ask a few questions to screen you for technical roles. Shall we begin?"
	Fallback = "I didn't quite understand that. Could you rephrase or provide a simpler response?"

	endTemplate   = "Thank you, %s, for completing the initial screening with TalentScout. Our team will review your responses and contact you with next steps. Best of luck!"
	anonymousName = "Candidate"
)

//go:embed system.md
var system string

//go:embed tech_stack.md
var techStack string

// System returns the system instruction for the question generator.
func System() string {
	return strings.TrimSpace(system)
}

// TechStackTemplate returns the user prompt template with a {{TECH_STACK}} placeholder.
func TechStackTemplate() string {
	template := strings.TrimSpace(techStack)
	if template == "" {
		template = "Generate 3 to 5 technical screening questions for each technology of: " + techStackPlaceholder
	}
	return template
}

// RenderTechStack substitutes the candidate's stack into template.
func RenderTechStack(template, stack string) string {
	return strings.ReplaceAll(template, techStackPlaceholder, strings.TrimSpace(stack))
}

// End returns the closing message for the candidate.
func End(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = anonymousName
	}
	return fmt.Sprintf(endTemplate, name)
}
