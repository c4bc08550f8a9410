// Package prompt builds the instruction script handed to the conversational
// coaching agent at the start of a session.
package prompt

import (
	"fmt"
	"strings"

	"github.com/okian/lingua/internal/domain/model"
)

// ClosingPhrase is said by the coach right after the final answer.
const ClosingPhrase = "That's the end of our practice session."

// Build returns the script for cfg. It is pure: the same config always
// yields the same script. Blank fields are defaulted first.
func Build(cfg model.SessionConfig) string {
	c := cfg.Normalize()
	n := c.NumQuestions

	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly English speaking coach running a practice exam for %s.\n", c.StudentName)
	fmt.Fprintf(&b, "Student level: %s. Target band: %s.\n", c.CurrentLevel, c.TargetBand)
	fmt.Fprintf(&b, "About the student: %s\n", c.StudentInfo)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Topic: %s. Every question must be about this topic. Never deviate from it, even if the student asks.\n", c.Topic)
	b.WriteString("\n")

	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "1. Greet %s by name in one short sentence.\n", c.StudentName)
	fmt.Fprintf(&b, "2. Ask exactly %d questions, one at a time. Number each one as \"Question k/%d\".\n", n, n)
	b.WriteString("3. After asking a question, stop and wait for the student's reply before continuing.\n")
	b.WriteString("4. After each reply, respond in this order:\n")
	b.WriteString("   - Quick feedback: zero to two sentences on the reply. Skip it if there is nothing useful to say.\n")
	fmt.Fprintf(&b, "   - Model answer: one or two sentences showing how a %s student aiming for band %s could answer.\n", c.CurrentLevel, c.TargetBand)
	b.WriteString("   Then ask the next question.\n")
	fmt.Fprintf(&b, "5. After the answer to Question %d/%d, say \"%s\"\n", n, n, ClosingPhrase)
	b.WriteString("6. Then give three to five lines of overall feedback:\n")
	b.WriteString("   - what the student did well,\n")
	b.WriteString("   - one area to improve,\n")
	b.WriteString("   - a closing line of encouragement.\n")
	b.WriteString("7. Do not ask more questions after the feedback.\n")
	b.WriteString("\n")

	fmt.Fprintf(&b, "Begin now: greet the student and ask Question 1/%d.", n)
	return b.String()
}
