package evaluation

import (
	"regexp"
	"strings"
)

// Points awarded by the structural code quality heuristic.
const (
	minCodeLength = 10

	lengthStepPoints = 10
	functionPoints   = 30
	controlPoints    = 25
	returnPoints     = 15
	commentPoints    = 5
	variablePoints   = 5

	errorHandlingBonus = 4
	asyncBonus         = 3
	classBonus         = 3

	maxPoints = 100
)

var lengthSteps = []int{20, 100, 200}

var (
	reFunction = regexp.MustCompile(`\bfunction\b|=>|\bdef\s+\w+|\bfunc\s+|\bfn\s+\w+|\b(?:public|private|protected|static)\s+[\w<>\[\],]+\s+\w+\s*\(|\w+\s*\([^)]*\)\s*\{`)
	reControl  = regexp.MustCompile(`\b(?:if|for|while|switch|case|foreach|loop)\b|\.(?:map|filter|reduce|forEach|each)\s*\(`)
	reReturn   = regexp.MustCompile(`\breturn\b|\bconsole\.log\b|\bprint(?:ln|f)?\s*\(|\bSystem\.out\.|\bfmt\.Print|\becho\s|\bputs\s|\bcout\s*<<|\byield\b`)
	reComment  = regexp.MustCompile(`(?m)//|/\*|^\s*#[^!i]|"""|'''`)
	reVariable = regexp.MustCompile(`(?m)\b(?:let|const|var|int|float|double|string|String|auto|val|bool|char)\s+\w+|:=|^\s*[A-Za-z_]\w*\s*=[^=]`)
	reErrors   = regexp.MustCompile(`\b(?:try|catch|except|finally|rescue|throw|raise)\b|\bif\s+err\s*!=\s*nil\b|\bResult<|\.catch\s*\(`)
	reAsync    = regexp.MustCompile(`\b(?:async|await|Promise|Future|CompletableFuture|goroutine|suspend)\b|\bgo\s+\w+\(|\bgo\s+func\b`)
	reClass    = regexp.MustCompile(`\b(?:class|struct|interface|impl|trait|extends|implements)\b`)
)

// EvaluateCode scores code on structure alone. It never runs the code.
// Blank or very short input scores 0.
func EvaluateCode(code string) int {
	code = strings.TrimSpace(code)
	if len(code) < minCodeLength {
		return 0
	}

	score := 0
	for _, step := range lengthSteps {
		if len(code) > step {
			score += lengthStepPoints
		}
	}
	if reFunction.MatchString(code) {
		score += functionPoints
	}
	if reControl.MatchString(code) {
		score += controlPoints
	}
	if reReturn.MatchString(code) {
		score += returnPoints
	}
	if reComment.MatchString(code) {
		score += commentPoints
	}
	if reVariable.MatchString(code) {
		score += variablePoints
	}
	if reErrors.MatchString(code) {
		score += errorHandlingBonus
	}
	if reAsync.MatchString(code) {
		score += asyncBonus
	}
	if reClass.MatchString(code) {
		score += classBonus
	}
	return clampScore(score)
}

// GenerateFeedback maps a score to one of six fixed messages.
func GenerateFeedback(score int) string {
	switch {
	case score >= 90:
		return "Excellent work! Your solution is well structured and shows strong command of the language."
	case score >= 80:
		return "Great job! Your code is solid with good structure and clear logic."
	case score >= 70:
		return "Good work! Your solution covers the essentials. Polish structure and documentation to go further."
	case score >= 60:
		return "Decent attempt. The basics are there, but adding functions, control flow and comments would strengthen it."
	case score >= 40:
		return "You're on the right track. Try organizing your code into functions and handling more cases."
	default:
		return "Keep practicing! Start with a small function, add some logic, and return a result."
	}
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > maxPoints:
		return maxPoints
	default:
		return score
	}
}
