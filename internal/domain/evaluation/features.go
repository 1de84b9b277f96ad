package evaluation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

// Bucket caps of the language-feature evaluator.
const (
	lengthFloor      = 20
	lengthFloorScore = 5

	functionHitPoints = 4
	functionCap       = 20
	controlHitPoints  = 3
	controlCap        = 25
	builtinHitPoints  = 3
	builtinCap        = 15
	patternHitPoints  = 3
	patternCap        = 20
	commentScore      = 5
	complexityCap     = 10
	organizationScore = 5

	minOrganizedLines = 10
	maxOrganizedLines = 500

	maxFeedbackItems = 3
)

var commentSyntax = []*regexp.Regexp{
	regexp.MustCompile(`//[^\n]*`),
	regexp.MustCompile(`/\*[\s\S]*?\*/`),
	regexp.MustCompile(`(?m)^\s*#(?:[^!{\n]|$)`),
	regexp.MustCompile(`"""[\s\S]*?"""|'''[\s\S]*?'''`),
}

var (
	reLoops        = regexp.MustCompile(`\b(?:for|while|loop|foreach|until|repeat)\b|\.(?:forEach|each|map)\s*\(`)
	reConditionals = regexp.MustCompile(`\b(?:if|elif|elsif|switch|case|when|match|unless|guard)\b|\?[^.?:]+:`)
	reDataStruct   = regexp.MustCompile(`\b(?:Map|Set|List|HashMap|HashSet|ArrayList|Dictionary|dict|list|set|vector|array|slice|struct|tuple|Vec)\b|\[\s*\]|\{\s*\}`)
)

// featureReport is what one pass over the code found.
type featureReport struct {
	breakdown map[string]int
	found     []string
	missing   []string
}

func (r *featureReport) total() int {
	sum := 0
	for _, v := range r.breakdown {
		sum += v
	}
	return clampScore(sum)
}

// scoreFeatures grades code against one language table.
func scoreFeatures(code string, t *featureTable) featureReport {
	r := featureReport{breakdown: make(map[string]int, 8)}

	if len(code) >= lengthFloor {
		r.breakdown["length"] = lengthFloorScore
	}

	fnHits := distinctHits(code, t.functions, t.functionRes)
	r.breakdown["functions"] = capped(len(fnHits)*functionHitPoints, functionCap)
	if len(fnHits) > 0 {
		r.found = append(r.found, fmt.Sprintf("Uses %s keywords: %s", t.name, summarize(fnHits)))
	} else {
		r.missing = append(r.missing, fmt.Sprintf("No %s declarations found (e.g. %s)", t.name, t.functions[0]))
	}

	ctlHits := distinctHits(code, t.control, t.controlRes)
	r.breakdown["control"] = capped(len(ctlHits)*controlHitPoints, controlCap)
	if len(ctlHits) > 0 {
		r.found = append(r.found, fmt.Sprintf("Control flow with %s", summarize(ctlHits)))
	} else {
		r.missing = append(r.missing, "Add control flow such as conditionals or loops")
	}

	var builtinHits []string
	for _, b := range t.builtins {
		if strings.Contains(code, b) {
			builtinHits = append(builtinHits, strings.TrimSuffix(b, "("))
		}
	}
	r.breakdown["builtins"] = capped(len(builtinHits)*builtinHitPoints, builtinCap)
	if len(builtinHits) > 0 {
		r.found = append(r.found, fmt.Sprintf("Built-in APIs: %s", summarize(builtinHits)))
	} else {
		r.missing = append(r.missing, fmt.Sprintf("Use standard %s library functions", t.name))
	}

	var patternHits []string
	for _, k := range t.patternKeys {
		if t.patterns[k].MatchString(code) {
			patternHits = append(patternHits, k)
		}
	}
	r.breakdown["patterns"] = capped(len(patternHits)*patternHitPoints, patternCap)
	if len(patternHits) > 0 {
		r.found = append(r.found, fmt.Sprintf("Idiomatic patterns: %s", summarize(patternHits)))
	} else {
		r.missing = append(r.missing, fmt.Sprintf("Try idiomatic %s patterns like %s", t.name, t.patternKeys[0]))
	}

	if hasComment(code) {
		r.breakdown["comments"] = commentScore
		r.found = append(r.found, "Code is commented")
	} else {
		r.missing = append(r.missing, "Add comments to explain your approach")
	}

	loops := len(reLoops.FindAllStringIndex(code, -1))
	conds := len(reConditionals.FindAllStringIndex(code, -1))
	funcs := 0
	for _, re := range t.functionRes {
		funcs += len(re.FindAllStringIndex(code, -1))
	}
	ds := len(reDataStruct.FindAllStringIndex(code, -1))
	r.breakdown["complexity"] = capped((2*loops+conds+2*funcs+ds)/2, complexityCap)

	lines := strings.Count(code, "\n") + 1
	if lines > minOrganizedLines && lines < maxOrganizedLines {
		r.breakdown["organization"] = organizationScore
	} else if lines <= minOrganizedLines {
		r.missing = append(r.missing, "Break the solution into more lines and steps")
	}
	return r
}

// FeatureFeedback assembles the tier message plus up to three missing and
// three found features, in that order.
func FeatureFeedback(score int, missing, found []string) string {
	var b strings.Builder
	b.WriteString(GenerateFeedback(score))
	if len(missing) > 0 {
		b.WriteString("\n\nAreas to improve:")
		for _, m := range head(missing, maxFeedbackItems) {
			b.WriteString("\n- ")
			b.WriteString(m)
		}
	}
	if len(found) > 0 {
		b.WriteString("\n\nWhat you did well:")
		for _, f := range head(found, maxFeedbackItems) {
			b.WriteString("\n- ")
			b.WriteString(f)
		}
	}
	return b.String()
}

func distinctHits(code string, words []string, res []*regexp.Regexp) []string {
	var hits []string
	for i, re := range res {
		if re.MatchString(code) {
			hits = append(hits, words[i])
		}
	}
	return hits
}

func hasComment(code string) bool {
	for _, re := range commentSyntax {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

func capped(v, limit int) int {
	if v > limit {
		return limit
	}
	return v
}

func summarize(items []string) string {
	return strings.Join(head(items, maxFeedbackItems), ", ")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// toDetails copies a report into the public result shape.
func (r *featureReport) toDetails(language string) model.EvaluationDetails {
	return model.EvaluationDetails{
		Evaluator:       "language",
		Language:        language,
		Breakdown:       r.breakdown,
		FoundFeatures:   head(r.found, maxFeedbackItems),
		MissingFeatures: head(r.missing, maxFeedbackItems),
	}
}
