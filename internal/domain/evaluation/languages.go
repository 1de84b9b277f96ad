package evaluation

import (
	"regexp"
	"sort"
	"strings"
)

// featureTable lists the idioms that characterise one language.
type featureTable struct {
	name      string
	functions []string
	control   []string
	builtins  []string
	patterns  map[string]*regexp.Regexp
	// compiled \bword\b matchers for functions and control
	functionRes []*regexp.Regexp
	controlRes  []*regexp.Regexp
	patternKeys []string
}

var languageAliases = map[string]string{
	"javascript": "javascript",
	"js":         "javascript",
	"node":       "javascript",
	"nodejs":     "javascript",
	"typescript": "typescript",
	"ts":         "typescript",
	"python":     "python",
	"py":         "python",
	"python3":    "python",
	"java":       "java",
	"c++":        "cpp",
	"cpp":        "cpp",
	"cxx":        "cpp",
	"c#":         "csharp",
	"csharp":     "csharp",
	"cs":         "csharp",
	"go":         "go",
	"golang":     "go",
	"rust":       "rust",
	"rs":         "rust",
	"php":        "php",
	"ruby":       "ruby",
	"rb":         "ruby",
	"swift":      "swift",
	"kotlin":     "kotlin",
	"kt":         "kotlin",
	"c":          "c",
}

var tables = buildTables()

func buildTables() map[string]*featureTable {
	defs := []*featureTable{
		{
			name:      "javascript",
			functions: []string{"function", "return", "const", "let", "class", "async", "await", "export"},
			control:   []string{"if", "else", "for", "while", "switch", "case", "try", "catch", "do"},
			builtins:  []string{".map(", ".filter(", ".reduce(", ".forEach(", "console.log", "JSON.parse", "JSON.stringify", "Object.keys", ".push(", "Array.from"},
			patterns: map[string]*regexp.Regexp{
				"arrow functions":    regexp.MustCompile(`=>`),
				"template literals":  regexp.MustCompile("`[^`]*\\$\\{"),
				"destructuring":      regexp.MustCompile(`(?:const|let|var)\s*[\[{]`),
				"promises":           regexp.MustCompile(`\.then\s*\(|new Promise`),
				"spread operator":    regexp.MustCompile(`\.\.\.\w`),
				"strict equality":    regexp.MustCompile(`===|!==`),
				"optional chaining":  regexp.MustCompile(`\?\.`),
				"module imports":     regexp.MustCompile(`\bimport\s+.+\s+from\b|\brequire\s*\(`),
				"class declarations": regexp.MustCompile(`\bclass\s+\w+`),
				"async/await":        regexp.MustCompile(`\basync\b[\s\S]*\bawait\b`),
			},
		},
		{
			name:      "typescript",
			functions: []string{"function", "return", "const", "let", "interface", "type", "class", "async", "await", "export", "enum"},
			control:   []string{"if", "else", "for", "while", "switch", "case", "try", "catch"},
			builtins:  []string{".map(", ".filter(", ".reduce(", ".forEach(", "console.log", "Promise.all", "Object.keys", ".push(", "Array.isArray"},
			patterns: map[string]*regexp.Regexp{
				"type annotations":  regexp.MustCompile(`:\s*(?:string|number|boolean|void|any|unknown|\w+\[\])\b`),
				"interfaces":        regexp.MustCompile(`\binterface\s+\w+`),
				"generics":          regexp.MustCompile(`<\s*[A-Z]\w*(?:\s*,\s*[A-Z]\w*)*\s*>`),
				"arrow functions":   regexp.MustCompile(`=>`),
				"type aliases":      regexp.MustCompile(`\btype\s+\w+\s*=`),
				"access modifiers":  regexp.MustCompile(`\b(?:public|private|protected|readonly)\s+\w+`),
				"optional chaining": regexp.MustCompile(`\?\.`),
				"union types":       regexp.MustCompile(`:\s*\w+\s*\|\s*\w+`),
			},
		},
		{
			name:      "python",
			functions: []string{"def", "return", "lambda", "class", "yield", "import", "with", "async"},
			control:   []string{"if", "elif", "else", "for", "while", "try", "except", "finally", "match"},
			builtins:  []string{"len(", "range(", "print(", "enumerate(", "zip(", "sorted(", "map(", "filter(", "sum(", "isinstance(", ".append(", ".join("},
			patterns: map[string]*regexp.Regexp{
				"list comprehensions": regexp.MustCompile(`\[[^\]]+\bfor\b[^\]]+\bin\b[^\]]+\]`),
				"dict comprehensions": regexp.MustCompile(`\{[^}]+:[^}]+\bfor\b[^}]+\}`),
				"f-strings":           regexp.MustCompile(`\bf["']`),
				"decorators":          regexp.MustCompile(`(?m)^\s*@\w+`),
				"type hints":          regexp.MustCompile(`def\s+\w+\([^)]*:\s*\w+|\)\s*->\s*\w+`),
				"context managers":    regexp.MustCompile(`\bwith\s+.+\bas\b`),
				"generators":          regexp.MustCompile(`\byield\b`),
				"docstrings":          regexp.MustCompile(`"""[\s\S]*?"""|'''[\s\S]*?'''`),
				"main guard":          regexp.MustCompile(`if\s+__name__\s*==\s*["']__main__["']`),
			},
		},
		{
			name:      "java",
			functions: []string{"public", "private", "protected", "static", "void", "return", "class", "new", "final", "interface"},
			control:   []string{"if", "else", "for", "while", "switch", "case", "try", "catch", "finally", "do"},
			builtins:  []string{"System.out.println", "String.valueOf", "Integer.parseInt", "Math.", ".length()", ".size()", ".add(", ".get(", ".stream()", "Arrays."},
			patterns: map[string]*regexp.Regexp{
				"generics":           regexp.MustCompile(`<\s*\w+(?:\s*,\s*\w+)*\s*>`),
				"annotations":        regexp.MustCompile(`@\w+`),
				"lambdas":            regexp.MustCompile(`\)\s*->|\w\s*->`),
				"streams":            regexp.MustCompile(`\.stream\(\)`),
				"enhanced for":       regexp.MustCompile(`for\s*\(\s*\w+(?:<[^>]*>)?\s+\w+\s*:`),
				"collections":        regexp.MustCompile(`\b(?:List|Map|Set|ArrayList|HashMap|HashSet)\b`),
				"exception handling": regexp.MustCompile(`\bthrows?\b`),
				"inheritance":        regexp.MustCompile(`\b(?:extends|implements)\b`),
			},
		},
		{
			name:      "cpp",
			functions: []string{"int", "void", "return", "class", "struct", "template", "auto", "const", "namespace", "virtual"},
			control:   []string{"if", "else", "for", "while", "switch", "case", "try", "catch", "do"},
			builtins:  []string{"std::cout", "std::vector", "std::string", "std::map", "push_back(", ".size()", "std::sort", "std::endl", "make_shared", "make_unique"},
			patterns: map[string]*regexp.Regexp{
				"templates":         regexp.MustCompile(`template\s*<`),
				"references":        regexp.MustCompile(`\w&\s+\w|\w\s+&\w`),
				"smart pointers":    regexp.MustCompile(`\b(?:unique_ptr|shared_ptr|weak_ptr)\b`),
				"range for":         regexp.MustCompile(`for\s*\([^;)]*:\s*[^)]+\)`),
				"includes":          regexp.MustCompile(`#include\s*[<"]`),
				"namespaces":        regexp.MustCompile(`\bnamespace\s+\w+|\busing\s+namespace\b`),
				"lambdas":           regexp.MustCompile(`\[[^\]]*\]\s*\([^)]*\)\s*\{`),
				"const correctness": regexp.MustCompile(`\bconst\s+\w+\s*&`),
			},
		},
		{
			name:      "csharp",
			functions: []string{"public", "private", "static", "void", "return", "class", "var", "async", "await", "namespace"},
			control:   []string{"if", "else", "for", "foreach", "while", "switch", "case", "try", "catch", "finally"},
			builtins:  []string{"Console.WriteLine", ".Select(", ".Where(", ".ToList()", ".Count", "string.Format", "int.Parse", ".Add(", "Math."},
			patterns: map[string]*regexp.Regexp{
				"LINQ":                 regexp.MustCompile(`\.(?:Select|Where|OrderBy|GroupBy|Any|All)\s*\(`),
				"properties":           regexp.MustCompile(`\{\s*get;\s*(?:set;)?\s*\}`),
				"lambdas":              regexp.MustCompile(`=>`),
				"generics":             regexp.MustCompile(`<\s*\w+(?:\s*,\s*\w+)*\s*>`),
				"async/await":          regexp.MustCompile(`\basync\s+Task\b|\bawait\b`),
				"using directives":     regexp.MustCompile(`(?m)^\s*using\s+[\w.]+;`),
				"interpolated strings": regexp.MustCompile(`\$"`),
				"attributes":           regexp.MustCompile(`(?m)^\s*\[\w+`),
			},
		},
		{
			name:      "go",
			functions: []string{"func", "return", "package", "import", "type", "struct", "interface", "defer", "go", "var", "const"},
			control:   []string{"if", "else", "for", "switch", "case", "select", "range", "default"},
			builtins:  []string{"fmt.Println", "fmt.Printf", "fmt.Sprintf", "len(", "append(", "make(", "errors.New", "strings.", "strconv.", "context."},
			patterns: map[string]*regexp.Regexp{
				"error handling":     regexp.MustCompile(`if\s+err\s*!=\s*nil`),
				"short declarations": regexp.MustCompile(`\w+\s*:=`),
				"goroutines":         regexp.MustCompile(`\bgo\s+(?:func\b|\w+\()`),
				"channels":           regexp.MustCompile(`\bchan\b|<-`),
				"methods":            regexp.MustCompile(`func\s*\(\s*\w+\s+\*?\w+\s*\)`),
				"defer":              regexp.MustCompile(`\bdefer\b`),
				"multiple returns":   regexp.MustCompile(`\)\s*\([^)]*,[^)]*\)\s*\{`),
				"range loops":        regexp.MustCompile(`\bfor\b[^{]*\brange\b`),
			},
		},
		{
			name:      "rust",
			functions: []string{"fn", "let", "mut", "return", "struct", "enum", "impl", "trait", "pub", "use", "match"},
			control:   []string{"if", "else", "for", "while", "loop", "match", "break", "continue"},
			builtins:  []string{"println!", "vec!", "format!", ".iter()", ".map(", ".collect", ".unwrap()", "Some(", "Ok(", ".len()", "String::from"},
			patterns: map[string]*regexp.Regexp{
				"pattern matching":  regexp.MustCompile(`\bmatch\b[^{]*\{[\s\S]*=>`),
				"ownership":         regexp.MustCompile(`&mut\s|&\w`),
				"error propagation": regexp.MustCompile(`\?\s*;|Result<`),
				"options":           regexp.MustCompile(`\bOption<|\bSome\(|\bNone\b`),
				"iterators":         regexp.MustCompile(`\.iter\(\)|\.into_iter\(\)`),
				"closures":          regexp.MustCompile(`\|[^|]*\|\s*[\w{]`),
				"macros":            regexp.MustCompile(`\w+!\s*[\(\[]`),
				"traits":            regexp.MustCompile(`\bimpl\s+\w+\s+for\b`),
			},
		},
		{
			name:      "php",
			functions: []string{"function", "return", "class", "public", "private", "echo", "namespace", "use", "static"},
			control:   []string{"if", "else", "elseif", "foreach", "for", "while", "switch", "case", "try", "catch"},
			builtins:  []string{"count(", "array_map(", "array_filter(", "strlen(", "explode(", "implode(", "json_encode(", "isset(", "in_array(", "printf("},
			patterns: map[string]*regexp.Regexp{
				"variables":       regexp.MustCompile(`\$\w+`),
				"arrays":          regexp.MustCompile(`\[\s*['"]?\w+['"]?\s*=>|\barray\s*\(`),
				"object access":   regexp.MustCompile(`->\w+`),
				"php tags":        regexp.MustCompile(`<\?php`),
				"type hints":      regexp.MustCompile(`function\s+\w+\s*\(\s*\??\w+\s+\$`),
				"arrow functions": regexp.MustCompile(`\bfn\s*\(`),
				"null coalescing": regexp.MustCompile(`\?\?`),
			},
		},
		{
			name:      "ruby",
			functions: []string{"def", "end", "class", "module", "return", "yield", "require", "attr_accessor", "self"},
			control:   []string{"if", "elsif", "else", "unless", "while", "until", "case", "when", "begin", "rescue"},
			builtins:  []string{"puts", ".each", ".map", ".select", ".reject", ".inject", ".length", ".to_s", ".include?"},
			patterns: map[string]*regexp.Regexp{
				"blocks":               regexp.MustCompile(`\bdo\s*\|[^|]*\||\{\s*\|[^|]*\|`),
				"symbols":              regexp.MustCompile(`:\w+`),
				"string interpolation": regexp.MustCompile(`#\{[^}]+\}`),
				"instance variables":   regexp.MustCompile(`@\w+`),
				"predicate methods":    regexp.MustCompile(`\w+\?(?:\s|$|\()`),
				"safe navigation":      regexp.MustCompile(`&\.`),
				"hashes":               regexp.MustCompile(`\w+:\s*\S|=>`),
			},
		},
		{
			name:      "swift",
			functions: []string{"func", "let", "var", "return", "struct", "class", "protocol", "extension", "guard", "enum"},
			control:   []string{"if", "else", "for", "while", "switch", "case", "guard", "repeat", "do", "catch"},
			builtins:  []string{"print(", ".map", ".filter", ".reduce", ".count", ".append(", "String(", ".isEmpty", ".sorted"},
			patterns: map[string]*regexp.Regexp{
				"optionals":            regexp.MustCompile(`\w\?[.\s]|if\s+let\b|guard\s+let\b`),
				"closures":             regexp.MustCompile(`\{\s*\(?[\w\s,]*\)?\s*in\b|\$0`),
				"protocols":            regexp.MustCompile(`\bprotocol\s+\w+`),
				"string interpolation": regexp.MustCompile(`\\\(`),
				"type annotations":     regexp.MustCompile(`(?:let|var)\s+\w+\s*:\s*\w+`),
				"error handling":       regexp.MustCompile(`\bthrows\b|\btry\b`),
				"extensions":           regexp.MustCompile(`\bextension\s+\w+`),
			},
		},
		{
			name:      "kotlin",
			functions: []string{"fun", "val", "var", "return", "class", "data", "object", "when", "suspend", "companion"},
			control:   []string{"if", "else", "for", "while", "when", "try", "catch", "do"},
			builtins:  []string{"println(", "listOf(", "mapOf(", "mutableListOf(", ".map", ".filter", ".forEach", ".let", ".apply", "setOf("},
			patterns: map[string]*regexp.Regexp{
				"null safety":         regexp.MustCompile(`\?\.|\?:|!!`),
				"data classes":        regexp.MustCompile(`\bdata\s+class\b`),
				"lambdas":             regexp.MustCompile(`\{\s*\w+\s*->|\bit\b`),
				"string templates":    regexp.MustCompile(`\$\{|\$\w+`),
				"extension functions": regexp.MustCompile(`fun\s+\w+\.\w+\s*\(`),
				"when expressions":    regexp.MustCompile(`\bwhen\s*(?:\(|\{)`),
				"coroutines":          regexp.MustCompile(`\bsuspend\b|\blaunch\s*\{|\basync\s*\{`),
			},
		},
		{
			name:      "c",
			functions: []string{"int", "void", "char", "return", "struct", "typedef", "static", "const", "float", "double"},
			control:   []string{"if", "else", "for", "while", "switch", "case", "do", "break"},
			builtins:  []string{"printf(", "scanf(", "malloc(", "free(", "strlen(", "strcpy(", "memcpy(", "sizeof(", "fopen("},
			patterns: map[string]*regexp.Regexp{
				"pointers":          regexp.MustCompile(`\w\s*\*\s*\w|->`),
				"includes":          regexp.MustCompile(`#include\s*[<"]`),
				"macros":            regexp.MustCompile(`#define\s+\w+`),
				"arrays":            regexp.MustCompile(`\w+\s*\[\s*\d*\s*\]`),
				"structs":           regexp.MustCompile(`\bstruct\s+\w+\s*\{`),
				"memory management": regexp.MustCompile(`\bmalloc\s*\(|\bfree\s*\(`),
				"main function":     regexp.MustCompile(`\bint\s+main\s*\(`),
			},
		},
	}

	out := make(map[string]*featureTable, len(defs))
	for _, t := range defs {
		t.functionRes = wordMatchers(t.functions)
		t.controlRes = wordMatchers(t.control)
		t.patternKeys = make([]string, 0, len(t.patterns))
		for k := range t.patterns {
			t.patternKeys = append(t.patternKeys, k)
		}
		sort.Strings(t.patternKeys)
		out[t.name] = t
	}
	return out
}

func wordMatchers(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

// lookupTable resolves a language name or alias.
func lookupTable(language string) (*featureTable, error) {
	name, ok := languageAliases[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return nil, errNoFeatureTable
	}
	t, ok := tables[name]
	if !ok {
		return nil, errNoFeatureTable
	}
	return t, nil
}

// SupportedLanguages returns the canonical names with a feature table.
func SupportedLanguages() []string {
	out := make([]string, 0, len(tables))
	for name := range tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
