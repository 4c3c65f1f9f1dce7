package domain

// Language tags the runtime a unit or inline source targets. The evaluator
// never interprets source itself; it hands the pair (language, source) to a
// dispatcher that owns the runtime lookup.
type Language string

const (
	// LangNone means the value is not executable (data or opaque text).
	LangNone Language = ""
	// LangPython targets a Python interpreter.
	LangPython Language = "python"
	// LangJavaScript targets a Node.js interpreter.
	LangJavaScript Language = "javascript"
	// LangLua targets the embedded Lua interpreter.
	LangLua Language = "lua"
	// LangShell targets a POSIX shell.
	LangShell Language = "shell"
)

// DefaultLanguage is assumed for unit sources registered without an explicit
// language tag or recognizable extension.
const DefaultLanguage = LangPython

// SuffixClass describes what a segment extension implies for evaluation.
type SuffixClass int

const (
	// SuffixNone: no extension; the segment is opaque.
	SuffixNone SuffixClass = iota
	// SuffixCode: the extension maps to an executable language.
	SuffixCode
	// SuffixData: the extension names a recognized raw data format that
	// passes through evaluation verbatim.
	SuffixData
	// SuffixUnknown: the extension is recognized as neither code nor data.
	SuffixUnknown
)

// codeExts maps executable extensions to their language tag.
var codeExts = map[string]Language{
	"py":  LangPython,
	"js":  LangJavaScript,
	"lua": LangLua,
	"sh":  LangShell,
}

// dataExts maps recognized raw data extensions to their media type. These
// formats are never dispatched to a runtime; their payload flows through the
// pipeline unchanged and the media type only matters at the transport edge.
var dataExts = map[string]string{
	"txt":  "text/plain; charset=utf-8",
	"csv":  "text/csv",
	"json": "application/json",
	"md":   "text/markdown; charset=utf-8",
	"html": "text/html; charset=utf-8",
	"xml":  "application/xml",
	"yaml": "application/yaml",
}

// ClassifySuffix reports how an extension (without dot, lowercase) steers
// evaluation, and for code extensions which language it selects.
func ClassifySuffix(ext string) (SuffixClass, Language) {
	if ext == "" {
		return SuffixNone, LangNone
	}
	if lang, ok := codeExts[ext]; ok {
		return SuffixCode, lang
	}
	if _, ok := dataExts[ext]; ok {
		return SuffixData, LangNone
	}
	return SuffixUnknown, LangNone
}

// LanguageForExt resolves an extension in a context that requires executable
// source, such as loading a unit definition from a file. Data extensions and
// unrecognized extensions are both errors here, reported distinctly so the
// caller can tell "this is data" apart from "this is nothing we know".
func LanguageForExt(ext string) (Language, error) {
	switch class, lang := ClassifySuffix(ext); class {
	case SuffixCode:
		return lang, nil
	case SuffixData:
		return LangNone, &DataExtensionError{Ext: ext}
	case SuffixNone:
		return DefaultLanguage, nil
	default:
		return LangNone, &UnrecognizedExtensionError{Ext: ext}
	}
}

// ContentTypeFor returns the media type implied by a data extension, falling
// back to plain text for anything unrecognized. Transports use it to label
// final pipeline output.
func ContentTypeFor(ext string) string {
	if ct, ok := dataExts[ext]; ok {
		return ct
	}
	return "text/plain; charset=utf-8"
}
