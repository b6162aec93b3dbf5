package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://pagekit.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid pagekit.json",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid server port",
		Detail:   "Port must be between 0 and 65535.",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid serving mode",
		Detail:   "Mode must be either \"ssr\" or \"spa\".",
		DocURL:   docBase + "E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid pages extension",
		Detail:   "The page file extension must start with a dot, e.g. \".html\".",
		DocURL:   docBase + "E123",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Invalid URL prefix",
		Detail:   "URL prefixes must start with \"/\".",
		DocURL:   docBase + "E124",
	},
	"E125": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		DocURL:   docBase + "E125",
	},
	"E140": {
		Category: CategoryConfig,
		Message:  "Directory already exists",
		DocURL:   docBase + "E140",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Not a pagekit project",
		Detail:   "No pagekit.json was found.",
		DocURL:   docBase + "E141",
	},
	"E145": {
		Category: CategoryCLI,
		Message:  "Unknown project template",
		DocURL:   docBase + "E145",
	},
	"E147": {
		Category: CategoryCLI,
		Message:  "Invalid project name",
		DocURL:   docBase + "E147",
	},
	"E148": {
		Category: CategoryCLI,
		Message:  "Unknown output format",
		DocURL:   docBase + "E148",
	},

	// ============================================
	// Bridge Errors (E160-E169)
	// ============================================

	"E160": {
		Category: CategoryBridge,
		Message:  "Invalid bridge function",
		Detail:   "Bridge functions must be funcs returning a value, optionally followed by an error.",
		DocURL:   docBase + "E160",
	},
	"E161": {
		Category: CategoryBridge,
		Message:  "Duplicate bridge function",
		DocURL:   docBase + "E161",
	},
	"E162": {
		Category: CategoryBridge,
		Message:  "Invalid bridge function name",
		Detail:   "Function names must be identifiers so they can be used as URL path segments and TypeScript names.",
		DocURL:   docBase + "E162",
	},
	"E163": {
		Category: CategoryBridge,
		Message:  "Bridge call failed",
		DocURL:   docBase + "E163",
	},
	"E164": {
		Category: CategoryBridge,
		Message:  "Bridge client generation failed",
		DocURL:   docBase + "E164",
	},

	// ============================================
	// Route Errors (E200-E209)
	// ============================================

	"E200": {
		Category: CategoryRoute,
		Message:  "Unbalanced brackets in page path",
		DocURL:   docBase + "E200",
	},
	"E201": {
		Category: CategoryRoute,
		Message:  "Empty bracket segment in page path",
		DocURL:   docBase + "E201",
	},
	"E202": {
		Category: CategoryRoute,
		Message:  "Catch-all segment is not in final position",
		DocURL:   docBase + "E202",
	},
	"E203": {
		Category: CategoryRoute,
		Message:  "Duplicate page",
		Detail:   "Two page files resolve to the same route key.",
		DocURL:   docBase + "E203",
	},
	"E204": {
		Category: CategoryRoute,
		Message:  "Page has no default export",
		Detail:   "Every page file must provide exactly one default component.",
		DocURL:   docBase + "E204",
	},
	"E205": {
		Category: CategoryRoute,
		Message:  "Ambiguous routes",
		Detail:   "Two pages produce route patterns with the same shape, so neither can be preferred.",
		DocURL:   docBase + "E205",
	},
	"E206": {
		Category: CategoryRoute,
		Message:  "Malformed bracket segment",
		Detail:   "A bracket segment must span a whole path segment and contain an identifier.",
		DocURL:   docBase + "E206",
	},
	"E207": {
		Category: CategoryRoute,
		Message:  "Invalid inclusion pattern",
		DocURL:   docBase + "E207",
	},
	"E208": {
		Category: CategoryRoute,
		Message:  "Page could not be loaded",
		DocURL:   docBase + "E208",
	},
	"E209": {
		Category: CategoryRoute,
		Message:  "Page is outside the pages root",
		DocURL:   docBase + "E209",
	},
	"E210": {
		Category: CategoryRoute,
		Message:  "Duplicate parameter name",
		Detail:   "Each parameter in a page path binds one value, so its name may appear only once.",
		DocURL:   docBase + "E210",
	},
	"E211": {
		Category: CategoryRoute,
		Message:  "Reserved character in page path",
		Detail:   "Pattern notation uses a leading \":\" for parameters and \"*\" for catch-alls, so static segments may not contain them.",
		DocURL:   docBase + "E211",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered error codes grouped by category.
func Codes() map[Category][]string {
	out := make(map[Category][]string)
	for code, t := range registry {
		out[t.Category] = append(out[t.Category], code)
	}
	return out
}
