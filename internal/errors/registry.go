package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Core Errors (E001-E099)
	// ============================================

	"E001": {
		Category:   CategoryCore,
		Message:    "Cyclic dependency between effects",
		Detail:     "An effect was re-triggered by a chain of writes that it started itself.",
		Suggestion: "Break the cycle by reading one of the signals with Peek or inside Untracked",
	},
	"E002": {
		Category:   CategoryCore,
		Message:    "Duplicate key in reconciled list",
		Detail:     "Two items of one list produced the same key. Keys must be unique within a pass.",
	},
	"E003": {
		Category: CategoryCore,
		Message:  "Key not found",
		Detail:   "The key does not refer to a live entry. It may have been closed already.",
	},

	// ============================================
	// Config Errors (E100-E199)
	// ============================================

	"E101": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Suggestion: "Run 'tabdeck config init' to create one",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid server address",
		Detail:   "server.address must have the form host:port.",
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Invalid log level",
		Suggestion: "Use one of debug, info, warn or error",
	},
	"E105": {
		Category:   CategoryConfig,
		Message:    "Invalid log format",
		Suggestion: "Use text or json",
	},

	// ============================================
	// Document Errors (E200-E299)
	// ============================================

	"E201": {
		Category:   CategoryDocument,
		Message:    "Unsupported document type",
		Suggestion: "Open a .txt, .bmp, .png, .jpg, .jpeg or .svg file",
	},
	"E202": {
		Category:   CategoryDocument,
		Message:    "File already exists",
		Detail:     "New documents never overwrite an existing file.",
		Suggestion: "Choose another name or directory",
	},
	"E203": {
		Category: CategoryDocument,
		Message:  "Document could not be read",
	},
	"E204": {
		Category:   CategoryDocument,
		Message:    "Invalid file name",
		Suggestion: "Use a plain name without path separators",
	},

	// ============================================
	// Server Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryServer,
		Message:  "Server failed",
	},
	"E302": {
		Category:   CategoryServer,
		Message:    "Session store unavailable",
		Suggestion: "Check session.path or disable session.restore",
	},
	"E303": {
		Category: CategoryServer,
		Message:  "Bad request",
	},
	"E304": {
		Category: CategoryServer,
		Message:  "Not found",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
