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
	// Construction Errors (E200-E209)
	// ============================================

	"E200": {
		Category: CategoryConstruction,
		Message:  "Empty route tree",
		Detail:   "The route tree was built from an empty descriptor list. At least the root route \"/\" is required.",
	},
	"E201": {
		Category:   CategoryConstruction,
		Message:    "Duplicate route path",
		Detail:     "Two route descriptors declare the same path, or paths that differ only in parameter names.",
		Suggestion: "Remove one of the descriptors or give them distinct static segments.",
	},
	"E202": {
		Category:   CategoryConstruction,
		Message:    "Orphan route",
		Detail:     "A route declares a parent that does not exist, or a path that does not extend its parent's path.",
		Suggestion: "Declare the parent route, or fix the Parent field so it names a prefix of the path.",
	},
	"E203": {
		Category: CategoryConstruction,
		Message:  "Conflicting route declaration",
		Detail:   "A route descriptor is inconsistent with itself or with a sibling, such as a redirect route with a component or two parameters with different types at the same position.",
	},
	"E204": {
		Category:   CategoryConstruction,
		Message:    "Invalid route pattern",
		Detail:     "A route path or redirect target could not be parsed. Patterns are absolute, use \":name\" or \":name:type\" for parameters and \"*name\" for a trailing catch-all.",
		Suggestion: "Parameter types are string, int and uuid.",
	},

	// ============================================
	// Navigation Errors (E210-E219)
	// ============================================

	"E210": {
		Category: CategoryNavigation,
		Message:  "No route matches",
		Detail:   "The requested path does not match any navigable route.",
	},
	"E211": {
		Category:   CategoryNavigation,
		Message:    "Redirect loop",
		Detail:     "The navigation followed more redirects than allowed. The redirect rules form a cycle or a chain that is too long.",
		Suggestion: "Check the redirect targets listed in the chain.",
	},
	"E212": {
		Category: CategoryNavigation,
		Message:  "Redirect target invalid",
		Detail:   "A redirect rule produced a target that is not a canonical path, or referenced a parameter the match does not have.",
	},
	"E213": {
		Category: CategoryNavigation,
		Message:  "Invalid URL",
		Detail:   "The requested URL could not be canonicalized. It may contain malformed percent-escapes or dot segments.",
	},
	"E214": {
		Category: CategoryNavigation,
		Message:  "Navigation aborted",
		Detail:   "The navigation context ended, or middleware stopped the navigation, before a route resolved.",
	},

	// ============================================
	// Validation Errors (E220-E229)
	// ============================================

	"E220": {
		Category:   CategoryValidation,
		Message:    "Search parameters invalid",
		Detail:     "The query string does not satisfy the search schema of the matched routes.",
		Suggestion: "Use Catch() or DropInvalid() on fields where a malformed value should not fail the navigation.",
	},

	// ============================================
	// Config Errors (E300-E309)
	// ============================================

	"E300": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The configuration file does not exist at the given path.",
	},
	"E301": {
		Category:   CategoryConfig,
		Message:    "Config file invalid",
		Detail:     "The configuration file could not be parsed.",
		Suggestion: "consolenav.json must be JSON; consolenav.yaml and consolenav.yml must be YAML.",
	},
	"E302": {
		Category: CategoryConfig,
		Message:  "Config value invalid",
		Detail:   "A configuration value is out of range or inconsistent with another value.",
	},

	// ============================================
	// CLI Errors (E310-E319)
	// ============================================

	"E310": {
		Category: CategoryCLI,
		Message:  "Route tree invalid",
		Detail:   "The console route tree failed to build.",
	},
	"E311": {
		Category: CategoryCLI,
		Message:  "Export failed",
		Detail:   "The route manifest could not be written or published.",
	},
	"E312": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The navigation server stopped with an error.",
	},
	"E313": {
		Category: CategoryCLI,
		Message:  "Navigation failed",
		Detail:   "The requested URL did not resolve.",
	},
}

func lookupTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
