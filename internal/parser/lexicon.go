package parser

// ConstructKind says whether a phrase match is complete on its own line or
// opens a block that runs until a terminator line
type ConstructKind int

const (
	ConstructLine ConstructKind = iota
	ConstructBlock
)

func (k ConstructKind) String() string {
	switch k {
	case ConstructLine:
		return "line"
	case ConstructBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Action identifies what the scanner does with a recognized construct
type Action int

const (
	// ActionIgnore recognizes a construct and drops it
	ActionIgnore Action = iota
	// ActionDefineMethod extracts a method record into the result map
	ActionDefineMethod
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionDefineMethod:
		return "define_method"
	default:
		return "unknown"
	}
}

// Phrase is one lexicon entry: a pattern plus what to do when it matches.
// Patterns are matched against the line with leading whitespace removed.
type Phrase struct {
	Name    string
	Pattern string
	Kind    ConstructKind
	Action  Action
}

// def name(args) {
var definitionPhrase = Phrase{
	Name:    "definition",
	Pattern: `def\s.*`,
	Kind:    ConstructBlock,
	Action:  ActionDefineMethod,
}

// ParseContext provides context for dispatching a construct
type ParseContext struct {
	FilePath string // Path of the file being scanned, empty for readers
	LineNum  int    // Current line number (1-indexed)
}

// Registry holds the lexicon in priority order (first registered wins)
type Registry struct {
	phrases []Phrase
}

// NewRegistry creates a new empty registry
func NewRegistry() *Registry {
	return &Registry{
		phrases: make([]Phrase, 0),
	}
}

// Register appends a phrase with lower priority than those already registered
func (r *Registry) Register(p Phrase) {
	r.phrases = append(r.phrases, p)
}

// Phrases returns a copy of the lexicon in priority order
func (r *Registry) Phrases() []Phrase {
	out := make([]Phrase, len(r.phrases))
	copy(out, r.phrases)
	return out
}

// RegisterDefaults adds the method definition phrase to the registry
func RegisterDefaults(r *Registry) {
	r.Register(definitionPhrase)
}
