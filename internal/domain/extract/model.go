package extract

// ActionItem is a single task pulled out of meeting notes.
type ActionItem struct {
	Owner string `json:"owner"`
	Task  string `json:"task"`
	Due   string `json:"due"`
}

// Extraction holds every structured signal derived from raw notes.
// Slices keep the order of first appearance in the source text.
type Extraction struct {
	Summary   string       `json:"summary"`
	Decisions []string     `json:"decisions"`
	Actions   []ActionItem `json:"actions"`
	Questions []string     `json:"questions"`
}

// Config bounds the heuristic extractor output.
type Config struct {
	MaxItems     int
	SummaryLines int
}
