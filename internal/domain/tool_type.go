package domain

// ToolType is the closed set of material categories the tutoring tools
// produce. Stored as text; validated at the API boundary.
type ToolType string

const (
	ToolMindmap   ToolType = "mindmap"
	ToolQuiz      ToolType = "quiz"
	ToolFlashcard ToolType = "flashcard"
	ToolSummary   ToolType = "summary"
	ToolDemo      ToolType = "demo"
	ToolDiagram   ToolType = "diagram"
	ToolTimeline  ToolType = "timeline"
	ToolFormula   ToolType = "formula"
	ToolChart     ToolType = "chart"
	ToolPDF       ToolType = "pdf"
	ToolWebcam    ToolType = "webcam"
	ToolHomework  ToolType = "homework"
	ToolSearch    ToolType = "search"
)

// AllToolTypes is ordered; the smart-collection ByType catalog and the
// API validator both iterate it.
var AllToolTypes = []ToolType{
	ToolMindmap,
	ToolQuiz,
	ToolFlashcard,
	ToolSummary,
	ToolDemo,
	ToolDiagram,
	ToolTimeline,
	ToolFormula,
	ToolChart,
	ToolPDF,
	ToolWebcam,
	ToolHomework,
	ToolSearch,
}

var toolTypeLabels = map[ToolType]string{
	ToolMindmap:   "Mappe Mentali",
	ToolQuiz:      "Quiz",
	ToolFlashcard: "Flashcard",
	ToolSummary:   "Riassunti",
	ToolDemo:      "Demo",
	ToolDiagram:   "Diagrammi",
	ToolTimeline:  "Timeline",
	ToolFormula:   "Formule",
	ToolChart:     "Grafici",
	ToolPDF:       "PDF",
	ToolWebcam:    "Webcam",
	ToolHomework:  "Compiti",
	ToolSearch:    "Ricerca",
}

func (t ToolType) Valid() bool {
	_, ok := toolTypeLabels[t]
	return ok
}

// Label returns the human-readable display name for the type.
func (t ToolType) Label() string {
	if label, ok := toolTypeLabels[t]; ok {
		return label
	}
	return string(t)
}
