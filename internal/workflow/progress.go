package workflow

// Status is the pipeline stage
type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusAnalyzing Status = "analyzing"
	StatusTailoring Status = "tailoring"
	StatusReady     Status = "ready"
	StatusError     Status = "error"
)

// Percent is the progress bar value for the stage
func (s Status) Percent() int {
	switch s {
	case StatusUploading:
		return 18
	case StatusAnalyzing:
		return 52
	case StatusTailoring:
		return 82
	case StatusReady:
		return 100
	default:
		return 0
	}
}

// Label is the human-readable stage description
func (s Status) Label() string {
	switch s {
	case StatusUploading:
		return "Extracting your resume"
	case StatusAnalyzing:
		return "Mapping job requirements"
	case StatusTailoring:
		return "Tailoring content"
	case StatusReady:
		return "Tailored resume ready"
	case StatusError:
		return "We could not finish this request"
	default:
		return "Ready when you are"
	}
}

// Settled reports whether a new run may start
func (s Status) Settled() bool {
	return s == StatusIdle || s == StatusReady || s == StatusError
}

// Progress is a snapshot of a run. Activity is newest first.
type Progress struct {
	Status   Status   `json:"status"`
	Percent  int      `json:"percent"`
	Activity []string `json:"activity"`
	Error    string   `json:"error,omitempty"`
}

// Label forwards to the status label
func (p Progress) Label() string {
	return p.Status.Label()
}

func (p Progress) clone() Progress {
	p.Activity = append([]string{}, p.Activity...)
	return p
}
