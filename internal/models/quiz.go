package models

// TaskType buckets an instruction page into an answer-generation category.
type TaskType string

const (
	TaskCounting     TaskType = "counting"
	TaskChecksum     TaskType = "checksum"
	TaskScraping     TaskType = "scraping"
	TaskAudio        TaskType = "audio"
	TaskSum          TaskType = "sum_calculation"
	TaskFileDownload TaskType = "file_download"
	TaskAPICall      TaskType = "api_call"
	TaskGeneral      TaskType = "general"

	// Demo variants, routed by URL marker before any keyword check.
	TaskDemoScrape  TaskType = "demo_scrape"
	TaskDemoAudio   TaskType = "demo_audio"
	TaskDemoSum     TaskType = "demo_sum"
	TaskDemoFile    TaskType = "demo_file"
	TaskDemoAPI     TaskType = "demo_api"
	TaskDemoGeneral TaskType = "demo_general"
)

// IsDemo reports whether the task was routed by a demo URL marker.
func (t TaskType) IsDemo() bool {
	switch t {
	case TaskDemoScrape, TaskDemoAudio, TaskDemoSum, TaskDemoFile, TaskDemoAPI, TaskDemoGeneral:
		return true
	}
	return false
}

// PageContent is what a renderer yields for one URL. A failed network-idle
// wait still produces a PageContent with whatever was available.
type PageContent struct {
	HTML        string   `json:"html"`
	VisibleText string   `json:"text"`
	Hrefs       []string `json:"hrefs"`
	Scripts     []string `json:"scripts"`
}

// QuizContext is the per-cycle working record. It is built fresh for every
// loop iteration and discarded after the submission completes.
type QuizContext struct {
	CurrentURL string
	Page       *PageContent

	Secret    string // extracted from the page, UnknownSecret when absent
	SecretOK  bool
	SubmitURL string
	TaskType  TaskType
	Question  string
	DataURLs  []string

	Answer any // number or string
}

// Submission is the wire payload POSTed to the grader. Field order and names
// are fixed by the grader's contract.
type Submission struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
	Answer any    `json:"answer"`
}

// GraderResponse is what the grader returns for one submission.
type GraderResponse struct {
	Correct bool    `json:"correct"`
	URL     string  `json:"url,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Delay   float64 `json:"delay,omitempty"`
}

// AttemptOutcome records one fetch/answer/submit cycle inside a session.
type AttemptOutcome struct {
	URL      string          `json:"url"`
	Answer   any             `json:"answer,omitempty"`
	Response *GraderResponse `json:"result,omitempty"`
	Error    string          `json:"error,omitempty"`
}
