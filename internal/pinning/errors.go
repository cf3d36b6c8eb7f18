package pinning

import "fmt"

// Stage identifies which leg of an upload failed.
type Stage string

const (
	StageFetch Stage = "fetch"
	StagePin   Stage = "pin"
	StageRead  Stage = "read"
)

const maxErrorBody = 512

// UpstreamError reports a failed call to the pinning service, the image
// source or the gateway.
type UpstreamError struct {
	Stage  Stage
	Op     string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s: HTTP %d: %s", e.Stage, e.Op, e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Stage, e.Op, e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func truncateBody(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
