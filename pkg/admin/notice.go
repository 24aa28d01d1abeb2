package admin

// NoticeKind tells a front end how to present a notice.
type NoticeKind string

const (
	// NoticeSuccess is a confirmation of a completed action
	NoticeSuccess NoticeKind = "success"
	// NoticeError reports a failed action or check
	NoticeError NoticeKind = "error"
)

// Notice is the transient message shown after an action.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

// IsError reports whether the notice describes a failure.
func (n *Notice) IsError() bool {
	return n != nil && n.Kind == NoticeError
}

func success(text string) *Notice {
	return &Notice{Kind: NoticeSuccess, Text: text}
}

func failure(text string) *Notice {
	return &Notice{Kind: NoticeError, Text: text}
}

// Backend status texts.
const (
	StatusReachable    = "Backend reachable"
	StatusUnreachable  = "Cannot reach backend (server down or unreachable)"
	StatusLoadFailed   = "Failed to load accounts"
	StatusNetworkError = "Network error"
)

// RetrySuccessText is shown when a manual re-check finds the backend.
const RetrySuccessText = "Backend reachable — refreshed accounts."
