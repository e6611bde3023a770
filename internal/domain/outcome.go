package domain

// FailureKind classifies a failed Outcome so transports can pick a status code.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureInvalidInput
	FailureDelivery
	FailureNoMatch
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureInvalidInput:
		return "invalid_input"
	case FailureDelivery:
		return "delivery"
	case FailureNoMatch:
		return "no_match"
	default:
		return "unknown"
	}
}

// Messages carried by outcomes. The no-match text is shared by "never requested",
// "expired" and "wrong code".
const (
	MsgCodeSent         = "Verification code sent successfully."
	MsgCodeValid        = "Verification code is valid."
	MsgInvalidOrExpired = "Verification code is invalid or expired."
	MsgInvalidRequest   = "Invalid request."
)

// Outcome is returned by both verification operations. Message is set on
// success, Error on failure.
type Outcome struct {
	Succeeded bool        `json:"succeeded"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	Kind      FailureKind `json:"-"`
}

// Succeeded builds a successful outcome.
func Succeeded(msg string) Outcome {
	return Outcome{Succeeded: true, Message: msg}
}

// Failed builds a failed outcome of the given kind.
func Failed(kind FailureKind, errMsg string) Outcome {
	return Outcome{Succeeded: false, Error: errMsg, Kind: kind}
}
