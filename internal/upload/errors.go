package upload

// Reason identifies why an upload was rejected. The set is closed: handlers
// and clients can switch on it exhaustively.
type Reason string

const (
	ReasonInvalidExtension   Reason = "invalid_extension"
	ReasonInvalidContentType Reason = "invalid_content_type"
	ReasonEmpty              Reason = "empty"
	ReasonTooLarge           Reason = "too_large"
	ReasonInvalidSignature   Reason = "invalid_signature"
)

// ValidationError is a client-fault rejection. No storage call was made.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Verdict is the outcome of the admission pipeline. A rejected verdict
// carries the reason and a human-readable detail.
type Verdict struct {
	Admitted bool
	Reason   Reason
	Detail   string
}

func admitted() Verdict {
	return Verdict{Admitted: true}
}

func rejected(reason Reason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}
