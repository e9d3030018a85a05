package domain

// PushMessage is what the dispatcher delivers to every active device of one recipient.
type PushMessage struct {
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Data         map[string]string `json:"data,omitempty"`
	ClickAction  string            `json:"clickAction,omitempty"`
	HighPriority bool              `json:"highPriority,omitempty"`
}

// TokenResult is the outcome of one provider call.
type TokenResult struct {
	Token        string `json:"-"`
	Success      bool   `json:"success"`
	MessageID    string `json:"messageId,omitempty"`
	Error        string `json:"error,omitempty"`
	Unregistered bool   `json:"unregistered,omitempty"`
}

// DispatchResult aggregates one fan-out. Results are in token order, not completion order.
type DispatchResult struct {
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	FailedTokens []string      `json:"-"`
	Results      []TokenResult `json:"results"`
}

// Deactivated lists the tokens the provider reported as no longer registered.
func (r *DispatchResult) Deactivated() []string {
	var out []string
	for _, res := range r.Results {
		if res.Unregistered {
			out = append(out, res.Token)
		}
	}
	return out
}

// Succeeded lists tokens that accepted the message.
func (r *DispatchResult) Succeeded() []string {
	var out []string
	for _, res := range r.Results {
		if res.Success {
			out = append(out, res.Token)
		}
	}
	return out
}
