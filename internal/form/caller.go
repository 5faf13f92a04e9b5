package form

import "context"

// CallRequest invokes a named server-side method bound to one document
type CallRequest struct {
	Doctype string                 `json:"doctype"`
	Name    string                 `json:"name"`
	Method  string                 `json:"method"`
	Args    map[string]interface{} `json:"args,omitempty"`
}

// CallResponse carries the method's result payload
type CallResponse struct {
	Payload map[string]interface{} `json:"message"`
}

// Get returns a payload value, or nil when absent
func (r *CallResponse) Get(key string) interface{} {
	if r == nil || r.Payload == nil {
		return nil
	}
	return r.Payload[key]
}

// Caller performs remote calls on behalf of a controller
type Caller interface {
	Call(ctx context.Context, req CallRequest) (*CallResponse, error)
}

// CallerFunc adapts a function to Caller
type CallerFunc func(ctx context.Context, req CallRequest) (*CallResponse, error)

// Call implements Caller
func (f CallerFunc) Call(ctx context.Context, req CallRequest) (*CallResponse, error) {
	return f(ctx, req)
}
