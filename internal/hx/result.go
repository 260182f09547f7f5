package hx

// Result[P] is returned from action handlers to control rendering and side
// effects.
//
// Handlers never write to the ResponseWriter directly. They describe what
// should happen and the component applies it after the handler returns:
//
//	return hx.OK(props)                                  // re-render
//	return hx.OK(props).Flash(hx.FlashError, "Nope")     // re-render + toast
//	return hx.OK(props).Trigger("clipboard:write", data) // re-render + event
//	return hx.Err(props, err)                            // registry OnError
//	return hx.Skip[Props]().Status(http.StatusNoContent) // no body
type Result[P any] struct {
	props       P
	err         error
	flashes     []Flash
	trigger     string
	triggerData map[string]any
	headers     map[string]string
	status      int
	skip        bool
}

// OK creates a success result that will auto-render with the given props.
func OK[P any](props P) Result[P] {
	return Result[P]{props: props}
}

// Err creates an error result that is handed to the registry's OnError.
//
// Return Err for infrastructure failures only. Failures that belong to the
// rendered view (a rejected request, a validation message) should render
// with OK instead.
func Err[P any](props P, err error) Result[P] {
	return Result[P]{props: props, err: err}
}

// Skip creates a result that renders nothing.
func Skip[P any]() Result[P] {
	return Result[P]{skip: true}
}

// Flash adds a toast notification, rendered as an out-of-band swap.
func (r Result[P]) Flash(level, message string) Result[P] {
	r.flashes = append(r.flashes, Flash{Level: level, Message: message})
	return r
}

// Trigger emits an event via the HX-Trigger header. When data is given the
// browser receives it as the event's detail.
func (r Result[P]) Trigger(event string, data ...map[string]any) Result[P] {
	r.trigger = event
	if len(data) > 0 {
		r.triggerData = data[0]
	}
	return r
}

// Header sets a custom response header.
func (r Result[P]) Header(key, value string) Result[P] {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// Status sets the HTTP status code. Zero means 200.
func (r Result[P]) Status(code int) Result[P] {
	r.status = code
	return r
}

// GetProps returns the props from the result.
func (r Result[P]) GetProps() P { return r.props }

// GetErr returns the error from the result.
func (r Result[P]) GetErr() error { return r.err }

// GetFlashes returns the flash messages.
func (r Result[P]) GetFlashes() []Flash { return r.flashes }

// GetTrigger returns the trigger event name.
func (r Result[P]) GetTrigger() string { return r.trigger }

// GetTriggerData returns the trigger event data.
func (r Result[P]) GetTriggerData() map[string]any { return r.triggerData }

// GetHeaders returns the custom response headers.
func (r Result[P]) GetHeaders() map[string]string { return r.headers }

// GetStatus returns the HTTP status code (0 means not set).
func (r Result[P]) GetStatus() int { return r.status }

// ShouldSkip reports whether rendering is suppressed.
func (r Result[P]) ShouldSkip() bool { return r.skip }
