// Package engine is the per-client tool engine. It owns the selected
// environment, the layout state machine (normal, stick environment to window,
// wait for the expected window) and the pending command, and it turns the
// resolved layout into the View sent to the remote surface.
//
// Button clicks arrive as opaque ids (see package buttonid) and are routed by
// Dispatch, which reports back what the transport has to do next.
package engine
