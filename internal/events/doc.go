// Package events carries domain events from the review service to
// collaborators that react to them (XP, streaks, analytics).
//
// Services emit an Event after their transaction commits; handlers are
// registered on an Emitter and must not assume any delivery order.
package events
