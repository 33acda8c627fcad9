package ecs

import (
	"sync"

	"github.com/phanxgames/sapling"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// NotificationEventType is the Donburi event type for sapling engine
// notifications. Subscribe to it in your ECS systems to react to draws,
// settled recalculations and font reloads.
var NotificationEventType = events.NewEventType[sapling.Notification]()

// DonburiSink is an EventSink backed by a Donburi world.
type DonburiSink struct {
	mu     sync.Mutex
	queued []sapling.Notification
	world  donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Notifications are queued and published to NotificationEventType by
// ProcessEvents.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world}
}

// EmitEvent implements sapling.EventSink. It may be called from any
// goroutine, including from a subscriber while ProcessEvents runs.
func (s *DonburiSink) EmitEvent(n sapling.Notification) {
	s.mu.Lock()
	s.queued = append(s.queued, n)
	s.mu.Unlock()
}

// ProcessEvents publishes the notifications queued so far and delivers them
// to subscribers. Call it from the host's update loop, on the goroutine that
// owns the world. Notifications emitted by subscribers are delivered on the
// next call.
func (s *DonburiSink) ProcessEvents() {
	s.mu.Lock()
	queued := s.queued
	s.queued = nil
	s.mu.Unlock()

	for _, n := range queued {
		NotificationEventType.Publish(s.world, n)
	}
	NotificationEventType.ProcessEvents(s.world)
}
