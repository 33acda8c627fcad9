// Package ecs provides ECS adapters for sapling's engine notifications.
//
// The primary adapter is [NewDonburiSink], which bridges sapling
// notifications (draw, recalculated, fonts loaded) into a [Donburi] world as
// typed events. Subscribe to [NotificationEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	engine := sapling.NewEngine(sapling.Config{Sink: sink})
//
// Notifications may be published from engine goroutines (debounced
// recalculation, font loads). Deliver them with [DonburiSink.ProcessEvents]
// from the host's update loop, which serializes delivery with publishing.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
