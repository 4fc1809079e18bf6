// Package notifier is the cross-tab refresh channel.
//
// A [Hub] connects the endpoints of one process: an event published by an
// endpoint reaches every other endpoint, never the publisher itself. A
// [ProfileBridge] joins a hub and relays events to and from the other
// client processes sharing the same profile directory.
//
// Delivery is best effort. Events are hints to re-read the local store and
// never carry note payloads.
package notifier
